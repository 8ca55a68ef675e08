package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/getwhereabouts/whereabouts/plugin/slack"
	"github.com/getwhereabouts/whereabouts/server/service/status"
)

// HandleCommand processes a slash command. Slack expects a 200 with a message
// payload even for user mistakes, so errors surface as ephemeral messages
// rather than HTTP failures.
func (s *APIV1Service) HandleCommand(c echo.Context) error {
	command := &status.Command{
		Text:        c.FormValue("text"),
		UserID:      c.FormValue("user_id"),
		UserName:    c.FormValue("user_name"),
		ResponseURL: c.FormValue("response_url"),
	}
	if command.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing user_id")
	}

	if !s.limiter.Allow(command.UserID) {
		return c.JSON(http.StatusOK, slack.Ephemeral("Easy there! Give it a second and try again."))
	}

	message := s.status.Handle(c.Request().Context(), command)
	return c.JSON(http.StatusOK, message)
}
