// Package dailydigest broadcasts the morning status listing to the
// configured incoming webhook once per day.
package dailydigest

import (
	"context"
	"log/slog"
	"time"

	"github.com/getwhereabouts/whereabouts/internal/profile"
	"github.com/getwhereabouts/whereabouts/plugin/naturaldate"
	"github.com/getwhereabouts/whereabouts/plugin/slack"
)

const tickInterval = 30 * time.Second

// Digester produces the message to broadcast.
type Digester interface {
	TodayDigest(ctx context.Context) (*slack.Message, error)
}

// WebhookPoster delivers to the configured webhook. *slack.Client satisfies it.
type WebhookPoster interface {
	PostWebhook(ctx context.Context, message *slack.Message) error
}

// Runner fires the digest once per calendar day, the first time a tick lands
// inside the configured delivery window in the organizational timezone.
type Runner struct {
	profile *profile.Profile
	status  Digester
	poster  WebhookPoster

	now       func() time.Time
	lastFired string // ISO date of the last successful delivery
}

// NewRunner creates the digest runner.
func NewRunner(profile *profile.Profile, status Digester, poster WebhookPoster) *Runner {
	return &Runner{
		profile: profile,
		status:  status,
		poster:  poster,
		now:     time.Now,
	}
}

// Run schedules the runner to broadcast in the delivery window every day.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.maybeFire(ctx)
		case <-ctx.Done():
			slog.Info("daily digest runner stopped")
			return
		}
	}
}

func (r *Runner) maybeFire(ctx context.Context) {
	if r.profile.SlackWebhookURL == "" {
		return
	}

	now := r.now().In(r.profile.Location())
	if !inWindow(now, r.profile.DigestWindowStart, r.profile.DigestWindowEnd) {
		return
	}
	today := naturaldate.ISO(now)
	if r.lastFired == today {
		return
	}

	message, err := r.status.TodayDigest(ctx)
	if err != nil {
		// Leave lastFired unset so the next tick in the window retries.
		slog.Error("failed to build daily digest", "err", err)
		return
	}
	if err := r.poster.PostWebhook(ctx, message); err != nil {
		slog.Error("failed to deliver daily digest", "err", err)
		return
	}

	r.lastFired = today
	slog.Info("daily digest delivered", "date", today)
}

// inWindow reports whether now's wall-clock time falls in [start, end],
// boundaries in "15:04" form. Validate guarantees they parse.
func inWindow(now time.Time, start, end string) bool {
	startClock, err := time.Parse("15:04", start)
	if err != nil {
		return false
	}
	endClock, err := time.Parse("15:04", end)
	if err != nil {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	startMinute := startClock.Hour()*60 + startClock.Minute()
	endMinute := endClock.Hour()*60 + endClock.Minute()
	return minute >= startMinute && minute <= endMinute
}
