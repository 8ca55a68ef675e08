// Package slack posts messages back to Slack: delayed responses to a
// slash command's response_url and unsolicited broadcasts through the
// configured incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Response display modes.
const (
	// ResponseTypeEphemeral shows the message to the invoking user only.
	ResponseTypeEphemeral = "ephemeral"
	// ResponseTypeInChannel broadcasts the message to the whole channel.
	ResponseTypeInChannel = "in_channel"
)

// Attachment is a secondary text block under a message.
type Attachment struct {
	Text     string   `json:"text"`
	MrkdwnIn []string `json:"mrkdwn_in,omitempty"`
}

// Message is the response payload Slack expects from a slash command and
// the body of an incoming-webhook post.
type Message struct {
	ResponseType string       `json:"response_type,omitempty"`
	Text         string       `json:"text"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

// Ephemeral builds a message only the caller sees.
func Ephemeral(text string) *Message {
	return &Message{ResponseType: ResponseTypeEphemeral, Text: text}
}

// InChannel builds a message broadcast to the channel.
func InChannel(text string) *Message {
	return &Message{ResponseType: ResponseTypeInChannel, Text: text}
}

// WithAttachment appends an attachment block and returns the message.
func (m *Message) WithAttachment(text string) *Message {
	m.Attachments = append(m.Attachments, Attachment{Text: text})
	return m
}

// Client posts messages to Slack endpoints with a shared outbound rate limit.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	webhookURL string
}

// NewClient creates a client. webhookURL may be empty when no daily digest
// target is configured.
func NewClient(webhookURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Slack allows roughly one message per second per hook.
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
		webhookURL: webhookURL,
	}
}

// Post sends a message to an arbitrary URL (typically a command's
// response_url).
func (c *Client) Post(ctx context.Context, url string, message *Message) error {
	if url == "" {
		return errors.New("no target url")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter interrupted")
	}

	body, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to post message")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("slack rejected message: %s: %s", resp.Status, string(detail))
	}
	return nil
}

// PostWebhook sends a message to the configured incoming webhook.
func (c *Client) PostWebhook(ctx context.Context, message *Message) error {
	if c.webhookURL == "" {
		return errors.New("no webhook url configured")
	}
	return c.Post(ctx, c.webhookURL, message)
}
