// Package notify delivers advisory health alerts to operators.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/ArtCenter1/storymaster/internal/usage"
)

// SlackNotifier posts health-status changes to a Slack channel.
type SlackNotifier struct {
	api        *slack.Client
	channel    string
	lastStatus string
}

// NewSlackNotifier creates a notifier for the given bot token and channel.
// apiBase overrides the Slack API URL for tests; empty means the default.
func NewSlackNotifier(token, channel, apiBase string) *SlackNotifier {
	opts := []slack.Option{}
	if apiBase != "" {
		opts = append(opts, slack.OptionAPIURL(apiBase))
	}
	return &SlackNotifier{
		api:     slack.New(token, opts...),
		channel: channel,
	}
}

// NotifyHealth posts the health status when it differs from the last posted
// one. Repeated identical statuses are suppressed.
func (n *SlackNotifier) NotifyHealth(ctx context.Context, h *usage.Health) error {
	if h.Status == n.lastStatus {
		return nil
	}

	text := fmt.Sprintf("storymaster health: *%s*", h.Status)
	if len(h.Alerts) > 0 {
		text += "\n" + strings.Join(h.Alerts, "\n")
	}
	_, _, err := n.api.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post health alert: %w", err)
	}
	n.lastStatus = h.Status
	return nil
}
