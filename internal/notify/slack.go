package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Slack posts events as attachment messages to one channel.
type Slack struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a Slack notifier.
type SlackOpts struct {
	BotToken  string // xoxb-... bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a Slack notifier.
func NewSlack(opts SlackOpts) (*Slack, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: slack bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack channel id is required")
	}

	s := &Slack{channelID: opts.ChannelID}
	if opts.Client != nil {
		s.client = opts.Client
	} else {
		s.client = slackapi.New(opts.BotToken)
	}
	return s, nil
}

// Notify posts one event to the configured channel.
func (s *Slack) Notify(ctx context.Context, ev Event) error {
	color := "#36a64f"
	if ev.Kind == KindEscalation {
		color = "#e01e5a"
	}

	attachment := slackapi.Attachment{
		Color: color,
		Title: title(ev),
		Text:  summary(ev),
	}
	if ev.SessionID != "" {
		attachment.Fields = []slackapi.AttachmentField{
			{Title: "Session", Value: ev.SessionID, Short: true},
			{Title: "Status", Value: string(ev.Status), Short: true},
		}
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channelID, slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}
