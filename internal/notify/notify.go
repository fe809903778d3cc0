// Package notify pushes handoff and escalation events to the operations
// channel on Slack or Discord. Delivery is best-effort and never blocks the
// message pipeline.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/models"
)

// Event kinds.
const (
	KindHandoff    = "handoff"
	KindEscalation = "escalation"
	KindDigest     = "digest"
)

// Event is one routing event worth telling a human about.
type Event struct {
	Kind         string
	SessionID    string
	CustomerName string
	FromAgent    models.AgentType
	ToAgent      models.AgentType
	Reason       string
	Status       models.QualificationStatus
	Profile      string // one-line qualification profile summary

	// Title and Body carry pre-rendered content for digest events; routing
	// events leave them empty and get the standard rendering.
	Title string
	Body  string
}

// Notifier delivers events to a messaging platform. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Noop is a Notifier that drops everything. Used when no platform is
// configured.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }

// New builds the configured Notifier. An empty platform yields a Noop.
func New(cfg config.NotifyConfig) (Notifier, error) {
	switch cfg.Platform {
	case "":
		return Noop{}, nil
	case "slack":
		return NewSlack(SlackOpts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
	case "discord":
		return NewDiscord(DiscordOpts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
	default:
		return nil, fmt.Errorf("notify: unknown platform %q", cfg.Platform)
	}
}

// title renders the event headline shared by both platforms.
func title(ev Event) string {
	if ev.Title != "" {
		return ev.Title
	}
	switch ev.Kind {
	case KindEscalation:
		return fmt.Sprintf("Human handoff requested: %s", displayName(ev))
	default:
		return fmt.Sprintf("Agent handoff: %s -> %s", orDash(string(ev.FromAgent)), string(ev.ToAgent))
	}
}

// summary renders the event body shared by both platforms.
func summary(ev Event) string {
	if ev.Body != "" {
		return ev.Body
	}
	lines := []string{
		"Session: " + ev.SessionID,
		"Customer: " + displayName(ev),
		"Status: " + string(ev.Status),
	}
	if ev.Reason != "" {
		lines = append(lines, "Reason: "+ev.Reason)
	}
	if ev.Profile != "" {
		lines = append(lines, "Profile: "+ev.Profile)
	}
	return strings.Join(lines, "\n")
}

func displayName(ev Event) string {
	if ev.CustomerName != "" {
		return ev.CustomerName
	}
	return ev.SessionID
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
