package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo methods we use, enabling test
// mocks.
type discordSession interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts events as embeds to one channel. The session is used purely
// for REST calls; no gateway connection is opened.
type Discord struct {
	session   discordSession
	channelID string
}

// DiscordOpts holds parameters for creating a Discord notifier.
type DiscordOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session discordSession
}

// NewDiscord creates a Discord notifier.
func NewDiscord(opts DiscordOpts) (*Discord, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: discord bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: discord channel id is required")
	}

	d := &Discord{channelID: opts.ChannelID}
	if opts.Session != nil {
		d.session = opts.Session
	} else {
		sess, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("notify: discord session: %w", err)
		}
		d.session = sess
	}
	return d, nil
}

// Notify posts one event to the configured channel.
func (d *Discord) Notify(ctx context.Context, ev Event) error {
	color := 0x36a64f
	if ev.Kind == KindEscalation {
		color = 0xe01e5a
	}

	embed := &discordgo.MessageEmbed{
		Title:       title(ev),
		Description: summary(ev),
		Color:       color,
	}

	_, err := d.session.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("notify: discord post: %w", err)
	}
	return nil
}
