package communication

import (
	"fmt"

	"fieldforce.com/fieldforce/config"
	"github.com/slack-go/slack"
)

type poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

type Slack struct {
	client  poster
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

// ConnectSlack returns nil when no bot token is configured. A nil *Slack
// prints messages instead of posting them.
func ConnectSlack(cfg config.SlackConfig) *Slack {
	if cfg.Token == "" {
		return nil
	}
	return NewSlack(cfg.Token, SlackOption{InfoChannelID: cfg.InfoChannel, ErrorChannelID: cfg.ErrorChannel})
}

func NewSlack(token string, options SlackOption) *Slack {
	return &Slack{client: slack.New(token), options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	if channelID == "" {
		return fmt.Errorf("no slack channel configured")
	}
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	if s == nil {
		fmt.Printf("[INFO] %s\n", message)
		return nil
	}
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	if s == nil {
		fmt.Printf("[ERROR] %s\n", message)
		return nil
	}
	// fall back to the info channel so failures are not lost
	channel := s.options.ErrorChannelID
	if channel == "" {
		channel = s.options.InfoChannelID
	}
	return s.postMessage(channel, message)
}
