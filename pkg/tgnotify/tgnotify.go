// Package tgnotify implements logkit's notification capability on top of
// Telegram (telebot.v4). It lives outside the core package so logkit never
// hard-depends on a chat client: callers wire tgnotify.New in as the
// NotifierFactory when they want chat notifications.
package tgnotify

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"logkit/pkg/logkit"
)

type Client struct {
	bot *tele.Bot
	to  tele.Recipient
}

// chat is a raw recipient: a numeric chat ID or an "@channel" username,
// passed to the Bot API as-is.
type chat string

func (c chat) Recipient() string { return string(c) }

// New builds a Telegram-backed notifier. Construction fails fast on empty
// credentials and performs a connectivity check against the Bot API (getMe),
// so a bad token is caught at setup time rather than on first send.
//
// channel is a numeric chat ID or an "@channelname".
func New(token, channel string) (logkit.Notifier, error) {
	token = strings.TrimSpace(token)
	channel = strings.TrimSpace(channel)
	if token == "" || channel == "" {
		return nil, errors.New("tgnotify: token and channel are both required")
	}
	if _, err := strconv.ParseInt(channel, 10, 64); err != nil && !strings.HasPrefix(channel, "@") {
		return nil, errors.New("tgnotify: channel must be a numeric chat id or an @username")
	}

	// NewBot performs getMe, which doubles as the connectivity check.
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &Client{bot: b, to: chat(channel)}, nil
}

// Send posts text to the configured chat. The caller (logkit's notification
// sink) already wraps records in a code block, so markdown parse mode is
// used to render it.
func (c *Client) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(c.to, text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
	return err
}
