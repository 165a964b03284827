package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/telebot.v3"
)

const KeySendAlert = "send_alert"

// Notifier delivers an alert text somewhere a human will see it.
type Notifier interface {
	Notify(text string) error
}

// TelegramNotifier posts alerts to a single chat.
type TelegramNotifier struct {
	bot  *telebot.Bot
	chat *telebot.Chat
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chat: &telebot.Chat{ID: chatID}}, nil
}

func (n *TelegramNotifier) Notify(text string) error {
	_, err := n.bot.Send(n.chat, text)
	return err
}

// AlertCore forwards entries at or above minLevel that carry send_alert=true.
type AlertCore struct {
	zapcore.LevelEnabler
	notifier Notifier
	minLevel zapcore.Level
	fields   []zapcore.Field
}

// NewAlertCore returns a wrapper usable with New.
func NewAlertCore(notifier Notifier, minLevel zapcore.Level) func(zapcore.Core) zapcore.Core {
	return func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, &AlertCore{
			LevelEnabler: minLevel,
			notifier:     notifier,
			minLevel:     minLevel,
		})
	}
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *a
	clone.fields = append(append([]zapcore.Field{}, a.fields...), fields...)
	return &clone
}

func (a *AlertCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checked.AddCore(entry, a)
	}
	return checked
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, a.fields...), fields...)
	if !shouldAlert(all) {
		return nil
	}
	text := formatAlert(entry, all)
	go func() {
		_ = a.notifier.Notify(text)
	}()
	return nil
}

func (a *AlertCore) Sync() error {
	return nil
}

func shouldAlert(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == KeySendAlert && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

func formatAlert(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == KeySendAlert {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s alert: %s\n", entry.Level.CapitalString(), entry.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, enc.Fields[k])
	}
	fmt.Fprintf(&b, "time: %s", entry.Time.Format("2006-01-02 15:04:05"))
	return b.String()
}
