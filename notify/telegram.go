package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Summary describes a finished harvest
type Summary struct {
	Endpoint string
	Output   string
	Pages    int
	Words    int
	Skipped  int
	Err      error
}

// Telegram posts harvest summaries to a chat
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a notifier for the bot token
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NewTelegramWithEndpoint talks to a Bot API server other than api.telegram.org.
// endpoint follows tgbotapi.APIEndpoint, e.g. "http://host/bot%s/%s".
func NewTelegramWithEndpoint(token, endpoint string, chatID int64, client tgbotapi.HTTPClient) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends the summary
func (t *Telegram) Notify(s Summary) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(s))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatSummary renders the message text
func FormatSummary(s Summary) string {
	var b strings.Builder
	if s.Err != nil {
		fmt.Fprintf(&b, "❌ Word harvest failed\n\n%v\n", s.Err)
	} else {
		b.WriteString("✅ Word harvest finished\n\n")
	}
	fmt.Fprintf(&b, "Pages: %d\nWords: %d\n", s.Pages, s.Words)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped rows: %d\n", s.Skipped)
	}
	if s.Err == nil && s.Output != "" {
		fmt.Fprintf(&b, "Output: %s\n", s.Output)
	}
	fmt.Fprintf(&b, "Source: %s", s.Endpoint)
	return b.String()
}
