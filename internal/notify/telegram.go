// Package notify pushes value-bet alerts to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/models"
)

// MinSendInterval keeps the bot under Telegram's per-chat flood limit.
const MinSendInterval = 2 * time.Second

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends one message per analysis with value bets.
type Telegram struct {
	bot      Sender
	chatID   int64
	interval time.Duration
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegram connects the bot. It returns nil without error when token is
// empty so callers can treat alerts as disabled.
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required when a bot token is set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	t := newTelegram(bot, chatID, logger)
	t.logger.Infow("Telegram notifier initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return t, nil
}

func newTelegram(bot Sender, chatID int64, logger *zap.Logger) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, interval: MinSendInterval, logger: logger.Sugar()}
}

// NotifyValueBets formats and sends the analysis. It waits out the minimum
// interval since the previous message, giving up when ctx ends.
func (t *Telegram) NotifyValueBets(ctx context.Context, a *models.Analysis) error {
	if t == nil || len(a.ValueBets) == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatAnalysis(a))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	t.mu.Lock()
	defer t.mu.Unlock()
	if wait := t.interval - time.Since(t.lastSend); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	t.lastSend = time.Now()
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.logger.Infow("Value bet alert sent", "id", a.ID, "value_bets", len(a.ValueBets))
	return nil
}

// FormatAnalysis renders an analysis as Telegram HTML.
func FormatAnalysis(a *models.Analysis) string {
	var b strings.Builder
	match := "Unknown match"
	if a.RadiantTeam != "" || a.DireTeam != "" {
		match = fmt.Sprintf("%s vs %s", a.RadiantTeam, a.DireTeam)
	}
	fmt.Fprintf(&b, "<b>Value bets: %s</b>\n", html.EscapeString(match))
	if p := a.Prediction; p != nil {
		fmt.Fprintf(&b, "Radiant %.1f%% / Dire %.1f%% (%s)\n", p.RadiantWinProb*100, p.DireWinProb*100, p.Method)
	}
	b.WriteString("\n")
	for _, vb := range a.ValueBets {
		label := string(vb.Market)
		if vb.Label != "" {
			label = vb.Label
		}
		fmt.Fprintf(&b, "• %s: <b>%s</b>", html.EscapeString(label), html.EscapeString(vb.Selection))
		if vb.Line != 0 {
			fmt.Fprintf(&b, " (%+.1f)", vb.Line)
		}
		fmt.Fprintf(&b, " @ %.2f, edge %.1f%%, stake %.1f%%", vb.Odds, vb.EdgePercent, vb.KellyStake*100)
		if vb.Bookmaker != "" {
			fmt.Fprintf(&b, " [%s]", html.EscapeString(vb.Bookmaker))
		}
		b.WriteString("\n")
	}
	return b.String()
}
