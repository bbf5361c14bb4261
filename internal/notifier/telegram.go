package notifier

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantgrove/densetrack/internal/model"
)

// TelegramNotifier delivers scan summaries to a chat. It is a thin consumer
// of finished setups and never feeds back into the analysis.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// SendScanReport formats and sends one message for a completed scan pass.
func (n *TelegramNotifier) SendScanReport(setups []*model.TradeSetup) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatScanReport(setups))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("send scan report")
		return fmt.Errorf("sending scan report: %w", err)
	}
	return nil
}

var signalEmoji = map[model.Signal]string{
	model.SignalWatch: "👀",
	model.SignalLong:  "📈",
	model.SignalShort: "📉",
	model.SignalWait:  "⏳",
}

// FormatScanReport renders the setup list as one HTML message, in the order
// the scan produced it (WATCH entries first).
func FormatScanReport(setups []*model.TradeSetup) string {
	if len(setups) == 0 {
		return "🔍 <b>Scan complete</b>\n\nNo instrument produced a setup this cycle."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 <b>Scan complete</b> | %d setups\n", len(setups)))
	for _, s := range setups {
		sb.WriteString(fmt.Sprintf("\n%s <b>%s</b> [%s] %s @ %.6g\n", signalEmoji[s.Signal], s.Symbol, s.Timeframe, s.Signal, s.Price))
		sb.WriteString(fmt.Sprintf("SL %.6g | TP %.6g | density %.2f%% | dev %.2f%%\n", s.StopLoss, s.TakeProfit, s.DensityScore, s.PriceDeviation))
		sb.WriteString(fmt.Sprintf("<i>%s</i>\n", s.Reason))
	}
	return sb.String()
}
