package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/quantgrove/densetrack/internal/model"
)

// NarrativeFallback is returned whenever the completion cannot be
// produced. The setup itself is always valid on its own; the narrative is
// decoration.
const NarrativeFallback = "Narrative unavailable, refer to the setup numbers."

// Client wraps the OpenAI API client for setup narration.
type Client struct {
	client *openai.Client
	logger zerolog.Logger
}

// NewClient creates a new OpenAI client.
func NewClient(apiKey string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		logger: log.With().Str("component", "openai_client").Logger(),
	}
}

// DescribeSetup turns a computed trade setup into a short free-text
// narrative. The setup is read-only input; any API failure or empty
// completion degrades to NarrativeFallback, never to an error.
func (c *Client) DescribeSetup(ctx context.Context, setup *model.TradeSetup) string {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: FormatSetupPrompt(setup),
				},
			},
		},
	)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", setup.Symbol).Msg("OpenAI API error")
		return NarrativeFallback
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.logger.Warn().Str("symbol", setup.Symbol).Msg("OpenAI returned empty choices")
		return NarrativeFallback
	}

	return resp.Choices[0].Message.Content
}

// FormatSetupPrompt renders the setup fields into the narration prompt.
func FormatSetupPrompt(setup *model.TradeSetup) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a trading assistant. Summarize this %s %s setup in 2-3 sentences for a trader:\n\n", setup.Symbol, setup.Timeframe))
	sb.WriteString(fmt.Sprintf("Signal: %s\nPrice: %.6g\n", setup.Signal, setup.Price))
	sb.WriteString(fmt.Sprintf("MA20/60/120: %.6g / %.6g / %.6g\n", setup.Averages.MA20, setup.Averages.MA60, setup.Averages.MA120))
	sb.WriteString(fmt.Sprintf("EMA20/60/120: %.6g / %.6g / %.6g\n", setup.Averages.EMA20, setup.Averages.EMA60, setup.Averages.EMA120))
	sb.WriteString(fmt.Sprintf("Density: %.2f%%  Deviation: %.2f%%  ATR: %.6g\n", setup.DensityScore, setup.PriceDeviation, setup.ATR))
	sb.WriteString(fmt.Sprintf("Entry: %.6g  Stop: %.6g  Target: %.6g\n", setup.Entry, setup.StopLoss, setup.TakeProfit))
	sb.WriteString(fmt.Sprintf("Reason: %s\n", setup.Reason))
	sb.WriteString("\nExplain what the averages say and how to treat the stop and target. Do not invent numbers.")
	return sb.String()
}
