// Package ai wraps the OpenAI chat completion API as the concierge's
// text-generation collaborator.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
)

const fallbackMessage = "Mi dispiace, al momento non riesco a rispondere. Riprova tra poco o contatta l'host."

const systemTemplate = `You are a vacation-rental concierge for property %s.
Rules (do not violate):
- Reply in the guest language: %s.
- Use ONLY the provided context and booking row. Do NOT browse the web or invent facts.
- Adapt suggestions to the current season: %s, and daypart: %s.
- If the user asks for the door code:
  - Only provide it if booking.authorized == "yes" AND current time >= booking.checkin_time of the arrival day.
  - Otherwise, explain the rule and do not reveal the code.
- Be concise, practical, friendly, and specific. Use names if present.
- If an answer is not in context, say you will ask the host and offer alternatives.`

const (
	callTimeout = 60 * time.Second
	maxRetries  = 3
)

// OpenAIResponder implements the Responder collaborator. It fails
// soft: when no API key is configured, or every attempt fails, the
// guest gets a fixed apologetic message instead of an error.
type OpenAIResponder struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	limiter     *rate.Limiter
	logger      logger.Logger
}

var _ repository.Responder = (*OpenAIResponder)(nil)

// NewOpenAIResponder creates the responder. An empty apiKey yields an
// unconfigured responder that always answers with the fallback.
func NewOpenAIResponder(apiKey, model string, temperature float64, maxTokens int, log logger.Logger) *OpenAIResponder {
	r := &OpenAIResponder{
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		limiter:     rate.NewLimiter(rate.Limit(3), 5),
		logger:      log,
	}
	if apiKey != "" {
		r.client = openai.NewClient(apiKey)
	} else {
		log.Warn("OpenAI API key not configured, AI answers disabled")
	}
	return r
}

// Generate produces an answer grounded on the snippets and booking
// row.
func (r *OpenAIResponder) Generate(ctx context.Context, userMsg string, rc repository.ResponderContext) (string, error) {
	if r.client == nil {
		return fallbackMessage, nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return fallbackMessage, nil
	}

	system := fmt.Sprintf(systemTemplate, rc.PropertyID, rc.Locale, rc.Season, rc.Daypart)
	user := r.buildUserMessage(userMsg, rc)

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, callTimeout)
		resp, err = r.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model:       r.model,
			Temperature: r.temperature,
			MaxTokens:   r.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		cancel()

		if err == nil && len(resp.Choices) > 0 {
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}
		r.logger.Warn("OpenAI attempt failed", "attempt", attempt, "error", err)
		if attempt < maxRetries {
			select {
			case <-time.After(time.Duration(attempt*2) * time.Second):
			case <-ctx.Done():
				return fallbackMessage, nil
			}
		}
	}
	r.logger.Error("OpenAI exhausted retries", "error", err)
	return fallbackMessage, nil
}

func (r *OpenAIResponder) buildUserMessage(userMsg string, rc repository.ResponderContext) string {
	var b strings.Builder
	b.WriteString("### KNOWLEDGE\n")
	if len(rc.Snippets) > 0 {
		b.WriteString(strings.Join(rc.Snippets, "\n\n---\n"))
	} else {
		b.WriteString("(none)")
	}
	b.WriteString("\n\n### BOOKING_ROW\n")
	if rc.HasBooking {
		for col, v := range rc.Booking.ToMap() {
			if v == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", col, v)
		}
	} else {
		b.WriteString("{}\n")
	}
	fmt.Fprintf(&b, "\n### QUESTION (%s)\n%s", rc.Locale, userMsg)
	return b.String()
}
