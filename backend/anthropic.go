package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/requiem-ai/bessie/timeout"
)

const anthropicCallTimeout = 60 * time.Second

var anthropicRoles = map[Sender]string{
	SenderSystem:      "system",
	SenderEnvironment: "Human",
	SenderAgent:       "Assistant",
}

// AnthropicChat talks to the Anthropic messages API via the official
// SDK. The client reads ANTHROPIC_API_KEY from the environment; a
// missing key surfaces at call time, not at construction.
//
// System messages are dropped from the formatted conversation, the
// oldest message is always dropped first during truncation, and the
// response is whitespace-trimmed. All three are deliberate policies of
// this vendor adapter and intentionally differ from the OpenAI one.
type AnthropicChat struct {
	model       string
	temperature float64
	maxTokens   int
	tokenLimit  int
	countTokens func([]wireMessage) int
	client      anthropic.Client
}

// NewAnthropicChat builds an adapter for the given model. The total
// context budget comes from ANTHROPIC_TOKEN_LIMIT (default 8000; set
// it empty to disable truncation).
func NewAnthropicChat(model string, temperature float64, maxTokens int, opts ...option.RequestOption) *AnthropicChat {
	b := &AnthropicChat{
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		tokenLimit:  tokenLimitFromEnv("ANTHROPIC_TOKEN_LIMIT"),
		client:      anthropic.NewClient(opts...),
	}
	// The budget is measured over the flattened prompt string, not
	// over per-message counts as on the OpenAI side.
	b.countTokens = func(wire []wireMessage) int {
		return countText(flattenAnthropic(wire))
	}
	return b
}

// flattenAnthropic renders messages the classic completion way:
// role-prefixed paragraphs terminated by the assistant cue, with
// system messages ignored. The token counter measures this string.
func flattenAnthropic(wire []wireMessage) string {
	var b strings.Builder
	for _, m := range wire {
		if m.Role == "system" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	b.WriteString("\n\nAssistant:")
	return b.String()
}

func (b *AnthropicChat) prepare(prompt []Message) ([]wireMessage, error) {
	wire, err := mapRoles(prompt, anthropicRoles)
	if err != nil {
		return nil, err
	}
	return truncate(wire, b.tokenLimit, b.maxTokens, b.countTokens, false), nil
}

// Run issues a single request under a scoped deadline and propagates
// the first failure. The returned text is whitespace-trimmed.
func (b *AnthropicChat) Run(ctx context.Context, req Request[[]Message]) (string, error) {
	wire, err := b.prepare(req.Prompt)
	if err != nil {
		return "", err
	}
	log.Info().
		Str("model", b.model).
		Int("messages", len(wire)).
		Msg("sending request to Anthropic messages API")

	var text string
	err = timeout.Do(ctx, anthropicCallTimeout, "Anthropic API timed out", func(ctx context.Context) error {
		var err error
		text, err = b.complete(ctx, wire, req.Stop)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Info().Str("response", text).Msg("received response from Anthropic API")
	return strings.TrimSpace(text), nil
}

func (b *AnthropicChat) BatchRun(ctx context.Context, reqs []Request[[]Message]) ([]string, error) {
	return runSequential[[]Message](ctx, b, reqs)
}

func (b *AnthropicChat) complete(ctx context.Context, wire []wireMessage, stop []string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		Temperature: anthropic.Float(b.temperature),
		MaxTokens:   int64(b.maxTokens),
		Messages:    toAnthropicMessages(wire),
	}
	if len(stop) > 0 {
		params.StopSequences = stop
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var out strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

func toAnthropicMessages(wire []wireMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(wire))
	for _, m := range wire {
		switch m.Role {
		case "Assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case "Human":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}
