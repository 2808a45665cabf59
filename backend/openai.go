package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/rs/zerolog/log"

	"github.com/requiem-ai/bessie/timeout"
)

const (
	openAISingleShotTimeout = 120 * time.Second
	openAIRetryTimeout      = 60 * time.Second
	openAIRetryAttempts     = 3
	openAIRetryBackoff      = 10 * time.Second
)

var openAIRoles = map[Sender]string{
	SenderSystem:      "system",
	SenderEnvironment: "user",
	SenderAgent:       "assistant",
}

// OpenAIChat talks to the OpenAI chat completions API via the official
// SDK. The client reads OPENAI_API_KEY from the environment; a missing
// key surfaces at call time, not at construction.
type OpenAIChat struct {
	model       string
	temperature float64
	maxTokens   int
	tokenLimit  int
	countTokens func([]wireMessage) int
	backoff     time.Duration
	client      openai.Client
}

// NewOpenAIChat builds an adapter for the given model. The total
// context budget comes from OPENAI_TOKEN_LIMIT (default 8000; set it
// empty to disable truncation). Extra request options are passed to
// the SDK client.
func NewOpenAIChat(model string, temperature float64, maxTokens int, opts ...option.RequestOption) *OpenAIChat {
	return &OpenAIChat{
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		tokenLimit:  tokenLimitFromEnv("OPENAI_TOKEN_LIMIT"),
		countTokens: countChatTokens,
		backoff:     openAIRetryBackoff,
		client:      openai.NewClient(opts...),
	}
}

func (b *OpenAIChat) prepare(prompt []Message) ([]wireMessage, error) {
	wire, err := mapRoles(prompt, openAIRoles)
	if err != nil {
		return nil, err
	}
	// Leading system messages survive truncation on this vendor.
	return truncate(wire, b.tokenLimit, b.maxTokens, b.countTokens, true), nil
}

// Run issues a single best-effort request under a long deadline and
// propagates the first failure.
func (b *OpenAIChat) Run(ctx context.Context, req Request[[]Message]) (string, error) {
	wire, err := b.prepare(req.Prompt)
	if err != nil {
		return "", err
	}
	b.logRequest(wire)

	var text string
	err = timeout.Do(ctx, openAISingleShotTimeout, "OpenAI API timed out", func(ctx context.Context) error {
		var err error
		text, err = b.complete(ctx, wire, req.Stop)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Info().Str("response", text).Msg("received response from OpenAI API")
	return text, nil
}

// RunWithRetry behaves like Run but uses a shorter per-attempt deadline
// and retries failed attempts after a fixed backoff, surfacing only
// total exhaustion as a BackendError.
func (b *OpenAIChat) RunWithRetry(ctx context.Context, req Request[[]Message]) (string, error) {
	wire, err := b.prepare(req.Prompt)
	if err != nil {
		return "", err
	}
	b.logRequest(wire)

	var lastErr error
	for attempt := 1; attempt <= openAIRetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(b.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		var text string
		err := timeout.Do(ctx, openAIRetryTimeout, "OpenAI API timed out", func(ctx context.Context) error {
			var err error
			text, err = b.complete(ctx, wire, req.Stop)
			return err
		})
		if err == nil {
			log.Info().Str("response", text).Msg("received response from OpenAI API")
			return text, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("OpenAI API request failed")
	}
	return "", &BackendError{Vendor: "OpenAI", Attempts: openAIRetryAttempts, Err: lastErr}
}

func (b *OpenAIChat) BatchRun(ctx context.Context, reqs []Request[[]Message]) ([]string, error) {
	return runSequential[[]Message](ctx, b, reqs)
}

func (b *OpenAIChat) complete(ctx context.Context, wire []wireMessage, stop []string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(b.model),
		Temperature: openai.Float(b.temperature),
		MaxTokens:   openai.Int(int64(b.maxTokens)),
		Messages:    toOpenAIMessages(wire),
	}
	if len(stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: stop}
	}

	completion, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (b *OpenAIChat) logRequest(wire []wireMessage) {
	log.Info().
		Str("model", b.model).
		Int("messages", len(wire)).
		Msg("sending request to OpenAI chat completion API")
}

func toOpenAIMessages(wire []wireMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(wire))
	for i, m := range wire {
		switch m.Role {
		case "system":
			out[i] = openai.SystemMessage(m.Content)
		case "assistant":
			out[i] = openai.AssistantMessage(m.Content)
		default:
			out[i] = openai.UserMessage(m.Content)
		}
	}
	return out
}
