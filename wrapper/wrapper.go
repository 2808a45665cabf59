// Package wrapper turns raw observations into a growing conversation
// history and raw model responses back into application-level actions.
package wrapper

import (
	"context"
	"strings"

	"github.com/requiem-ai/bessie/backend"
)

// ChatWrapper owns the message history of a single conversation. An
// agent response is held as a pending action and only committed to
// history on the next Prompt call, so the caller can inspect it before
// it becomes immutable history. Not safe for concurrent use.
type ChatWrapper struct {
	systemMessage string
	messages      []backend.Message
	lastAction    *backend.Message

	// PromptFunc derives environment messages from an observation.
	// Nil wraps the single observation string.
	PromptFunc func(observation string) []string

	// ParseFunc transforms the raw model response into the returned
	// action. Nil is identity.
	ParseFunc func(action string) string
}

// NewChatWrapper creates a wrapper whose history starts with the given
// system message, if non-empty.
func NewChatWrapper(systemMessage string) *ChatWrapper {
	w := &ChatWrapper{systemMessage: systemMessage}
	w.Reset()
	return w
}

// Prompt commits any pending agent action, appends the environment
// messages derived from the observation and returns the full history.
// The returned slice is a read reference; callers must not mutate it.
func (w *ChatWrapper) Prompt(observation string) []backend.Message {
	if w.lastAction != nil {
		w.messages = append(w.messages, *w.lastAction)
		w.lastAction = nil
	}
	observations := []string{observation}
	if w.PromptFunc != nil {
		observations = w.PromptFunc(observation)
	}
	for _, o := range observations {
		w.messages = append(w.messages, backend.Message{Sender: backend.SenderEnvironment, Content: o})
	}
	return w.messages
}

// Parse records the model response as the pending agent action and
// returns the (possibly transformed) action. Repeated calls before the
// next Prompt overwrite the pending value and never duplicate history;
// callers are expected to Prompt between Parse calls.
func (w *ChatWrapper) Parse(action string) string {
	w.lastAction = &backend.Message{
		Sender:  backend.SenderAgent,
		Content: strings.TrimSpace(action) + "\n",
	}
	if w.ParseFunc != nil {
		return w.ParseFunc(action)
	}
	return action
}

// Run is the per-turn entry point: Prompt, one backend call, Parse.
func (w *ChatWrapper) Run(ctx context.Context, b backend.ChatBackend, observation string, stop ...string) (string, error) {
	prompt := w.Prompt(observation)
	response, err := b.Run(ctx, backend.Request[[]backend.Message]{Prompt: prompt, Stop: stop})
	if err != nil {
		return "", err
	}
	return w.Parse(response), nil
}

// History returns the committed history. The pending action, if any,
// is not included.
func (w *ChatWrapper) History() []backend.Message {
	return w.messages
}

// Reset clears the history back to the optional system message and
// drops any pending action.
func (w *ChatWrapper) Reset() {
	w.messages = nil
	w.lastAction = nil
	if w.systemMessage != "" {
		w.messages = append(w.messages, backend.Message{
			Sender:  backend.SenderSystem,
			Content: strings.TrimSpace(w.systemMessage),
		})
	}
}
