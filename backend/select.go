package backend

import "strings"

// FromModel selects a chat backend by substring match on the model
// identifier. An unknown identifier is a configuration error reported
// before any network call.
func FromModel(model string, temperature float64, maxTokens int) (ChatBackend, error) {
	switch {
	case strings.Contains(model, "dummy"):
		return &Dummy[[]Message]{}, nil
	case strings.Contains(model, "gpt"):
		return NewOpenAIChat(model, temperature, maxTokens), nil
	case strings.Contains(model, "claude"):
		return NewAnthropicChat(model, temperature, maxTokens), nil
	default:
		return nil, &ConfigurationError{Model: model}
	}
}
