package backend

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	bpeOnce sync.Once
	bpeEnc  tokenizer.Codec
)

// encoder returns a singleton BPE codec. cl100k_base covers the GPT-4
// era models this tool targets and is a serviceable stand-in for the
// Anthropic counter, which only feeds the truncation budget.
func encoder() tokenizer.Codec {
	bpeOnce.Do(func() {
		var err error
		bpeEnc, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			panic("failed to initialize tiktoken encoder: " + err.Error())
		}
	})
	return bpeEnc
}

// countText returns the number of BPE tokens in the given text.
func countText(text string) int {
	ids, _, _ := encoder().Encode(text)
	return len(ids)
}

// wireMessage is a role-mapped message in a vendor's vocabulary,
// produced after condensation and consumed by truncation/formatting.
type wireMessage struct {
	Role    string
	Content string
}

// countChatTokens counts the tokens of a chat completion request the
// way OpenAI documents it: 4 metadata tokens per message plus 2 prompt
// tokens to prime the model response, plus the content tokens.
func countChatTokens(messages []wireMessage) int {
	tokens := len(messages)*4 + 2
	for _, m := range messages {
		tokens += countText(m.Content)
	}
	return tokens
}

// mapRoles condenses messages and translates each sender through the
// given vendor vocabulary. An unmapped sender is a programming error.
func mapRoles(messages []Message, roles map[Sender]string) ([]wireMessage, error) {
	condensed, err := Condense(messages)
	if err != nil {
		return nil, err
	}
	wire := make([]wireMessage, 0, len(condensed))
	for _, m := range condensed {
		role, ok := roles[m.Sender]
		if !ok {
			return nil, &InvalidRoleError{Sender: m.Sender}
		}
		wire = append(wire, wireMessage{Role: role, Content: m.Content})
	}
	return wire, nil
}
