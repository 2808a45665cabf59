package backend

import (
	"errors"
	"strings"
)

var errEmptySender = errors.New("message has empty sender")

// Condense merges consecutive messages from the same sender into a
// single message and trims whitespace at the merge boundaries. Order is
// preserved and the pass is idempotent on already-condensed input. A
// message with an empty sender fails fast.
func Condense(messages []Message) ([]Message, error) {
	condensed := make([]Message, 0, len(messages))
	var content strings.Builder
	var sender Sender
	for _, message := range messages {
		if message.Sender == "" {
			return nil, errEmptySender
		}
		if message.Sender != sender {
			if sender != "" {
				condensed = append(condensed, Message{Sender: sender, Content: strings.TrimSpace(content.String())})
			}
			content.Reset()
			sender = message.Sender
		}
		content.WriteString(message.Content)
	}
	if sender != "" {
		condensed = append(condensed, Message{Sender: sender, Content: strings.TrimSpace(content.String())})
	}
	return condensed, nil
}
