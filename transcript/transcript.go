// Package transcript persists a conversation as a flat Markdown-like
// file: an Args section followed by alternating Bessie/You blocks. The
// format is for humans; nothing guarantees it can be re-parsed.
package transcript

import (
	"fmt"
	"os"
	"strings"
)

// Writer appends conversation blocks to a single file, one write per
// turn, so everything up to the current turn survives a crash.
type Writer struct {
	path string
}

func New(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Path() string {
	return w.path
}

// WriteArgs records the invocation that started the conversation.
func (w *Writer) WriteArgs(model, request string, patterns []string) error {
	var b strings.Builder
	b.WriteString("## Args\n\n")
	fmt.Fprintf(&b, "- model: %s\n", model)
	fmt.Fprintf(&b, "- request: %s\n", request)
	if len(patterns) > 0 {
		fmt.Fprintf(&b, "- files: %s\n", strings.Join(patterns, ", "))
	}
	b.WriteString("\n")
	return w.append(b.String())
}

// WriteBessie records a model response.
func (w *Writer) WriteBessie(text string) error {
	return w.writeBlock("Bessie", text)
}

// WriteYou records a user turn.
func (w *Writer) WriteYou(text string) error {
	return w.writeBlock("You", text)
}

func (w *Writer) writeBlock(heading, text string) error {
	return w.append(fmt.Sprintf("## %s\n\n%s\n\n", heading, strings.TrimRight(text, "\n")))
}

func (w *Writer) append(block string) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript %s: %w", w.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("append transcript %s: %w", w.path, err)
	}
	return nil
}
