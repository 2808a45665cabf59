// Package backend adapts a generic chat-style request/response protocol
// across multiple vendor text-generation APIs. Each adapter owns its
// vendor's role vocabulary, token accounting and truncation policy.
package backend

import "context"

// Sender identifies the logical origin of a Message.
type Sender string

const (
	SenderSystem      Sender = "system"
	SenderEnvironment Sender = "environment"
	SenderAgent       Sender = "agent"
)

// Message is a single conversational turn. Values are immutable once
// constructed; Sender must never be empty.
type Message struct {
	Sender  Sender
	Content string
}

// Request is a single backend invocation. The prompt payload type is
// generic: chat backends take an ordered []Message, the dummy backend
// takes anything.
type Request[P any] struct {
	Prompt P
	Stop   []string
}

// Backend is the pluggable client interface. Implementations must be
// safe for concurrent use.
type Backend[P any] interface {
	// Run issues a single request and returns the raw response text.
	Run(ctx context.Context, req Request[P]) (string, error)

	// BatchRun issues several requests and returns the responses in
	// input order.
	BatchRun(ctx context.Context, reqs []Request[P]) ([]string, error)
}

// ChatBackend is a Backend whose prompt is an ordered message sequence.
type ChatBackend = Backend[[]Message]

// Retryer is implemented by chat backends that offer a retrying
// request variant alongside the single-shot Run.
type Retryer interface {
	RunWithRetry(ctx context.Context, req Request[[]Message]) (string, error)
}

// runSequential is the default BatchRun: one Run per request, results
// in input order, first error aborts.
func runSequential[P any](ctx context.Context, b Backend[P], reqs []Request[P]) ([]string, error) {
	responses := make([]string, 0, len(reqs))
	for _, req := range reqs {
		resp, err := b.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
