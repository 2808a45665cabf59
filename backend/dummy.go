package backend

import "context"

// DummyResponse is what the dummy backend says, regardless of input.
const DummyResponse = "Moo!"

// Dummy is an offline backend for exercising the wrapper and CLI
// without network access. Its prompt payload is unconstrained.
type Dummy[P any] struct{}

func (d *Dummy[P]) Run(ctx context.Context, req Request[P]) (string, error) {
	return DummyResponse, nil
}

func (d *Dummy[P]) BatchRun(ctx context.Context, reqs []Request[P]) ([]string, error) {
	return runSequential[P](ctx, d, reqs)
}
