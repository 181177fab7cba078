package mock

import (
	"context"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of ragthedocs.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string, task ragthedocs.TaskType) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string, task ragthedocs.TaskType) ([]float32, error) {
	return e.EmbedFn(ctx, text, task)
}

var _ ragthedocs.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of ragthedocs.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

var _ ragthedocs.Asker = (*Asker)(nil)

// Asker is a mock implementation of ragthedocs.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (*ragthedocs.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*ragthedocs.Answer, error) {
	return a.AskFn(ctx, question)
}
