// Package gemini implements embeddings, question answering and token
// counting on top of Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jerpint/ragthedocs"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the model used for document and query embeddings.
const DefaultEmbeddingModel = "gemini-embedding-001"

var _ ragthedocs.Embedder = (*Embedder)(nil)

// ContentEmbedder is the subset of genai.Models used by Embedder.
type ContentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder implements ragthedocs.Embedder using the Gemini embedding API.
type Embedder struct {
	models     ContentEmbedder
	model      string
	dimensions int32
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithEmbeddingModel overrides DefaultEmbeddingModel.
func WithEmbeddingModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions truncates embeddings to n dimensions. Zero keeps the
// model default.
func WithDimensions(n int) EmbedderOption {
	return func(e *Embedder) {
		e.dimensions = int32(n)
	}
}

// NewEmbedder creates an Embedder. Pass client.Models of a *genai.Client.
func NewEmbedder(models ContentEmbedder, opts ...EmbedderOption) *Embedder {
	e := &Embedder{models: models, model: DefaultEmbeddingModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns the embedding of text for the given task.
func (e *Embedder) Embed(ctx context.Context, text string, task ragthedocs.TaskType) ([]float32, error) {
	if text == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "text required")
	}

	config := &genai.EmbedContentConfig{TaskType: string(task)}
	if e.dimensions > 0 {
		config.OutputDimensionality = &e.dimensions
	}

	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), config)
	if err != nil {
		return nil, classify(err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, ragthedocs.Errorf(ragthedocs.EINTERNAL, "gemini returned no embedding")
	}
	return resp.Embeddings[0].Values, nil
}

// classify maps throttling responses to ERATELIMIT.
func classify(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests {
		return ragthedocs.Errorf(ragthedocs.ERATELIMIT, "gemini rate limit exceeded: %v", err)
	}
	return fmt.Errorf("gemini embed: %w", err)
}
