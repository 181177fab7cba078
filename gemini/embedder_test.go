package gemini_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// models is a function-field fake of the genai.Models methods we use.
type models struct {
	EmbedContentFn    func(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	GenerateContentFn func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *models) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return m.EmbedContentFn(ctx, model, contents, config)
}

func (m *models) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.GenerateContentFn(ctx, model, contents, config)
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("sends text, model and task type", func(t *testing.T) {
		t.Parallel()

		var gotModel, gotTask, gotText string
		m := &models{
			EmbedContentFn: func(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
				gotModel = model
				gotTask = config.TaskType
				gotText = contents[0].Parts[0].Text
				return &genai.EmbedContentResponse{
					Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2, 0.3}}},
				}, nil
			},
		}

		e := gemini.NewEmbedder(m)
		v, err := e.Embed(context.Background(), "install with pip", ragthedocs.TaskDocument)

		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, v)
		assert.Equal(t, gemini.DefaultEmbeddingModel, gotModel)
		assert.Equal(t, "RETRIEVAL_DOCUMENT", gotTask)
		assert.Equal(t, "install with pip", gotText)
	})

	t.Run("applies model and dimension options", func(t *testing.T) {
		t.Parallel()

		var gotModel string
		var gotDims *int32
		m := &models{
			EmbedContentFn: func(_ context.Context, model string, _ []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
				gotModel = model
				gotDims = config.OutputDimensionality
				return &genai.EmbedContentResponse{
					Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
				}, nil
			},
		}

		e := gemini.NewEmbedder(m, gemini.WithEmbeddingModel("text-embedding-004"), gemini.WithDimensions(768))
		_, err := e.Embed(context.Background(), "q", ragthedocs.TaskQuery)

		require.NoError(t, err)
		assert.Equal(t, "text-embedding-004", gotModel)
		require.NotNil(t, gotDims)
		assert.Equal(t, int32(768), *gotDims)
	})

	t.Run("maps HTTP 429 to ERATELIMIT", func(t *testing.T) {
		t.Parallel()

		m := &models{
			EmbedContentFn: func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
				return nil, fmt.Errorf("request failed: %w", genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"})
			},
		}

		_, err := gemini.NewEmbedder(m).Embed(context.Background(), "text", ragthedocs.TaskDocument)

		require.Error(t, err)
		assert.Equal(t, ragthedocs.ERATELIMIT, ragthedocs.ErrorCode(err))
	})

	t.Run("wraps other API errors", func(t *testing.T) {
		t.Parallel()

		apiErr := genai.APIError{Code: 500, Message: "internal"}
		m := &models{
			EmbedContentFn: func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
				return nil, apiErr
			},
		}

		_, err := gemini.NewEmbedder(m).Embed(context.Background(), "text", ragthedocs.TaskDocument)

		require.Error(t, err)
		assert.Equal(t, ragthedocs.EINTERNAL, ragthedocs.ErrorCode(err))
		var target genai.APIError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, 500, target.Code)
	})

	t.Run("rejects empty responses", func(t *testing.T) {
		t.Parallel()

		m := &models{
			EmbedContentFn: func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
				return &genai.EmbedContentResponse{}, nil
			},
		}

		_, err := gemini.NewEmbedder(m).Embed(context.Background(), "text", ragthedocs.TaskDocument)

		assert.Equal(t, ragthedocs.EINTERNAL, ragthedocs.ErrorCode(err))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.NewEmbedder(nil).Embed(context.Background(), "", ragthedocs.TaskDocument)

		assert.Equal(t, ragthedocs.EINVALID, ragthedocs.ErrorCode(err))
	})
}
