package embeddings

import (
	"context"
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultDimensions is the vector size used across the system. Resume and
// posting vectors must agree on it for cosine distance to make sense.
const DefaultDimensions = 384

var ErrRegistry = errx.NewRegistry("EMBEDDING")

var (
	CodeUpstreamUnavailable = ErrRegistry.Register("UPSTREAM_UNAVAILABLE", errx.TypeUnavailable,
		http.StatusServiceUnavailable, "embedding provider is unavailable")
	CodeEmptyText = ErrRegistry.Register("EMPTY_TEXT", errx.TypeValidation,
		http.StatusBadRequest, "text cannot be empty")
)

// Generator creates fixed-dimension embeddings for semantic search.
type Generator struct {
	client     *openai.Client
	dimensions int64
}

// NewGenerator creates an embedding generator. dimensions <= 0 falls back to
// DefaultDimensions.
func NewGenerator(apiKey string, dimensions int) *Generator {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Generator{
		client:     &client,
		dimensions: int64(dimensions),
	}
}

// Dimensions returns the vector size this generator produces.
func (g *Generator) Dimensions() int { return int(g.dimensions) }

// GenerateEmbedding creates an embedding vector for text.
func (g *Generator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrRegistry.New(CodeEmptyText)
	}

	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model:      openai.EmbeddingModelTextEmbedding3Small,
		Dimensions: openai.Int(g.dimensions),
	})
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeUpstreamUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrRegistry.New(CodeUpstreamUnavailable)
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

// GenerateBatchEmbeddings creates embeddings for multiple texts. Empty
// strings are dropped before the call.
func (g *Generator) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	validTexts := make([]string, 0, len(texts))
	for _, text := range texts {
		if text != "" {
			validTexts = append(validTexts, text)
		}
	}
	if len(validTexts) == 0 {
		return nil, ErrRegistry.New(CodeEmptyText)
	}

	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: validTexts,
		},
		Model:      openai.EmbeddingModelTextEmbedding3Small,
		Dimensions: openai.Int(g.dimensions),
	})
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeUpstreamUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrRegistry.New(CodeUpstreamUnavailable)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = toFloat32(data.Embedding)
	}
	return embeddings, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
