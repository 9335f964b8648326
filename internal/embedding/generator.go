package embedding

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spec-kit/support-crm/internal/config"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator is an OpenAI-backed Embedder. The model is fixed per
// instance; the chat and KB sides of the system hold separate instances.
type Generator struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewClient builds the shared provider client from config.
func NewClient(cfg config.EmbeddingConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewGenerator builds a Generator over the shared client.
func NewGenerator(client *openai.Client, model string) *Generator {
	return &Generator{client: client, model: openai.EmbeddingModel(model)}
}

// Embed generates a vector for the given text. Empty input is a
// validation failure; provider errors and empty responses are upstream
// failures.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}

	resp, err := g.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: g.model,
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError("embedding", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperrors.NewUpstreamError("embedding", errors.New("provider returned no vector"))
	}
	return resp.Data[0].Embedding, nil
}
