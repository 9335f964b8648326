package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/support-crm/internal/embedding"
	"github.com/spec-kit/support-crm/internal/search"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// promptTemplate is the fixed instruction template for the downstream
// LLM. {context} receives the retrieved snippets and {input} the raw
// user query.
const promptTemplate = `You are a customer support assistant with access to the knowledge base and historical ticket data.

Use the retrieved context below to answer the question:
- Prefer knowledge-base articles for standard solutions.
- Use ticket history as precedent for similar problems.
- When several similar tickets appear, surface the pattern across them.
- Cite the source type (KB article or ticket) for each claim you make.

Context:
{context}

Question: {input}`

// ChatPrompt is an assembled retrieval-augmented prompt. The LLM call
// itself happens outside this service.
type ChatPrompt struct {
	Prompt  string
	Sources []search.Result
}

// ChatService assembles retrieval-augmented prompts from the vector
// index over knowledge-base articles and tickets.
type ChatService struct {
	embedder embedding.Embedder
	index    search.Index
	topK     int
}

// NewChatService constructs the service.
func NewChatService(embedder embedding.Embedder, index search.Index, topK int) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{embedder: embedder, index: index, topK: topK}
}

// Assemble embeds the query, retrieves the top-K similar documents and
// renders the prompt template.
func (s *ChatService) Assemble(ctx context.Context, query string) (*ChatPrompt, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("query required", nil)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	sources, err := s.index.Query(ctx, vector, s.topK)
	if err != nil {
		return nil, err
	}

	prompt := strings.NewReplacer(
		"{context}", renderContext(sources),
		"{input}", query,
	).Replace(promptTemplate)

	return &ChatPrompt{Prompt: prompt, Sources: sources}, nil
}

func renderContext(sources []search.Result) string {
	if len(sources) == 0 {
		return "(no relevant context found)"
	}
	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, fmt.Sprintf("[%s] %s\n%s", sourceLabel(src.Kind), src.Title, src.Snippet))
	}
	return strings.Join(parts, "\n\n")
}

func sourceLabel(kind search.SourceKind) string {
	switch kind {
	case search.SourceKB:
		return "KB article"
	case search.SourceTicket:
		return "Ticket"
	}
	return "Source"
}
