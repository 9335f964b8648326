package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-crm/internal/embedding"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/repository"
	"github.com/spec-kit/support-crm/internal/search"
)

// EmbeddingWorker recomputes content embeddings whenever a ticket or
// article's textual fields change, persisting the vector and keeping the
// search index in step.
type EmbeddingWorker struct {
	tickets     repository.TicketRepository
	articles    repository.KBRepository
	ticketEmbed embedding.Embedder
	kbEmbed     embedding.Embedder
	index       search.Index
	logger      *zap.Logger
}

// EmbeddingWorkerDependencies bundles collaborators.
type EmbeddingWorkerDependencies struct {
	TicketRepo     repository.TicketRepository
	KBRepo         repository.KBRepository
	TicketEmbedder embedding.Embedder
	KBEmbedder     embedding.Embedder
	Index          search.Index
}

// NewEmbeddingWorker constructs the worker.
func NewEmbeddingWorker(deps EmbeddingWorkerDependencies, logger *zap.Logger) *EmbeddingWorker {
	return &EmbeddingWorker{
		tickets:     deps.TicketRepo,
		articles:    deps.KBRepo,
		ticketEmbed: deps.TicketEmbedder,
		kbEmbed:     deps.KBEmbedder,
		index:       deps.Index,
		logger:      logger,
	}
}

// Register subscribes the worker to the events that change indexed text.
func (w *EmbeddingWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, w.handleTicketChanged)
	dispatcher.Subscribe(events.EventTicketUpdated, w.handleTicketChanged)
	dispatcher.Subscribe(events.EventTicketReplied, w.handleTicketChanged)
	dispatcher.Subscribe(events.EventArticleSaved, w.handleArticleSaved)
	dispatcher.Subscribe(events.EventArticleDeleted, w.handleArticleDeleted)
}

func (w *EmbeddingWorker) handleTicketChanged(ctx context.Context, event events.Event) error {
	ticket, err := w.tickets.GetByID(ctx, event.SubjectID)
	if err != nil {
		w.logger.Warn("embedding refresh: load ticket", zap.String("ticket_id", event.SubjectID), zap.Error(err))
		return err
	}

	text := embedding.TicketText(ticket)
	vector, err := w.ticketEmbed.Embed(ctx, text)
	if err != nil {
		w.logger.Warn("embedding refresh: embed ticket", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return err
	}

	if err := w.tickets.UpdateEmbedding(ctx, ticket.ID, vector); err != nil {
		w.logger.Warn("embedding refresh: persist ticket vector", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return err
	}

	return w.index.Upsert(ctx, search.Document{
		Kind:      search.SourceTicket,
		ID:        ticket.ID,
		Title:     ticket.Title,
		Snippet:   text,
		Embedding: vector,
	})
}

func (w *EmbeddingWorker) handleArticleSaved(ctx context.Context, event events.Event) error {
	article, err := w.articles.GetArticle(ctx, event.SubjectID)
	if err != nil {
		w.logger.Warn("embedding refresh: load article", zap.String("article_id", event.SubjectID), zap.Error(err))
		return err
	}

	text := embedding.ArticleText(article)
	vector, err := w.kbEmbed.Embed(ctx, text)
	if err != nil {
		w.logger.Warn("embedding refresh: embed article", zap.String("article_id", article.ID), zap.Error(err))
		return err
	}

	if err := w.articles.UpdateEmbedding(ctx, article.ID, vector); err != nil {
		w.logger.Warn("embedding refresh: persist article vector", zap.String("article_id", article.ID), zap.Error(err))
		return err
	}

	return w.index.Upsert(ctx, search.Document{
		Kind:      search.SourceKB,
		ID:        article.ID,
		Title:     article.Title,
		Snippet:   text,
		Embedding: vector,
	})
}

// handleArticleDeleted drops the article's vector from the index so stale
// embeddings never outlive their source text.
func (w *EmbeddingWorker) handleArticleDeleted(ctx context.Context, event events.Event) error {
	return w.index.Remove(ctx, search.SourceKB, event.SubjectID)
}

// Reindex rebuilds the search index from persisted articles and tickets,
// typically at startup. Articles without a stored vector are re-embedded;
// tickets without one are skipped and picked up on their next change.
func (w *EmbeddingWorker) Reindex(ctx context.Context) error {
	articles, err := w.articles.ListArticles(ctx)
	if err != nil {
		return err
	}
	for i := range articles {
		article := &articles[i]
		text := embedding.ArticleText(article)
		vector := article.ContentEmbedding
		if len(vector) == 0 {
			vector, err = w.kbEmbed.Embed(ctx, text)
			if err != nil {
				w.logger.Warn("reindex: embed article", zap.String("article_id", article.ID), zap.Error(err))
				continue
			}
		}
		if err := w.index.Upsert(ctx, search.Document{
			Kind:      search.SourceKB,
			ID:        article.ID,
			Title:     article.Title,
			Snippet:   text,
			Embedding: vector,
		}); err != nil {
			return err
		}
	}

	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		tickets, err := w.tickets.ListWithFilter(ctx, repository.TicketFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return err
		}
		for i := range tickets {
			ticket := &tickets[i]
			if len(ticket.ContentEmbedding) == 0 {
				continue
			}
			if err := w.index.Upsert(ctx, search.Document{
				Kind:      search.SourceTicket,
				ID:        ticket.ID,
				Title:     ticket.Title,
				Snippet:   embedding.TicketText(ticket),
				Embedding: ticket.ContentEmbedding,
			}); err != nil {
				return err
			}
		}
		if len(tickets) < pageSize {
			return nil
		}
	}
}
