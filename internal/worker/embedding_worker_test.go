package worker

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/repository"
	"github.com/spec-kit/support-crm/internal/search"
)

type stubTicketRepo struct {
	tickets map[string]*domain.Ticket
	vectors map[string][]float32
}

func (r *stubTicketRepo) Create(context.Context, *domain.Ticket, []string) error { return nil }

func (r *stubTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

func (r *stubTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if filter.Offset > 0 {
		return nil, nil
	}
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *stubTicketRepo) UpdateStatus(context.Context, string, domain.TicketStatus) error { return nil }

func (r *stubTicketRepo) UpdatePriority(context.Context, string, domain.TicketPriority) error {
	return nil
}

func (r *stubTicketRepo) UpdateAssignee(context.Context, string, *string) error { return nil }

func (r *stubTicketRepo) UpdateEmbedding(_ context.Context, id string, embedding []float32) error {
	r.vectors[id] = embedding
	return nil
}

func (r *stubTicketRepo) Touch(context.Context, string) error { return nil }

type stubKBRepo struct {
	articles map[string]*domain.KBArticle
	vectors  map[string][]float32
}

func (r *stubKBRepo) CreateArticle(context.Context, *domain.KBArticle) error { return nil }

func (r *stubKBRepo) UpdateArticle(context.Context, *domain.KBArticle) error { return nil }

func (r *stubKBRepo) DeleteArticle(context.Context, string) error { return nil }

func (r *stubKBRepo) GetArticle(_ context.Context, id string) (*domain.KBArticle, error) {
	article, ok := r.articles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return article, nil
}

func (r *stubKBRepo) ListRecentArticles(context.Context, int) ([]domain.KBArticle, error) {
	return nil, nil
}

func (r *stubKBRepo) ListArticles(context.Context) ([]domain.KBArticle, error) {
	var out []domain.KBArticle
	for _, article := range r.articles {
		out = append(out, *article)
	}
	return out, nil
}

func (r *stubKBRepo) UpdateEmbedding(_ context.Context, id string, embedding []float32) error {
	r.vectors[id] = embedding
	return nil
}

func (r *stubKBRepo) CreateCategory(context.Context, *domain.KBCategory) error { return nil }

func (r *stubKBRepo) ListCategories(context.Context) ([]domain.KBCategory, error) { return nil, nil }

type stubEmbedder struct {
	vector []float32
	calls  int
}

func (e *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return e.vector, nil
}

type recordingIndex struct {
	upserts []search.Document
	removed []string
}

func (i *recordingIndex) Upsert(_ context.Context, doc search.Document) error {
	i.upserts = append(i.upserts, doc)
	return nil
}

func (i *recordingIndex) Remove(_ context.Context, kind search.SourceKind, id string) error {
	i.removed = append(i.removed, string(kind)+":"+id)
	return nil
}

func (i *recordingIndex) Query(context.Context, []float32, int) ([]search.Result, error) {
	return nil, nil
}

func newWorkerFixture() (*EmbeddingWorker, *stubTicketRepo, *stubKBRepo, *stubEmbedder, *recordingIndex, events.Dispatcher) {
	tickets := &stubTicketRepo{tickets: map[string]*domain.Ticket{}, vectors: map[string][]float32{}}
	articles := &stubKBRepo{articles: map[string]*domain.KBArticle{}, vectors: map[string][]float32{}}
	embedder := &stubEmbedder{vector: []float32{0.5, 0.5}}
	index := &recordingIndex{}

	w := NewEmbeddingWorker(EmbeddingWorkerDependencies{
		TicketRepo:     tickets,
		KBRepo:         articles,
		TicketEmbedder: embedder,
		KBEmbedder:     embedder,
		Index:          index,
	}, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	w.Register(dispatcher)
	return w, tickets, articles, embedder, index, dispatcher
}

func TestTicketEventRefreshesEmbedding(t *testing.T) {
	_, tickets, _, embedder, index, dispatcher := newWorkerFixture()
	tickets.tickets["t1"] = &domain.Ticket{
		ID:          "t1",
		Title:       "VPN keeps disconnecting",
		Description: "Drops every ten minutes on wifi.",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
	}

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "e1",
		Type:      events.EventTicketUpdated,
		SubjectID: "t1",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if embedder.calls != 1 {
		t.Fatalf("embedder calls = %d, want 1", embedder.calls)
	}
	if got := tickets.vectors["t1"]; len(got) == 0 {
		t.Fatal("ticket vector not persisted")
	}
	if len(index.upserts) != 1 {
		t.Fatalf("index upserts = %d, want 1", len(index.upserts))
	}
	doc := index.upserts[0]
	if doc.Kind != search.SourceTicket || doc.ID != "t1" || doc.Title != "VPN keeps disconnecting" {
		t.Fatalf("unexpected index doc: %+v", doc)
	}
}

func TestArticleSavedRefreshesEmbedding(t *testing.T) {
	_, _, articles, _, index, dispatcher := newWorkerFixture()
	articles.articles["a1"] = &domain.KBArticle{
		ID:      "a1",
		Title:   "Configuring the VPN client",
		Content: "Download the client and import the profile.",
	}

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "e2",
		Type:      events.EventArticleSaved,
		SubjectID: "a1",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if got := articles.vectors["a1"]; len(got) == 0 {
		t.Fatal("article vector not persisted")
	}
	if len(index.upserts) != 1 || index.upserts[0].Kind != search.SourceKB {
		t.Fatalf("unexpected upserts: %+v", index.upserts)
	}
}

func TestArticleDeletedRemovesFromIndex(t *testing.T) {
	_, _, _, _, index, dispatcher := newWorkerFixture()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "e3",
		Type:      events.EventArticleDeleted,
		SubjectID: "a9",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(index.removed) != 1 || index.removed[0] != "kb:a9" {
		t.Fatalf("removed = %v, want [kb:a9]", index.removed)
	}
}

func TestReindexUsesStoredVectors(t *testing.T) {
	w, tickets, articles, embedder, index, _ := newWorkerFixture()

	articles.articles["a1"] = &domain.KBArticle{
		ID:               "a1",
		Title:            "Stored",
		Content:          "Already embedded.",
		ContentEmbedding: []float32{1, 0},
	}
	articles.articles["a2"] = &domain.KBArticle{
		ID:      "a2",
		Title:   "Fresh",
		Content: "Needs a vector.",
	}
	tickets.tickets["t1"] = &domain.Ticket{
		ID:               "t1",
		Title:            "Indexed ticket",
		ContentEmbedding: []float32{0, 1},
	}
	tickets.tickets["t2"] = &domain.Ticket{
		ID:    "t2",
		Title: "Never embedded",
	}

	if err := w.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	// Only the article without a stored vector hits the provider.
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", embedder.calls)
	}

	indexed := map[string]bool{}
	for _, doc := range index.upserts {
		indexed[string(doc.Kind)+":"+doc.ID] = true
	}
	for _, want := range []string{"kb:a1", "kb:a2", "ticket:t1"} {
		if !indexed[want] {
			t.Errorf("document %s missing from index", want)
		}
	}
	if indexed["ticket:t2"] {
		t.Error("ticket without a stored vector should be skipped")
	}
}
