package search

import (
	"context"
	"errors"

	chromem "github.com/philippgille/chromem-go"
)

// SourceKind identifies where an indexed document came from. Chat
// responses cite the kind per claim.
type SourceKind string

const (
	SourceKB     SourceKind = "kb"
	SourceTicket SourceKind = "ticket"
)

// Document is an indexable unit with a precomputed embedding.
type Document struct {
	Kind      SourceKind
	ID        string
	Title     string
	Snippet   string
	Embedding []float32
}

// Result is a similarity hit.
type Result struct {
	Kind       SourceKind
	ID         string
	Title      string
	Snippet    string
	Similarity float32
}

// Index stores ticket and article embeddings for top-K retrieval.
type Index interface {
	Upsert(ctx context.Context, doc Document) error
	Remove(ctx context.Context, kind SourceKind, id string) error
	Query(ctx context.Context, embedding []float32, topK int) ([]Result, error)
}

type chromemIndex struct {
	collection *chromem.Collection
}

// NewIndex builds an in-process chromem-backed index. Embeddings are
// always supplied by the caller, so the collection's embedding func is a
// guard that must never run.
func NewIndex(collectionName string) (Index, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("index documents carry precomputed embeddings")
	})
	if err != nil {
		return nil, err
	}
	return &chromemIndex{collection: collection}, nil
}

func docID(kind SourceKind, id string) string {
	return string(kind) + ":" + id
}

func (i *chromemIndex) Upsert(ctx context.Context, doc Document) error {
	return i.collection.AddDocument(ctx, chromem.Document{
		ID: docID(doc.Kind, doc.ID),
		Metadata: map[string]string{
			"kind":  string(doc.Kind),
			"id":    doc.ID,
			"title": doc.Title,
		},
		Embedding: doc.Embedding,
		Content:   doc.Snippet,
	})
}

func (i *chromemIndex) Remove(ctx context.Context, kind SourceKind, id string) error {
	return i.collection.Delete(ctx, nil, nil, docID(kind, id))
}

func (i *chromemIndex) Query(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	count := i.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}
	if topK > count {
		topK = count
	}

	hits, err := i.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Kind:       SourceKind(hit.Metadata["kind"]),
			ID:         hit.Metadata["id"],
			Title:      hit.Metadata["title"],
			Snippet:    hit.Content,
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}
