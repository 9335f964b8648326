package dto

import "time"

// ArticleRequest payload for article create/update.
type ArticleRequest struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	CategoryID *string `json:"category_id"`
}

// ArticleResponse includes the joined category name.
type ArticleResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID *string   `json:"category_id"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CategoryRequest payload.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse metadata.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GenerateEmbeddingRequest payload shared by the chat and KB embedding
// endpoints.
type GenerateEmbeddingRequest struct {
	Text string `json:"text"`
}

// GenerateEmbeddingResponse carries the provider's vector.
type GenerateEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// ChatRequest payload.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatSourceResponse cites one retrieved document.
type ChatSourceResponse struct {
	Kind       string  `json:"kind"`
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float32 `json:"similarity"`
}

// ChatResponse carries the assembled prompt and its sources.
type ChatResponse struct {
	Prompt  string               `json:"prompt"`
	Sources []ChatSourceResponse `json:"sources"`
}

// UploadResponse carries the stored object address.
type UploadResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}
