package domain

import "time"

// KBCategory groups knowledge-base articles.
type KBCategory struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// KBArticle is a knowledge-base entry. ContentEmbedding must reflect the
// latest title+content; it is regenerated on every edit.
type KBArticle struct {
	ID               string
	Title            string
	Content          string
	CategoryID       *string
	CategoryName     string
	ContentEmbedding []float32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
