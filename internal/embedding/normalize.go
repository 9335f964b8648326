package embedding

import (
	"strings"
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
)

// Embedding text flattens structured records into labeled lines so that
// similarity search surfaces both semantically and categorically related
// items without a separate structured index.

// TicketText renders a ticket into the canonical embedding input.
func TicketText(t *domain.Ticket) string {
	tagNames := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	lines := []string{
		"Title: " + t.Title,
		"Description: " + t.Description,
		"Status: " + string(t.Status),
		"Priority: " + string(t.Priority),
		"Category: " + t.Category,
		"Tags: " + strings.Join(tagNames, ", "),
		"Department: " + t.Department,
		"Created At: " + formatTime(t.CreatedAt),
		"Updated At: " + formatTime(t.UpdatedAt),
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ArticleText renders a knowledge-base article into the canonical
// embedding input.
func ArticleText(a *domain.KBArticle) string {
	lines := []string{
		"Title: " + a.Title,
		"Content: " + a.Content,
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
