package events

import (
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketReplied  EventType = "ticket_replied"
	EventArticleSaved   EventType = "article_saved"
	EventArticleDeleted EventType = "article_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketUpdatedPayload records which field changed on a ticket.
type TicketUpdatedPayload struct {
	Field       string                `json:"field"`
	OldStatus   domain.TicketStatus   `json:"old_status,omitempty"`
	NewStatus   domain.TicketStatus   `json:"new_status,omitempty"`
	OldPriority domain.TicketPriority `json:"old_priority,omitempty"`
	NewPriority domain.TicketPriority `json:"new_priority,omitempty"`
	AssigneeID  *string               `json:"assignee_id,omitempty"`
}

// TicketRepliedPayload describes an appended reply.
type TicketRepliedPayload struct {
	ReplyID         string `json:"reply_id"`
	AttachmentCount int    `json:"attachment_count"`
}
