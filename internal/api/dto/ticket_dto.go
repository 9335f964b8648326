package dto

import (
	"time"

	"github.com/spec-kit/support-crm/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Department  string                `json:"department"`
	TagIDs      []string              `json:"tag_ids"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// UpdateAssigneeRequest payload. A null assignee clears the assignment.
type UpdateAssigneeRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Content     string              `json:"content"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest describes attachment input, in submission order.
type AttachmentRequest struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
}

// TagResponse metadata.
type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Title       string                `json:"title"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Department  string                `json:"department"`
	AssigneeID  *string               `json:"assignee_id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string          `json:"description"`
	Tags        []TagResponse   `json:"tags"`
	Replies     []ReplyResponse `json:"replies"`
}

// ReplyResponse represents a thread reply.
type ReplyResponse struct {
	ID          string               `json:"id"`
	AuthorID    string               `json:"author_id"`
	Content     string               `json:"content"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
}
