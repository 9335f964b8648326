package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "open"
	TicketStatusInProgress        TicketStatus = "in_progress"
	TicketStatusWaitingOnCustomer TicketStatus = "waiting_on_customer"
	TicketStatusResolved          TicketStatus = "resolved"
	TicketStatusClosed            TicketStatus = "closed"
)

// IsValid reports whether the status is one of the five known states.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingOnCustomer,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// IsValid reports whether the priority is one of the four known levels.
func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Tags reference the tag
// registry weakly; AssigneeID, when set, must point at an agent or admin.
type Ticket struct {
	ID               string
	ExternalKey      string
	RequesterID      string
	AssigneeID       *string
	Title            string
	Description      string
	Status           TicketStatus
	Priority         TicketPriority
	Category         string
	Department       string
	Tags             []Tag
	ContentEmbedding []float32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
