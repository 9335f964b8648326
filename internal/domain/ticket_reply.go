package domain

import "time"

// ReplyAttachment is metadata for a stored attachment. Position preserves
// the order the attachments were submitted in.
type ReplyAttachment struct {
	ID        string
	ReplyID   string
	FileName  string
	URL       string
	SizeBytes int64
	Position  int
	CreatedAt time.Time
}

// TicketReply is a single message in a ticket thread. Replies are
// immutable once created.
type TicketReply struct {
	ID          string
	TicketID    string
	AuthorID    string
	Content     string
	Attachments []ReplyAttachment
	CreatedAt   time.Time
}
