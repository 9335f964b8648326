package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-crm/internal/domain"
)

// ReplyRepository manages ticket thread replies and their attachments.
// Replies are append-only; there is no update or delete.
type ReplyRepository interface {
	Create(ctx context.Context, reply *domain.TicketReply) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketReply, error)
}

type replyRepository struct {
	pool *pgxpool.Pool
}

// NewReplyRepository builds repository.
func NewReplyRepository(pool *pgxpool.Pool) ReplyRepository {
	return &replyRepository{pool: pool}
}

func (r *replyRepository) Create(ctx context.Context, reply *domain.TicketReply) error {
	const query = `
        INSERT INTO ticket_replies (ticket_id, author_user_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		reply.TicketID,
		reply.AuthorID,
		reply.Content,
	).Scan(&reply.ID, &reply.CreatedAt); err != nil {
		return err
	}

	const attachmentQuery = `
        INSERT INTO reply_attachments (reply_id, file_name, url, size_bytes, position)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	for i := range reply.Attachments {
		att := &reply.Attachments[i]
		att.ReplyID = reply.ID
		att.Position = i
		if err := r.pool.QueryRow(ctx, attachmentQuery,
			att.ReplyID,
			att.FileName,
			att.URL,
			att.SizeBytes,
			att.Position,
		).Scan(&att.ID, &att.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *replyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketReply, error) {
	const query = `
        SELECT id, ticket_id, author_user_id, content, created_at
        FROM ticket_replies WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketReply
	for rows.Next() {
		var reply domain.TicketReply
		if err := rows.Scan(
			&reply.ID,
			&reply.TicketID,
			&reply.AuthorID,
			&reply.Content,
			&reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		attachments, err := r.attachmentsForReply(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Attachments = attachments
	}
	return result, nil
}

func (r *replyRepository) attachmentsForReply(ctx context.Context, replyID string) ([]domain.ReplyAttachment, error) {
	const query = `
        SELECT id, reply_id, file_name, url, size_bytes, position, created_at
        FROM reply_attachments WHERE reply_id=$1 ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, query, replyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReplyAttachment
	for rows.Next() {
		var att domain.ReplyAttachment
		if err := rows.Scan(
			&att.ID,
			&att.ReplyID,
			&att.FileName,
			&att.URL,
			&att.SizeBytes,
			&att.Position,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
