package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/persistence"
	"github.com/spec-kit/support-crm/internal/repository"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

const ticketDetailTTL = 5 * time.Minute

// TicketService coordinates ticket workflows. Every mutation invalidates
// the ticket's cached detail view and publishes an event so the
// embedding worker can refresh the ticket's vector.
type TicketService struct {
	tickets    repository.TicketRepository
	replies    repository.ReplyRepository
	users      repository.UserRepository
	cache      persistence.ViewCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ReplyRepo  repository.ReplyRepository
	UserRepo   repository.UserRepository
	Cache      persistence.ViewCache
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	Department  string
	TagIDs      []string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	AssigneeID *string
	Department *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// ReplyAttachmentInput carries attachment metadata in submission order.
type ReplyAttachmentInput struct {
	Name      string
	URL       string
	SizeBytes int64
}

// TicketDetail is the cached detail view of a ticket.
type TicketDetail struct {
	Ticket  domain.Ticket
	Replies []domain.TicketReply
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		replies:    deps.ReplyRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a ticket on behalf of the requester.
func (s *TicketService) CreateTicket(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		RequesterID: requesterID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    strings.TrimSpace(input.Category),
		Department:  strings.TrimSpace(input.Department),
	}

	if err := s.tickets.Create(ctx, ticket, input.TagIDs); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, requesterID, nil)
	return ticket, nil
}

// GetTicket returns the detail view, serving from cache when possible.
// Customers may only see their own tickets.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*TicketDetail, error) {
	if cached, ok := s.cachedDetail(ctx, ticketID); ok {
		if err := s.authorizeRead(caller, &cached.Ticket); err != nil {
			return nil, err
		}
		return cached, nil
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	if err := s.authorizeRead(caller, ticket); err != nil {
		return nil, err
	}

	replies, err := s.replies.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	detail := &TicketDetail{Ticket: *ticket, Replies: replies}
	s.storeDetail(ctx, detail)
	return detail, nil
}

// ListTickets returns tickets visible to the caller. Customers are
// scoped to their own tickets regardless of the filter.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		AssigneeID: filter.AssigneeID,
		Department: filter.Department,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if caller.Role == domain.RoleCustomer {
		requesterID := caller.ID
		repoFilter.RequesterID = &requesterID
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// UpdateStatus sets the ticket status; the value must be one of the five
// enumerated states.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, ticketID string, status domain.TicketStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	ticket, err := s.loadForStaff(ctx, caller, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, status); err != nil {
		return err
	}
	s.invalidate(ctx, ticketID)
	s.publish(ctx, events.EventTicketUpdated, ticketID, caller.ID, events.TicketUpdatedPayload{
		Field:     "status",
		OldStatus: ticket.Status,
		NewStatus: status,
	})
	return nil
}

// UpdatePriority sets the ticket priority; the value must be one of the
// four enumerated levels.
func (s *TicketService) UpdatePriority(ctx context.Context, caller *domain.User, ticketID string, priority domain.TicketPriority) error {
	if !priority.IsValid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	ticket, err := s.loadForStaff(ctx, caller, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.UpdatePriority(ctx, ticketID, priority); err != nil {
		return err
	}
	s.invalidate(ctx, ticketID)
	s.publish(ctx, events.EventTicketUpdated, ticketID, caller.ID, events.TicketUpdatedPayload{
		Field:       "priority",
		OldPriority: ticket.Priority,
		NewPriority: priority,
	})
	return nil
}

// UpdateAssignee assigns the ticket, or clears the assignment when
// assigneeID is nil. A non-nil assignee must be an existing agent or
// admin.
func (s *TicketService) UpdateAssignee(ctx context.Context, caller *domain.User, ticketID string, assigneeID *string) error {
	if _, err := s.loadForStaff(ctx, caller, ticketID); err != nil {
		return err
	}
	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewValidationError("assignee does not exist", map[string]any{"assignee_id": *assigneeID})
			}
			return err
		}
		if !assignee.Role.CanBeAssignee() {
			return apperrors.NewValidationError("assignee must be an agent or admin", map[string]any{"role": assignee.Role})
		}
	}
	if err := s.tickets.UpdateAssignee(ctx, ticketID, assigneeID); err != nil {
		return err
	}
	s.invalidate(ctx, ticketID)
	s.publish(ctx, events.EventTicketUpdated, ticketID, caller.ID, events.TicketUpdatedPayload{
		Field:      "assignee",
		AssigneeID: assigneeID,
	})
	return nil
}

// AddReply appends an immutable reply to the ticket thread and bumps the
// ticket's updated_at. Attachments keep their submission order.
func (s *TicketService) AddReply(ctx context.Context, caller *domain.User, ticketID, content string, attachments []ReplyAttachmentInput) (*domain.TicketReply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	if err := s.authorizeRead(caller, ticket); err != nil {
		return nil, err
	}

	reply := &domain.TicketReply{
		TicketID: ticket.ID,
		AuthorID: caller.ID,
		Content:  strings.TrimSpace(content),
	}
	for _, att := range attachments {
		reply.Attachments = append(reply.Attachments, domain.ReplyAttachment{
			FileName:  att.Name,
			URL:       att.URL,
			SizeBytes: att.SizeBytes,
		})
	}

	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, err
	}
	if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ticket.ID)
	s.publish(ctx, events.EventTicketReplied, ticket.ID, caller.ID, events.TicketRepliedPayload{
		ReplyID:         reply.ID,
		AttachmentCount: len(reply.Attachments),
	})
	return reply, nil
}

func (s *TicketService) authorizeRead(caller *domain.User, ticket *domain.Ticket) error {
	if caller.Role == domain.RoleCustomer && ticket.RequesterID != caller.ID {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}

func (s *TicketService) loadForStaff(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	if !caller.Role.CanBeAssignee() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) cachedDetail(ctx context.Context, ticketID string) (*TicketDetail, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, ok, err := s.cache.Get(ctx, persistence.TicketDetailKey(ticketID))
	if err != nil || !ok {
		return nil, false
	}
	var detail TicketDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, false
	}
	return &detail, true
}

func (s *TicketService) storeDetail(ctx context.Context, detail *TicketDetail) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, persistence.TicketDetailKey(detail.Ticket.ID), payload, ticketDetailTTL)
}

func (s *TicketService) invalidate(ctx context.Context, ticketID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, persistence.TicketDetailKey(ticketID))
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, subjectID, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
