package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/validation"
)

// ComplaintService coordinates complaint workflows. Every operation is authorized through
// policy.Decide before it touches the store.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	history    repository.ComplaintHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// ComplaintRequest carries raw submission fields.
type ComplaintRequest struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// ComplaintPage is one page of a listing.
type ComplaintPage struct {
	Items      []domain.Complaint
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// ComplaintStats counts visible complaints per status.
type ComplaintStats struct {
	Total    int
	ByStatus map[domain.ComplaintStatus]int
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create stores a complaint authored by the caller.
func (s *ComplaintService) Create(ctx context.Context, identity *domain.Identity, req ComplaintRequest) (*domain.Complaint, error) {
	if d := policy.Decide(identity, policy.CreateComplaint, nil, nil); !d.Allowed {
		return nil, denial(d.Reason)
	}
	in, err := validation.NewComplaintInput(req.Title, req.Description, req.Category, req.Priority)
	if err != nil {
		return nil, translate(err)
	}

	complaint := &domain.Complaint{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      domain.StatusPending,
		AuthorID:    identity.SubjectID,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, translate(err)
	}

	s.publishEvent(ctx, identity, complaint, events.EventComplaintCreated, events.ComplaintCreatedPayload{
		Title:    complaint.Title,
		Category: complaint.Category,
		Priority: complaint.Priority,
	})
	return complaint, nil
}

// Get returns a single complaint; existence is checked before ownership.
func (s *ComplaintService) Get(ctx context.Context, identity *domain.Identity, id string) (*domain.Complaint, error) {
	if identity == nil {
		return nil, denial(policy.ReasonUnauthenticated)
	}
	target, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := policy.Decide(identity, policy.ReadComplaint, target, nil); !d.Allowed {
		return nil, denial(d.Reason)
	}
	return target, nil
}

// List returns the caller's view of complaints. Users only ever see their own.
func (s *ComplaintService) List(ctx context.Context, identity *domain.Identity, params validation.ListParams) (*ComplaintPage, error) {
	if identity == nil {
		return nil, denial(policy.ReasonUnauthenticated)
	}
	query, err := validation.NewListQuery(params)
	if err != nil {
		return nil, translate(err)
	}
	d := policy.Decide(identity, policy.ListComplaints, nil, &query.Filter)
	if !d.Allowed {
		return nil, denial(d.Reason)
	}

	items, total, err := s.complaints.Find(ctx, *d.Filter, query.Page)
	if err != nil {
		return nil, translate(err)
	}
	return &ComplaintPage{
		Items:      items,
		Total:      total,
		Page:       query.Page.Number,
		Limit:      query.Page.Limit,
		TotalPages: query.Page.TotalPages(total),
	}, nil
}

// UpdateStatus moves a complaint to a new status. Admin only.
func (s *ComplaintService) UpdateStatus(ctx context.Context, identity *domain.Identity, id, status string) (*domain.Complaint, error) {
	if d := policy.Decide(identity, policy.UpdateStatus, nil, nil); !d.Allowed {
		return nil, denial(d.Reason)
	}
	in, err := validation.NewStatusInput(status)
	if err != nil {
		return nil, translate(err)
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.complaints.UpdateFields(ctx, id, domain.ComplaintUpdate{Status: &in.Status})
	if err != nil {
		return nil, translate(err)
	}

	if current.Status != updated.Status {
		s.recordHistory(ctx, identity, updated.ID, domain.ChangeTypeStatus,
			map[string]any{"status": string(current.Status)},
			map[string]any{"status": string(updated.Status)})
		s.publishEvent(ctx, identity, updated, events.EventComplaintStatusChanged, events.ComplaintStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
		})
	}
	return updated, nil
}

// UpdateNotes replaces the admin notes of a complaint. Admin only.
func (s *ComplaintService) UpdateNotes(ctx context.Context, identity *domain.Identity, id, notes string) (*domain.Complaint, error) {
	if d := policy.Decide(identity, policy.UpdateNotes, nil, nil); !d.Allowed {
		return nil, denial(d.Reason)
	}
	in, err := validation.NewNotesInput(notes)
	if err != nil {
		return nil, translate(err)
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.complaints.UpdateFields(ctx, id, domain.ComplaintUpdate{AdminNotes: &in.AdminNotes})
	if err != nil {
		return nil, translate(err)
	}

	var previous any
	if current.AdminNotes != nil {
		previous = *current.AdminNotes
	}
	s.recordHistory(ctx, identity, updated.ID, domain.ChangeTypeNotes,
		map[string]any{"adminNotes": previous},
		map[string]any{"adminNotes": in.AdminNotes})
	s.publishEvent(ctx, identity, updated, events.EventComplaintNotesUpdated, events.ComplaintNotesUpdatedPayload{
		Length: len([]rune(in.AdminNotes)),
	})
	return updated, nil
}

// Delete removes a complaint. Admin only.
func (s *ComplaintService) Delete(ctx context.Context, identity *domain.Identity, id string) error {
	if d := policy.Decide(identity, policy.DeleteComplaint, nil, nil); !d.Allowed {
		return denial(d.Reason)
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	removed, err := s.complaints.Delete(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !removed {
		return denial(policy.ReasonNotFound)
	}
	s.publishEvent(ctx, identity, current, events.EventComplaintDeleted, nil)
	return nil
}

// Stats counts complaints per status within the caller's scope.
func (s *ComplaintService) Stats(ctx context.Context, identity *domain.Identity) (*ComplaintStats, error) {
	d := policy.Decide(identity, policy.ViewStats, nil, nil)
	if !d.Allowed {
		return nil, denial(d.Reason)
	}
	counts, err := s.complaints.CountByStatus(ctx, *d.Filter)
	if err != nil {
		return nil, translate(err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &ComplaintStats{Total: total, ByStatus: counts}, nil
}

// History lists the audit trail of a complaint, filtered to what the caller's role may see.
func (s *ComplaintService) History(ctx context.Context, identity *domain.Identity, id string) ([]domain.ComplaintHistory, error) {
	target, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByComplaint(ctx, target.ID)
	if err != nil {
		return nil, translate(err)
	}
	visible := make([]domain.ComplaintHistory, 0, len(entries))
	for _, entry := range entries {
		if entry.VisibleTo(identity.Role) {
			visible = append(visible, entry)
		}
	}
	return visible, nil
}

func (s *ComplaintService) find(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return complaint, nil
}

// recordHistory never fails the request; the primary write has already succeeded.
func (s *ComplaintService) recordHistory(ctx context.Context, identity *domain.Identity, complaintID string, change domain.ComplaintChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.ComplaintHistory{
		ComplaintID: complaintID,
		ChangedByID: identity.SubjectID,
		ChangeType:  change,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("complaint history not recorded",
			zap.String("complaint_id", complaintID),
			zap.String("change_type", string(change)),
			zap.Error(err))
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, identity *domain.Identity, complaint *domain.Complaint, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaint.ID,
		AuthorID:    complaint.AuthorID,
		Actor:       events.Actor{UserID: identity.SubjectID, Role: identity.Role},
		Timestamp:   s.now(),
		Payload:     payload,
	})
}
