// Package memstore implements the repository contracts in process memory. It backs the
// service when no database is configured and serves as the store in HTTP tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/validation"
)

// Store holds users, complaints and history behind a single lock.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	emails     map[string]string
	complaints map[string]domain.Complaint
	history    map[string][]domain.ComplaintHistory
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		emails:     make(map[string]string),
		complaints: make(map[string]domain.Complaint),
		history:    make(map[string][]domain.ComplaintHistory),
		now:        time.Now,
	}
}

// Users returns the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userStore{s} }

// Complaints returns the store as a ComplaintRepository.
func (s *Store) Complaints() repository.ComplaintRepository { return complaintStore{s} }

// History returns the store as a ComplaintHistoryRepository.
func (s *Store) History() repository.ComplaintHistoryRepository { return historyStore{s} }

type userStore struct{ s *Store }

func (u userStore) Create(_ context.Context, user *domain.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emails[user.Email]; exists {
		return repository.ErrDuplicate
	}
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (u userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (u userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

type complaintStore struct{ s *Store }

func (c complaintStore) Create(_ context.Context, complaint *domain.Complaint) error {
	if errs := validation.CheckComplaint(complaint.Title, complaint.Description, complaint.Category, complaint.Priority); len(errs) > 0 {
		return errs
	}
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if complaint.Status == "" {
		complaint.Status = domain.StatusPending
	}
	now := s.now()
	complaint.ID = uuid.NewString()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	s.complaints[complaint.ID] = cloneComplaint(*complaint)
	return nil
}

func (c complaintStore) FindByID(_ context.Context, id string) (*domain.Complaint, error) {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	complaint, ok := s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneComplaint(complaint)
	return &out, nil
}

func (c complaintStore) Find(_ context.Context, filter policy.Filter, page policy.Page) ([]domain.Complaint, int, error) {
	s := c.s
	s.mu.RLock()
	matches := s.matching(filter)
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := page.Offset()
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return append([]domain.Complaint{}, matches[start:end]...), total, nil
}

func (c complaintStore) UpdateFields(_ context.Context, id string, update domain.ComplaintUpdate) (*domain.Complaint, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	complaint, ok := s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Empty() {
		out := cloneComplaint(complaint)
		return &out, nil
	}
	if update.Status != nil {
		complaint.Status = *update.Status
	}
	if update.AdminNotes != nil {
		notes := *update.AdminNotes
		complaint.AdminNotes = &notes
	}
	complaint.UpdatedAt = s.now()
	s.complaints[id] = complaint
	out := cloneComplaint(complaint)
	return &out, nil
}

func (c complaintStore) Delete(_ context.Context, id string) (bool, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[id]; !ok {
		return false, nil
	}
	delete(s.complaints, id)
	delete(s.history, id)
	return true, nil
}

func (c complaintStore) CountByStatus(_ context.Context, filter policy.Filter) (map[domain.ComplaintStatus]int, error) {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))
	for _, status := range domain.ComplaintStatuses {
		counts[status] = 0
	}
	for _, complaint := range s.matching(filter) {
		counts[complaint.Status]++
	}
	return counts, nil
}

// matching must be called with the lock held.
func (s *Store) matching(filter policy.Filter) []domain.Complaint {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []domain.Complaint{}
	for _, complaint := range s.complaints {
		if filter.AuthorID != nil && complaint.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Status != nil && complaint.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && complaint.Priority != *filter.Priority {
			continue
		}
		if filter.Category != nil && complaint.Category != *filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(complaint.Title), search) &&
			!strings.Contains(strings.ToLower(complaint.Description), search) {
			continue
		}
		out = append(out, cloneComplaint(complaint))
	}
	return out
}

type historyStore struct{ s *Store }

func (h historyStore) Create(_ context.Context, entry *domain.ComplaintHistory) error {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now()
	s.history[entry.ComplaintID] = append(s.history[entry.ComplaintID], *entry)
	return nil
}

func (h historyStore) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	s := h.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ComplaintHistory{}, s.history[complaintID]...), nil
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	if c.AdminNotes != nil {
		notes := *c.AdminNotes
		c.AdminNotes = &notes
	}
	return c
}
