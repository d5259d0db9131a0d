package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// UpdateStatusRequest payload for PUT /complaints/:id.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateNotesRequest payload for PATCH /complaints/:id.
type UpdateNotesRequest struct {
	AdminNotes string `json:"adminNotes"`
}

// ComplaintResponse is the wire form of a complaint. AdminNotes is only set for admins.
type ComplaintResponse struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Status      domain.ComplaintStatus   `json:"status"`
	AuthorID    string                   `json:"authorId"`
	AdminNotes  *string                  `json:"adminNotes,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// NewComplaintResponse renders c for a reader with the given role.
func NewComplaintResponse(c *domain.Complaint, role domain.Role) ComplaintResponse {
	return ComplaintResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Priority:    c.Priority,
		Status:      c.Status,
		AuthorID:    c.AuthorID,
		AdminNotes:  c.NotesFor(role),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Pagination describes a page of results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ComplaintListResponse is returned by GET /complaints.
type ComplaintListResponse struct {
	Complaints []ComplaintResponse `json:"complaints"`
	Pagination Pagination          `json:"pagination"`
}

// NewComplaintListResponse renders a page for a reader with the given role.
func NewComplaintListResponse(page *service.ComplaintPage, role domain.Role) ComplaintListResponse {
	items := make([]ComplaintResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewComplaintResponse(&page.Items[i], role))
	}
	return ComplaintListResponse{
		Complaints: items,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.TotalPages,
		},
	}
}

// StatsResponse is returned by GET /complaints/stats.
type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func NewStatsResponse(stats *service.ComplaintStats) StatsResponse {
	byStatus := make(map[string]int, len(domain.ComplaintStatuses))
	for _, status := range domain.ComplaintStatuses {
		byStatus[string(status)] = stats.ByStatus[status]
	}
	return StatsResponse{Total: stats.Total, ByStatus: byStatus}
}

// HistoryEntryResponse is one audit entry.
type HistoryEntryResponse struct {
	ID          string                     `json:"id"`
	ChangeType  domain.ComplaintChangeType `json:"changeType"`
	ChangedByID string                     `json:"changedById"`
	OldValue    map[string]any             `json:"oldValue,omitempty"`
	NewValue    map[string]any             `json:"newValue,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
}

func NewHistoryResponse(entries []domain.ComplaintHistory) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			ID:          e.ID,
			ChangeType:  e.ChangeType,
			ChangedByID: e.ChangedByID,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
