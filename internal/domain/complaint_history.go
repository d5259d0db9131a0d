package domain

import "time"

// ComplaintChangeType captures what changed in a history entry.
type ComplaintChangeType string

const (
	ChangeTypeStatus ComplaintChangeType = "STATUS_CHANGE"
	ChangeTypeNotes  ComplaintChangeType = "NOTES_CHANGE"
)

// ComplaintHistory is an immutable audit trail entry.
type ComplaintHistory struct {
	ID          string
	ComplaintID string
	ChangedByID string
	ChangeType  ComplaintChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}

// VisibleTo reports whether the entry may be shown to the role.
// Notes changes reveal admin notes and are admin-only.
func (h ComplaintHistory) VisibleTo(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return h.ChangeType == ChangeTypeStatus
	default:
		return false
	}
}
