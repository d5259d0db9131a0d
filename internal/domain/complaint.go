package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusRejected   ComplaintStatus = "Rejected"
)

// ComplaintStatuses lists every status in display order.
var ComplaintStatuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Valid reports whether the status belongs to the enumerated set.
func (s ComplaintStatus) Valid() bool {
	for _, candidate := range ComplaintStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "Low"
	PriorityMedium ComplaintPriority = "Medium"
	PriorityHigh   ComplaintPriority = "High"
)

var ComplaintPriorities = []ComplaintPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p ComplaintPriority) Valid() bool {
	for _, candidate := range ComplaintPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// ComplaintCategory enumerates complaint subjects.
type ComplaintCategory string

const (
	CategoryServiceQuality ComplaintCategory = "Service Quality"
	CategoryBilling        ComplaintCategory = "Billing"
	CategoryProduct        ComplaintCategory = "Product"
	CategoryDelivery       ComplaintCategory = "Delivery"
	CategoryStaff          ComplaintCategory = "Staff"
	CategoryFacility       ComplaintCategory = "Facility"
	CategorySafety         ComplaintCategory = "Safety"
	CategoryOther          ComplaintCategory = "Other"
)

var ComplaintCategories = []ComplaintCategory{
	CategoryServiceQuality,
	CategoryBilling,
	CategoryProduct,
	CategoryDelivery,
	CategoryStaff,
	CategoryFacility,
	CategorySafety,
	CategoryOther,
}

func (c ComplaintCategory) Valid() bool {
	for _, candidate := range ComplaintCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// Complaint is the aggregate for a submitted grievance.
// AdminNotes must only be read through NotesFor.
type Complaint struct {
	ID          string
	Title       string
	Description string
	Category    ComplaintCategory
	Priority    ComplaintPriority
	Status      ComplaintStatus
	AuthorID    string
	AdminNotes  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NotesFor returns the admin notes when the role may see them.
func (c *Complaint) NotesFor(role Role) *string {
	switch role {
	case RoleAdmin:
		return c.AdminNotes
	case RoleUser:
		return nil
	default:
		return nil
	}
}

// ComplaintUpdate is a partial update applied atomically by repositories.
type ComplaintUpdate struct {
	Status     *ComplaintStatus
	AdminNotes *string
}

// Empty reports whether the update carries no fields.
func (u ComplaintUpdate) Empty() bool {
	return u.Status == nil && u.AdminNotes == nil
}
