// Package policy decides who may read or mutate which complaint records.
//
// Decisions are pure: they depend only on the identity, the operation and, for
// ownership-gated operations, the target record. Role-gated operations never look at the
// target, so a non-admin is refused with Forbidden whether or not the record exists.
package policy

import (
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Operation enumerates the actions subject to authorization.
type Operation int

const (
	CreateComplaint Operation = iota
	ReadComplaint
	ListComplaints
	UpdateStatus
	UpdateNotes
	DeleteComplaint
	ViewStats
)

func (o Operation) String() string {
	switch o {
	case CreateComplaint:
		return "create_complaint"
	case ReadComplaint:
		return "read_complaint"
	case ListComplaints:
		return "list_complaints"
	case UpdateStatus:
		return "update_status"
	case UpdateNotes:
		return "update_notes"
	case DeleteComplaint:
		return "delete_complaint"
	case ViewStats:
		return "view_stats"
	default:
		return "unknown"
	}
}

// Reason explains a denial.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonForbidden
	ReasonNotFound
)

func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	case ReasonNotFound:
		return "not_found"
	default:
		return "none"
	}
}

// Filter narrows a complaint collection query.
type Filter struct {
	AuthorID *string
	Status   *domain.ComplaintStatus
	Priority *domain.ComplaintPriority
	Category *domain.ComplaintCategory
	Search   string
}

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Filter is set for collection operations and already carries ownership scoping.
	Filter *Filter
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason Reason) Decision { return Decision{Reason: reason} }

// Decide authorizes an operation. target is consulted only by ReadComplaint and requested
// only by ListComplaints and ViewStats.
func Decide(identity *domain.Identity, op Operation, target *domain.Complaint, requested *Filter) Decision {
	if identity == nil {
		return deny(ReasonUnauthenticated)
	}

	switch op {
	case CreateComplaint:
		return allow()
	case ReadComplaint:
		if target == nil {
			return deny(ReasonNotFound)
		}
		return decideOwnership(identity, target)
	case ListComplaints, ViewStats:
		scoped, ok := ScopeFilter(identity, requested)
		if !ok {
			return deny(ReasonForbidden)
		}
		return Decision{Allowed: true, Filter: &scoped}
	case UpdateStatus, UpdateNotes, DeleteComplaint:
		return decideAdminOnly(identity)
	default:
		return deny(ReasonForbidden)
	}
}

func decideOwnership(identity *domain.Identity, target *domain.Complaint) Decision {
	switch identity.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleUser:
		if target.AuthorID == identity.SubjectID {
			return allow()
		}
		return deny(ReasonForbidden)
	default:
		return deny(ReasonForbidden)
	}
}

func decideAdminOnly(identity *domain.Identity) Decision {
	switch identity.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleUser:
		return deny(ReasonForbidden)
	default:
		return deny(ReasonForbidden)
	}
}

// ScopeFilter applies ownership scoping to a requested filter. Users are pinned to their
// own complaints regardless of what they asked for; admins keep the requested filter.
func ScopeFilter(identity *domain.Identity, requested *Filter) (Filter, bool) {
	var scoped Filter
	if requested != nil {
		scoped = *requested
	}
	scoped.Search = strings.TrimSpace(scoped.Search)

	switch identity.Role {
	case domain.RoleAdmin:
		return scoped, true
	case domain.RoleUser:
		subject := identity.SubjectID
		scoped.AuthorID = &subject
		return scoped, true
	default:
		return Filter{}, false
	}
}
