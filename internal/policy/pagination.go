package policy

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps Offset within int range for any clamped limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Page is a clamped pagination window.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps page to [1, MaxPage] and limit to [1, MaxLimit].
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if number > MaxPage {
		number = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

// DefaultPageWindow returns the page used when the client sends no pagination.
func DefaultPageWindow() Page {
	return Page{Number: DefaultPage, Limit: DefaultLimit}
}

// Offset returns the number of records to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages returns ceil(total / limit).
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
