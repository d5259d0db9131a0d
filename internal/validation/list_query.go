package validation

import (
	"strconv"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
)

// filterAll is the sentinel clients send to disable a filter.
const filterAll = "all"

// ListQuery is a validated collection query.
type ListQuery struct {
	Filter policy.Filter
	Page   policy.Page
}

// ListParams holds raw query string values.
type ListParams struct {
	Page     string
	Limit    string
	Status   string
	Priority string
	Category string
	Search   string
}

// NewListQuery parses pagination (clamped, never rejected) and enum filters (rejected when
// unknown). Empty values and "all" disable a filter.
func NewListQuery(params ListParams) (ListQuery, error) {
	errs := FieldErrors{}
	q := ListQuery{
		Page: policy.NewPage(
			parseIntOr(params.Page, policy.DefaultPage),
			parseIntOr(params.Limit, policy.DefaultLimit),
		),
		Filter: policy.Filter{Search: strings.TrimSpace(params.Search)},
	}

	if raw, ok := filterValue(params.Status); ok {
		status := domain.ComplaintStatus(raw)
		if status.Valid() {
			q.Filter.Status = &status
		} else {
			errs.add("status", "Invalid status filter")
		}
	}
	if raw, ok := filterValue(params.Priority); ok {
		priority := domain.ComplaintPriority(raw)
		if priority.Valid() {
			q.Filter.Priority = &priority
		} else {
			errs.add("priority", "Invalid priority filter")
		}
	}
	if raw, ok := filterValue(params.Category); ok {
		category := domain.ComplaintCategory(raw)
		if category.Valid() {
			q.Filter.Category = &category
		} else {
			errs.add("category", "Invalid category filter")
		}
	}

	if err := errs.orNil(); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

func filterValue(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, filterAll) {
		return "", false
	}
	return raw, true
}

func parseIntOr(val string, def int) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
