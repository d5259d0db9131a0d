package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
)

func TestBuildComplaintWhere(t *testing.T) {
	where, args := buildComplaintWhere(policy.Filter{})
	if where != "1=1" || len(args) != 0 {
		t.Fatalf("unexpected empty filter: %q %v", where, args)
	}

	author := "u-1"
	status := domain.StatusInProgress
	priority := domain.PriorityHigh
	category := domain.CategoryBilling
	where, args = buildComplaintWhere(policy.Filter{
		AuthorID: &author,
		Status:   &status,
		Priority: &priority,
		Category: &category,
		Search:   "  50%_Off ",
	})
	want := "1=1 AND author_id=$1 AND status=$2 AND priority=$3 AND category=$4 AND (LOWER(title) LIKE $5 OR LOWER(description) LIKE $5)"
	if where != want {
		t.Fatalf("unexpected where clause:\n got %q\nwant %q", where, want)
	}
	wantArgs := []any{"u-1", "In Progress", "High", "Billing", `%50\%\_off%`}
	if fmt.Sprint(args) != fmt.Sprint(wantArgs) {
		t.Fatalf("unexpected args %v", args)
	}

	where, args = buildComplaintWhere(policy.Filter{Search: "   "})
	if where != "1=1" || len(args) != 0 {
		t.Fatalf("whitespace search must not filter: %q %v", where, args)
	}
}

func TestBuildComplaintSet(t *testing.T) {
	status := domain.StatusResolved
	notes := "refunded"
	sets, args := buildComplaintSet(domain.ComplaintUpdate{Status: &status, AdminNotes: &notes})
	if fmt.Sprint(sets) != "[status=$1 admin_notes=$2]" || fmt.Sprint(args) != "[Resolved refunded]" {
		t.Fatalf("unexpected set clause %v %v", sets, args)
	}

	sets, args = buildComplaintSet(domain.ComplaintUpdate{AdminNotes: &notes})
	if fmt.Sprint(sets) != "[admin_notes=$1]" || len(args) != 1 {
		t.Fatalf("unexpected notes-only set clause %v %v", sets, args)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, ErrDuplicate},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, ErrNotFound},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, ErrStoreUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if classify(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	other := errors.New("boom")
	if classify(other) != other {
		t.Fatalf("unknown errors must pass through")
	}
}
