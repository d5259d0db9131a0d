package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	return fe
}

func TestNewRegisterInput(t *testing.T) {
	confirm := "secret1"
	in, err := NewRegisterInput("  Ann ", " A@X.com ", "secret1", &confirm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "Ann" || in.Email != "a@x.com" {
		t.Fatalf("unexpected normalized input %+v", in)
	}

	fe := fieldErrors(t, mustFail(NewRegisterInput("Ann", "a@x.com", "secret1", nil)))
	if _, ok := fe["confirmPassword"]; !ok || len(fe) != 1 {
		t.Fatalf("expected missing confirmPassword error, got %v", fe)
	}

	long := strings.Repeat("p", 73)
	fe = fieldErrors(t, mustFail(NewRegisterInput("Ann", "a@x.com", long, &long)))
	if fe["password"] != "Password must be at most 72 bytes" {
		t.Fatalf("expected byte limit error, got %v", fe)
	}
	limit := strings.Repeat("é", 36)
	if _, err := NewRegisterInput("Ann", "a@x.com", limit, &limit); err != nil {
		t.Fatalf("72 byte password must pass: %v", err)
	}

	mismatch := "secret2"
	_, err = NewRegisterInput("A", "not-an-email", "123", &mismatch)
	fe = fieldErrors(t, err)
	for _, field := range []string{"name", "email", "password", "confirmPassword"} {
		if _, ok := fe[field]; !ok {
			t.Fatalf("expected %s error in %v", field, fe)
		}
	}
	if fe.First() != fe["confirmPassword"] {
		t.Fatalf("expected first error to be alphabetical, got %q", fe.First())
	}
}

func mustFail(_ RegisterInput, err error) error {
	return err
}

func TestEmailValidation(t *testing.T) {
	valid := []string{"a@x.com", "first.last@sub.example.org", "B@X.COM"}
	invalid := []string{"", "plain", "a@b", "Ann <a@x.com>", "a@@x.com", "@x.com"}
	for _, email := range valid {
		if _, err := NewLoginInput(email, "pw"); err != nil {
			t.Fatalf("expected %q valid: %v", email, err)
		}
	}
	for _, email := range invalid {
		if _, err := NewLoginInput(email, "pw"); err == nil {
			t.Fatalf("expected %q invalid", email)
		}
	}
}

func TestNewLoginInputRequiresPassword(t *testing.T) {
	_, err := NewLoginInput("a@x.com", "")
	if fe := fieldErrors(t, err); fe["password"] == "" {
		t.Fatalf("expected password error, got %v", fe)
	}
}

func TestNewComplaintInput(t *testing.T) {
	in, err := NewComplaintInput(" Broken heater ", "The heater in room 4 stopped working", "Facility", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Title != "Broken heater" || in.Priority != domain.PriorityMedium || in.Category != domain.CategoryFacility {
		t.Fatalf("unexpected input %+v", in)
	}

	cases := []struct {
		name                              string
		title, description, cat, priority string
		field                             string
	}{
		{"short title", "abcd", "long enough text", "Billing", "Low", "title"},
		{"long title", strings.Repeat("t", 101), "long enough text", "Billing", "Low", "title"},
		{"short description", "Valid title", "too short", "Billing", "Low", "description"},
		{"long description", "Valid title", strings.Repeat("d", 2001), "Billing", "Low", "description"},
		{"bad category", "Valid title", "long enough text", "Weather", "Low", "category"},
		{"bad priority", "Valid title", "long enough text", "Billing", "Urgent", "priority"},
		{"lowercase category", "Valid title", "long enough text", "billing", "Low", "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewComplaintInput(tc.title, tc.description, tc.cat, tc.priority)
			if fe := fieldErrors(t, err); fe[tc.field] == "" {
				t.Fatalf("expected %s error, got %v", tc.field, fe)
			}
		})
	}

	if _, err := NewComplaintInput(strings.Repeat("t", 100), strings.Repeat("d", 2000), "Other", "High"); err != nil {
		t.Fatalf("boundary lengths should pass: %v", err)
	}
}

func TestNewStatusAndNotesInput(t *testing.T) {
	for _, s := range domain.ComplaintStatuses {
		if _, err := NewStatusInput(string(s)); err != nil {
			t.Fatalf("status %q should be valid: %v", s, err)
		}
	}
	if _, err := NewStatusInput("Closed"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	if _, err := NewNotesInput(""); err == nil {
		t.Fatalf("expected empty notes to fail")
	}
	if _, err := NewNotesInput(strings.Repeat("n", 1001)); err == nil {
		t.Fatalf("expected long notes to fail")
	}
	if in, err := NewNotesInput("Called the customer"); err != nil || in.AdminNotes != "Called the customer" {
		t.Fatalf("unexpected notes result %+v %v", in, err)
	}
}

func TestNewListQuery(t *testing.T) {
	q, err := NewListQuery(ListParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page.Number != 1 || q.Page.Limit != 10 {
		t.Fatalf("unexpected default page %+v", q.Page)
	}

	q, err = NewListQuery(ListParams{Page: "0", Limit: "500", Status: "all", Priority: "High", Category: "", Search: " heat "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page.Number != 1 || q.Page.Limit != 100 {
		t.Fatalf("expected clamped page, got %+v", q.Page)
	}
	if q.Filter.Status != nil || q.Filter.Category != nil {
		t.Fatalf("expected all/empty to disable filters, got %+v", q.Filter)
	}
	if q.Filter.Priority == nil || *q.Filter.Priority != domain.PriorityHigh || q.Filter.Search != "heat" {
		t.Fatalf("unexpected filter %+v", q.Filter)
	}

	q, err = NewListQuery(ListParams{Limit: "-3", Page: "abc"})
	if err != nil || q.Page.Limit != 1 || q.Page.Number != 1 {
		t.Fatalf("expected limit clamped to 1, got %+v %v", q.Page, err)
	}

	_, err = NewListQuery(ListParams{Status: "Closed", Category: "Weather"})
	fe := fieldErrors(t, err)
	if fe["status"] == "" || fe["category"] == "" {
		t.Fatalf("expected status and category errors, got %v", fe)
	}
}
