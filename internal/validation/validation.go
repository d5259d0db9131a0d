// Package validation builds typed request inputs. Every constructor either returns a
// fully valid value or a *FieldErrors describing each violated field.
package validation

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const (
	nameMinLen        = 2
	passwordMinLen    = 6
	passwordMaxBytes  = 72
	titleMinLen       = 5
	titleMaxLen       = 100
	descriptionMinLen = 10
	descriptionMaxLen = 2000
	notesMinLen       = 1
	notesMaxLen       = 1000
)

// FieldErrors maps field names to human readable messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[e.firstField()]
}

// First returns the message of the alphabetically first failing field.
func (e FieldErrors) First() string {
	return e.Error()
}

// Details converts the errors into a generic map for response envelopes.
func (e FieldErrors) Details() map[string]any {
	out := make(map[string]any, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (e FieldErrors) firstField() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

func (e FieldErrors) add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// NewRegisterInput validates registration fields. Passwords are bounded by bcrypt's
// 72 byte input limit.
func NewRegisterInput(name, email, password string, confirmPassword *string) (RegisterInput, error) {
	errs := FieldErrors{}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < nameMinLen {
		errs.add("name", "Name must be at least 2 characters")
	}
	normalized, ok := normalizeEmail(email)
	if !ok {
		errs.add("email", "Invalid email address")
	}
	switch {
	case utf8.RuneCountInString(password) < passwordMinLen:
		errs.add("password", "Password must be at least 6 characters")
	case len(password) > passwordMaxBytes:
		errs.add("password", "Password must be at most 72 bytes")
	}
	switch {
	case confirmPassword == nil:
		errs.add("confirmPassword", "Please confirm your password")
	case *confirmPassword != password:
		errs.add("confirmPassword", "Passwords don't match")
	}
	if err := errs.orNil(); err != nil {
		return RegisterInput{}, err
	}
	return RegisterInput{Name: name, Email: normalized, Password: password}, nil
}

// LoginInput is a validated login request.
type LoginInput struct {
	Email    string
	Password string
}

func NewLoginInput(email, password string) (LoginInput, error) {
	errs := FieldErrors{}
	normalized, ok := normalizeEmail(email)
	if !ok {
		errs.add("email", "Invalid email address")
	}
	if password == "" {
		errs.add("password", "Password is required")
	}
	if err := errs.orNil(); err != nil {
		return LoginInput{}, err
	}
	return LoginInput{Email: normalized, Password: password}, nil
}

// ComplaintInput is a validated complaint submission.
type ComplaintInput struct {
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Priority    domain.ComplaintPriority
}

// NewComplaintInput validates complaint fields; an empty priority defaults to Medium.
func NewComplaintInput(title, description, category, priority string) (ComplaintInput, error) {
	if strings.TrimSpace(priority) == "" {
		priority = string(domain.PriorityMedium)
	}
	in := ComplaintInput{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    domain.ComplaintCategory(category),
		Priority:    domain.ComplaintPriority(priority),
	}
	if errs := CheckComplaint(in.Title, in.Description, in.Category, in.Priority); len(errs) > 0 {
		return ComplaintInput{}, errs
	}
	return in, nil
}

// CheckComplaint reports field constraint violations for a complaint record.
func CheckComplaint(title, description string, category domain.ComplaintCategory, priority domain.ComplaintPriority) FieldErrors {
	errs := FieldErrors{}
	switch n := utf8.RuneCountInString(title); {
	case n < titleMinLen:
		errs.add("title", "Title must be at least 5 characters")
	case n > titleMaxLen:
		errs.add("title", "Title must be less than 100 characters")
	}
	switch n := utf8.RuneCountInString(description); {
	case n < descriptionMinLen:
		errs.add("description", "Description must be at least 10 characters")
	case n > descriptionMaxLen:
		errs.add("description", "Description must be less than 2000 characters")
	}
	if !category.Valid() {
		errs.add("category", "Invalid category")
	}
	if !priority.Valid() {
		errs.add("priority", "Invalid priority")
	}
	return errs
}

// StatusInput is a validated status change.
type StatusInput struct {
	Status domain.ComplaintStatus
}

func NewStatusInput(status string) (StatusInput, error) {
	s := domain.ComplaintStatus(status)
	if !s.Valid() {
		return StatusInput{}, FieldErrors{"status": "Invalid status"}
	}
	return StatusInput{Status: s}, nil
}

// NotesInput is a validated admin notes update.
type NotesInput struct {
	AdminNotes string
}

func NewNotesInput(notes string) (NotesInput, error) {
	switch n := utf8.RuneCountInString(notes); {
	case n < notesMinLen:
		return NotesInput{}, FieldErrors{"adminNotes": "Notes required"}
	case n > notesMaxLen:
		return NotesInput{}, FieldErrors{"adminNotes": "Notes too long"}
	}
	return NotesInput{AdminNotes: notes}, nil
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", false
	}
	return email, true
}
