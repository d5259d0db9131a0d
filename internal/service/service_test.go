package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	"github.com/spec-kit/complaint-service/internal/validation"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

type fixture struct {
	store      *memstore.Store
	auth       *AuthService
	complaints *ComplaintService
	published  []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{
		Auth:      config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 168, BcryptCost: bcrypt.MinCost},
		RateLimit: config.RateLimitConfig{LoginAttempts: 3, LoginWindowSeconds: 60},
	}
	f := &fixture{store: memstore.New()}
	authSvc, err := NewAuthService(cfg, AuthDependencies{
		UserRepo: f.store.Users(),
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	f.auth = authSvc

	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{
		events.EventComplaintCreated,
		events.EventComplaintStatusChanged,
		events.EventComplaintNotesUpdated,
		events.EventComplaintDeleted,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}
	f.complaints = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: f.store.Complaints(),
		HistoryRepo:   f.store.History(),
		Dispatcher:    dispatcher,
	})
	return f
}

func (f *fixture) register(t *testing.T, email string) *domain.Identity {
	t.Helper()
	session, err := f.auth.Register(context.Background(), RegisterRequest{Name: "Tester", Email: email, Password: "secret1", ConfirmPassword: &secret})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	identity := session.User.Identity()
	return &identity
}

func (f *fixture) admin(t *testing.T) *domain.Identity {
	t.Helper()
	err := f.auth.EnsureAdmin(context.Background(), config.AdminConfig{Name: "Admin", Email: "admin@x.com", Password: "adminpass"})
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	session, err := f.auth.Login(context.Background(), "admin@x.com", "adminpass", "127.0.0.1")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	identity, err := f.auth.Tokens().Verify(session.Token.Value)
	if err != nil {
		t.Fatalf("verify admin token: %v", err)
	}
	return &identity
}

func expectStatus(t *testing.T, err error, status int) *apperrors.DomainError {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError with status %d, got %v", status, err)
	}
	if de.HTTPStatus != status {
		t.Fatalf("expected status %d, got %d (%s)", status, de.HTTPStatus, de.Message)
	}
	return de
}

var secret = "secret1"

var heater = ComplaintRequest{
	Title:       "Broken heater",
	Description: "The heater in room 4 stopped working",
	Category:    string(domain.CategoryFacility),
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.auth.Register(ctx, RegisterRequest{Name: "Ann", Email: " A@X.com ", Password: "secret1", ConfirmPassword: &secret})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.User.Email != "a@x.com" || session.User.Role != domain.RoleUser || session.Token.Value == "" {
		t.Fatalf("unexpected session %+v", session.User)
	}

	_, err = f.auth.Register(ctx, RegisterRequest{Name: "Ann", Email: "a@x.com", Password: "secret1", ConfirmPassword: &secret})
	expectStatus(t, err, http.StatusConflict)

	mismatch := "other"
	_, err = f.auth.Register(ctx, RegisterRequest{Name: "Bob", Email: "b@x.com", Password: "secret1", ConfirmPassword: &mismatch})
	de := expectStatus(t, err, http.StatusUnprocessableEntity)
	if de.Details["confirmPassword"] == nil {
		t.Fatalf("expected confirmPassword detail, got %v", de.Details)
	}

	long := strings.Repeat("p", 80)
	_, err = f.auth.Register(ctx, RegisterRequest{Name: "Bob", Email: "b@x.com", Password: long, ConfirmPassword: &long})
	de = expectStatus(t, err, http.StatusUnprocessableEntity)
	if de.Details["password"] == nil {
		t.Fatalf("expected password detail, got %v", de.Details)
	}

	login, err := f.auth.Login(ctx, "a@x.com", "secret1", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	identity, err := f.auth.Tokens().Verify(login.Token.Value)
	if err != nil || identity.SubjectID != session.User.ID || identity.Role != domain.RoleUser {
		t.Fatalf("unexpected identity %+v %v", identity, err)
	}

	_, err = f.auth.Login(ctx, "a@x.com", "wrong-password", "10.0.0.1")
	expectStatus(t, err, http.StatusUnauthorized)
	_, err = f.auth.Login(ctx, "nobody@x.com", "secret1", "10.0.0.1")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com")

	for i := 0; i < 3; i++ {
		_, err := f.auth.Login(ctx, "a@x.com", "bad-guess", "10.0.0.9")
		expectStatus(t, err, http.StatusUnauthorized)
	}
	_, err := f.auth.Login(ctx, "a@x.com", "secret1", "10.0.0.9")
	de := expectStatus(t, err, http.StatusTooManyRequests)
	if de.Code != apperrors.CodeRateLimited {
		t.Fatalf("unexpected code %s", de.Code)
	}

	if _, err := f.auth.Login(ctx, "a@x.com", "secret1", "10.0.0.10"); err != nil {
		t.Fatalf("other client address must not be limited: %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := config.AdminConfig{Name: "Admin", Email: "admin@x.com", Password: "adminpass"}
	for i := 0; i < 2; i++ {
		if err := f.auth.EnsureAdmin(ctx, admin); err != nil {
			t.Fatalf("ensure admin: %v", err)
		}
	}
	user, err := f.store.Users().GetByEmail(ctx, "admin@x.com")
	if err != nil || user.Role != domain.RoleAdmin {
		t.Fatalf("expected seeded admin, got %+v %v", user, err)
	}
	if err := f.auth.EnsureAdmin(ctx, config.AdminConfig{}); err != nil {
		t.Fatalf("empty admin config must be a no-op: %v", err)
	}
}

func TestComplaintLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "a@x.com")
	bob := f.register(t, "b@x.com")
	admin := f.admin(t)

	created, err := f.complaints.Create(ctx, alice, heater)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusPending || created.Priority != domain.PriorityMedium || created.AuthorID != alice.SubjectID {
		t.Fatalf("unexpected complaint %+v", created)
	}

	_, err = f.complaints.Get(ctx, bob, created.ID)
	expectStatus(t, err, http.StatusForbidden)
	if _, err := f.complaints.Get(ctx, admin, created.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}

	updated, err := f.complaints.UpdateStatus(ctx, admin, created.ID, "Resolved")
	if err != nil || updated.Status != domain.StatusResolved {
		t.Fatalf("status update: %+v %v", updated, err)
	}
	if _, err := f.complaints.UpdateNotes(ctx, admin, created.ID, "Technician replaced the valve"); err != nil {
		t.Fatalf("notes update: %v", err)
	}

	seen, err := f.complaints.Get(ctx, alice, created.ID)
	if err != nil || seen.Status != domain.StatusResolved {
		t.Fatalf("author read: %+v %v", seen, err)
	}
	if seen.NotesFor(alice.Role) != nil {
		t.Fatalf("admin notes must be hidden from the author")
	}

	adminHistory, err := f.complaints.History(ctx, admin, created.ID)
	if err != nil || len(adminHistory) != 2 {
		t.Fatalf("expected two history entries for admin, got %d %v", len(adminHistory), err)
	}
	authorHistory, err := f.complaints.History(ctx, alice, created.ID)
	if err != nil || len(authorHistory) != 1 || authorHistory[0].ChangeType != domain.ChangeTypeStatus {
		t.Fatalf("expected only the status change for the author, got %+v %v", authorHistory, err)
	}
	_, err = f.complaints.History(ctx, bob, created.ID)
	expectStatus(t, err, http.StatusForbidden)

	if err := f.complaints.Delete(ctx, admin, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.complaints.Get(ctx, admin, created.ID)
	expectStatus(t, err, http.StatusNotFound)

	want := []events.EventType{
		events.EventComplaintCreated,
		events.EventComplaintStatusChanged,
		events.EventComplaintNotesUpdated,
		events.EventComplaintDeleted,
	}
	if len(f.published) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(f.published))
	}
	for i, et := range want {
		if f.published[i].Type != et || f.published[i].AuthorID != alice.SubjectID {
			t.Fatalf("event %d: unexpected %+v", i, f.published[i])
		}
	}
}

func TestRoleGatedOperationsDenyBeforeExistence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "a@x.com")
	admin := f.admin(t)
	created, _ := f.complaints.Create(ctx, alice, heater)

	_, err := f.complaints.UpdateStatus(ctx, alice, "does-not-exist", "Resolved")
	expectStatus(t, err, http.StatusForbidden)
	_, err = f.complaints.UpdateNotes(ctx, alice, created.ID, "note")
	expectStatus(t, err, http.StatusForbidden)
	err = f.complaints.Delete(ctx, alice, created.ID)
	expectStatus(t, err, http.StatusForbidden)

	_, err = f.complaints.UpdateStatus(ctx, admin, "does-not-exist", "Resolved")
	expectStatus(t, err, http.StatusNotFound)
	_, err = f.complaints.UpdateStatus(ctx, admin, created.ID, "Closed")
	expectStatus(t, err, http.StatusUnprocessableEntity)
	err = f.complaints.Delete(ctx, admin, "does-not-exist")
	expectStatus(t, err, http.StatusNotFound)

	_, err = f.complaints.Get(ctx, alice, "does-not-exist")
	expectStatus(t, err, http.StatusNotFound)
	_, err = f.complaints.Create(ctx, nil, heater)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestListAndStatsAreScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "a@x.com")
	bob := f.register(t, "b@x.com")
	admin := f.admin(t)

	for i := 0; i < 3; i++ {
		if _, err := f.complaints.Create(ctx, alice, heater); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	bobs, _ := f.complaints.Create(ctx, bob, ComplaintRequest{
		Title:       "Double charge",
		Description: "I was billed twice for the same order",
		Category:    string(domain.CategoryBilling),
		Priority:    string(domain.PriorityHigh),
	})
	if _, err := f.complaints.UpdateStatus(ctx, admin, bobs.ID, "In Progress"); err != nil {
		t.Fatalf("status: %v", err)
	}

	page, err := f.complaints.List(ctx, alice, validation.ListParams{Limit: "2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.TotalPages != 2 || page.Page != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	for _, c := range page.Items {
		if c.AuthorID != alice.SubjectID {
			t.Fatalf("user listing leaked complaint %s", c.ID)
		}
	}

	page, _ = f.complaints.List(ctx, admin, validation.ListParams{Category: "Billing"})
	if page.Total != 1 || page.Items[0].ID != bobs.ID {
		t.Fatalf("unexpected admin billing listing %+v", page)
	}
	page, _ = f.complaints.List(ctx, admin, validation.ListParams{Status: "all", Limit: "500"})
	if page.Total != 4 || page.Limit != 100 {
		t.Fatalf("unexpected admin listing %+v", page)
	}

	page, err = f.complaints.List(ctx, admin, validation.ListParams{Page: "9223372036854775807", Limit: "10"})
	if err != nil || page.Total != 4 || len(page.Items) != 0 {
		t.Fatalf("far page must be empty, got %+v %v", page, err)
	}

	_, err = f.complaints.List(ctx, admin, validation.ListParams{Status: "Closed"})
	expectStatus(t, err, http.StatusUnprocessableEntity)

	stats, err := f.complaints.Stats(ctx, alice)
	if err != nil || stats.Total != 3 || stats.ByStatus[domain.StatusPending] != 3 {
		t.Fatalf("unexpected user stats %+v %v", stats, err)
	}
	stats, _ = f.complaints.Stats(ctx, admin)
	if stats.Total != 4 || stats.ByStatus[domain.StatusInProgress] != 1 {
		t.Fatalf("unexpected admin stats %+v", stats)
	}
}
