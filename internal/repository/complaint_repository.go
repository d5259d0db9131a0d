package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/validation"
)

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	// Create validates and stores the complaint, filling ID and timestamps.
	Create(ctx context.Context, complaint *domain.Complaint) error
	FindByID(ctx context.Context, id string) (*domain.Complaint, error)
	// Find returns one page of matches ordered by creation time, newest first, plus the total.
	Find(ctx context.Context, filter policy.Filter, page policy.Page) ([]domain.Complaint, int, error)
	UpdateFields(ctx context.Context, id string, update domain.ComplaintUpdate) (*domain.Complaint, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context, filter policy.Filter) (map[domain.ComplaintStatus]int, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, category, priority, status, author_id, admin_notes, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	if errs := validation.CheckComplaint(complaint.Title, complaint.Description, complaint.Category, complaint.Priority); len(errs) > 0 {
		return errs
	}
	if complaint.Status == "" {
		complaint.Status = domain.StatusPending
	}
	const query = `
        INSERT INTO complaints (title, description, category, priority, status, author_id, admin_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.AuthorID,
		complaint.AdminNotes,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
	return classify(err)
}

func (r *complaintRepository) FindByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	complaint, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}
	return complaint, nil
}

func (r *complaintRepository) Find(ctx context.Context, filter policy.Filter, page policy.Page) ([]domain.Complaint, int, error) {
	where, args := buildComplaintWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		complaintColumns, where, page.Limit, page.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	items := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, classify(err)
		}
		items = append(items, *complaint)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return items, total, nil
}

func (r *complaintRepository) UpdateFields(ctx context.Context, id string, update domain.ComplaintUpdate) (*domain.Complaint, error) {
	if update.Empty() {
		return r.FindByID(ctx, id)
	}
	sets, args := buildComplaintSet(update)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE complaints SET %s, updated_at=NOW() WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), complaintColumns)
	complaint, err := scanComplaint(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, classify(err)
	}
	return complaint, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *complaintRepository) CountByStatus(ctx context.Context, filter policy.Filter) (map[domain.ComplaintStatus]int, error) {
	where, args := buildComplaintWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM complaints WHERE `+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	counts := emptyStatusCounts()
	for rows.Next() {
		var (
			status domain.ComplaintStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, classify(err)
		}
		counts[status] = count
	}
	return counts, classify(rows.Err())
}

// buildComplaintWhere renders the filter as a parameterized WHERE clause.
func buildComplaintWhere(filter policy.Filter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

func buildComplaintSet(update domain.ComplaintUpdate) ([]string, []any) {
	sets := []string{}
	args := []any{}
	if update.Status != nil {
		args = append(args, string(*update.Status))
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if update.AdminNotes != nil {
		args = append(args, *update.AdminNotes)
		sets = append(sets, fmt.Sprintf("admin_notes=$%d", len(args)))
	}
	return sets, args
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := row.Scan(
		&complaint.ID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Priority,
		&complaint.Status,
		&complaint.AuthorID,
		&complaint.AdminNotes,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func emptyStatusCounts() map[domain.ComplaintStatus]int {
	counts := make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))
	for _, status := range domain.ComplaintStatuses {
		counts[status] = 0
	}
	return counts
}
