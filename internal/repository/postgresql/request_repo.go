package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"refpay/internal/domain"
	"refpay/internal/port"
)

const pendingPerUserConstraint = "withdraw_requests_pending_per_user"

const requestColumns = `r.id, r.user_id, r.amount, r.contact, r.status, r.created_at,
       r.processed_at, r.processed_by_admin_id, r.admin_comment,
       COALESCE(u.username, ''), COALESCE(u.first_name, '')`

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) port.RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) CreatePending(ctx context.Context, w *domain.WithdrawRequest) error {
	const query = `INSERT INTO withdraw_requests (id, user_id, amount, contact, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := pick(ctx, r.db).ExecContext(ctx, query,
		w.ID, w.UserID, w.Amount, w.Contact, w.Status, w.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, pendingPerUserConstraint) {
			return domain.ErrDuplicatePending
		}
		return fmt.Errorf("insert withdraw request: %w", err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawRequest, error) {
	query := `SELECT ` + requestColumns + `
	FROM withdraw_requests r
	JOIN users u ON u.id = r.user_id
	WHERE r.id = $1`

	w, err := scanRequest(pick(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRequestNotFound
	}
	return w, err
}

func (r *requestRepository) GetPendingByUser(ctx context.Context, userID int64) (*domain.WithdrawRequest, error) {
	query := `SELECT ` + requestColumns + `
	FROM withdraw_requests r
	JOIN users u ON u.id = r.user_id
	WHERE r.user_id = $1 AND r.status = $2
	ORDER BY r.created_at DESC
	LIMIT 1`

	w, err := scanRequest(pick(ctx, r.db).QueryRowContext(ctx, query, userID, domain.StatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

func (r *requestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.WithdrawRequest, error) {
	query := `SELECT ` + requestColumns + `
	FROM withdraw_requests r
	JOIN users u ON u.id = r.user_id
	WHERE r.status = $1
	ORDER BY r.created_at DESC
	LIMIT $2 OFFSET $3`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list withdraw requests: %w", err)
	}
	defer rows.Close()

	var out []domain.WithdrawRequest
	for rows.Next() {
		w, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *requestRepository) CountByStatus(ctx context.Context, status domain.RequestStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM withdraw_requests WHERE status = $1`

	var n int
	if err := pick(ctx, r.db).QueryRowContext(ctx, query, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count withdraw requests: %w", err)
	}
	return n, nil
}

// Transition moves a request out of pending. The WHERE status='pending'
// guard makes concurrent resolutions race safely: exactly one update wins,
// the rest see zero rows and get ErrRequestNotPending.
func (r *requestRepository) Transition(ctx context.Context, id uuid.UUID, newStatus domain.RequestStatus, adminID int64, comment string) (*domain.WithdrawRequest, error) {
	const query = `UPDATE withdraw_requests
	SET status = $1, processed_at = $2, processed_by_admin_id = $3, admin_comment = NULLIF($4, '')
	WHERE id = $5 AND status = $6`

	q := pick(ctx, r.db)
	result, err := q.ExecContext(ctx, query, newStatus, time.Now().UTC(), adminID, comment, id, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("transition withdraw request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		var current domain.RequestStatus
		err := q.QueryRowContext(ctx, `SELECT status FROM withdraw_requests WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrRequestNotPending
	}

	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.WithdrawRequest, error) {
	var (
		w         domain.WithdrawRequest
		processed sql.NullTime
		adminID   sql.NullInt64
		comment   sql.NullString
	)
	err := row.Scan(
		&w.ID, &w.UserID, &w.Amount, &w.Contact, &w.Status, &w.CreatedAt,
		&processed, &adminID, &comment,
		&w.Username, &w.FirstName,
	)
	if err != nil {
		return nil, err
	}
	if processed.Valid {
		t := processed.Time
		w.ProcessedAt = &t
	}
	if adminID.Valid {
		v := adminID.Int64
		w.ProcessedByAdminID = &v
	}
	if comment.Valid {
		c := comment.String
		w.AdminComment = &c
	}
	return &w, nil
}
