package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventboard/internal/domain"

	"github.com/lib/pq"
)

const requestColumns = `id, event_id, requester_id, status, created`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

func (r *requestRepository) WithEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context, tx domain.ParticipationTx, event *domain.Event) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	if err := fn(ctx, &participationTx{tx: tx}, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

func (r *requestRepository) ListByRequesterID(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE requester_id = $1
		ORDER BY id
	`
	return queryRequests(ctx, r.DB, query, requesterID)
}

func (r *requestRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1
		ORDER BY id
	`
	return queryRequests(ctx, r.DB, query, eventID)
}

func (r *requestRepository) Cancel(ctx context.Context, requestID, requesterID int64) (*domain.ParticipationRequest, bool, error) {
	query := `
		UPDATE participation_requests SET status = $3
		WHERE id = $1 AND requester_id = $2 AND status <> $3
		RETURNING ` + requestColumns
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, requestID, requesterID, domain.RequestStatusCanceled))
	if err == nil {
		return req, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	// Either missing, someone else's, or already canceled.
	query = `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1 AND requester_id = $2`
	req, err = scanRequest(r.DB.QueryRowContext(ctx, query, requestID, requesterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, err
	}
	return req, false, nil
}

func (r *requestRepository) CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT event_id, COUNT(*)
		FROM participation_requests
		WHERE event_id = ANY($1) AND status = $2
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs), domain.RequestStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID, n int64
		if err := rows.Scan(&eventID, &n); err != nil {
			return nil, err
		}
		counts[eventID] = n
	}
	return counts, rows.Err()
}

// participationTx runs request queries inside the transaction that holds the event lock.
type participationTx struct {
	tx *sql.Tx
}

func (t *participationTx) CountConfirmed(ctx context.Context, eventID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2`
	var n int64
	if err := t.tx.QueryRowContext(ctx, query, eventID, domain.RequestStatusConfirmed).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *participationTx) HasActiveRequest(ctx context.Context, eventID, requesterID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM participation_requests
			WHERE event_id = $1 AND requester_id = $2 AND status <> $3
		)
	`
	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, eventID, requesterID, domain.RequestStatusCanceled).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *participationTx) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query, req.EventID, req.RequesterID, req.Status, req.Created).Scan(&req.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return fmt.Errorf("%w: request already exists", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (t *participationTx) ListByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []*domain.ParticipationRequest{}, nil
	}
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE id = ANY($1)
		FOR UPDATE
	`
	return queryRequests(ctx, t.tx, query, pq.Array(ids))
}

func (t *participationTx) SetStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE participation_requests SET status = $1 WHERE id = ANY($2)`
	_, err := t.tx.ExecContext(ctx, query, status, pq.Array(ids))
	return err
}

func scanRequest(row *sql.Row) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created); err != nil {
		return nil, err
	}
	return req, nil
}

func queryRequests(ctx context.Context, q queryer, query string, args ...any) ([]*domain.ParticipationRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		req := &domain.ParticipationRequest{}
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
