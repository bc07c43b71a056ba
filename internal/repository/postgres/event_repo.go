package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventboard/internal/domain"

	"github.com/lib/pq"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id, paid,
	participant_limit, request_moderation, state, event_date, created_on, published_on`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var publishedNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID, &e.Paid,
		&e.ParticipantLimit, &e.RequestModeration, &e.State, &e.EventDate, &e.CreatedOn, &publishedNull,
	)
	if err != nil {
		return nil, err
	}
	if publishedNull.Valid {
		e.PublishedOn = &publishedNull.Time
	}
	return e, nil
}

func (r *eventRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2`
	return r.getOne(ctx, query, id, initiatorID)
}

func (r *eventRepository) GetPublishedByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND state = $2`
	return r.getOne(ctx, query, id, domain.EventStatePublished)
}

func (r *eventRepository) ListPublished(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	where := []string{"state = $1"}
	args := []any{domain.EventStatePublished}
	n := 2
	if text := strings.TrimSpace(f.Text); text != "" {
		where = append(where, fmt.Sprintf("(annotation ILIKE $%d OR description ILIKE $%d)", n, n))
		args = append(args, "%"+text+"%")
		n++
	}
	if len(f.Categories) > 0 {
		where = append(where, fmt.Sprintf("category_id = ANY($%d)", n))
		args = append(args, pq.Array(f.Categories))
		n++
	}
	if f.Paid != nil {
		where = append(where, fmt.Sprintf("paid = $%d", n))
		args = append(args, *f.Paid)
		n++
	}
	where = append(where, fmt.Sprintf("event_date >= $%d", n))
	args = append(args, f.RangeStart)
	n++
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("event_date <= $%d", n))
		args = append(args, *f.RangeEnd)
		n++
	}
	if f.OnlyAvailable {
		where = append(where, fmt.Sprintf(`(participant_limit = 0 OR participant_limit > (
			SELECT COUNT(*) FROM participation_requests pr
			WHERE pr.event_id = events.id AND pr.status = $%d))`, n))
		args = append(args, domain.RequestStatusConfirmed)
		n++
	}
	args = append(args, f.Page.Size, f.Page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		ORDER BY event_date, id
		LIMIT $%d OFFSET $%d
	`, eventColumns, strings.Join(where, " AND "), n, n+1)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
