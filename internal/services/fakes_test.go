package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventboard/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUsers is an in-memory UserRepository.
type memUsers map[int64]*domain.User

func (m memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

// memStore is an in-memory event and request store. WithEventLock holds a
// per-event mutex and stages writes until fn returns nil, so it behaves like
// the row-locking transaction of the postgres repository.
type memStore struct {
	mu         sync.Mutex
	eventLocks map[int64]*sync.Mutex
	events     map[int64]*domain.Event
	requests   map[int64]*domain.ParticipationRequest
	nextID     int64
}

func newMemStore(events ...*domain.Event) *memStore {
	s := &memStore{
		eventLocks: make(map[int64]*sync.Mutex),
		events:     make(map[int64]*domain.Event),
		requests:   make(map[int64]*domain.ParticipationRequest),
		nextID:     1,
	}
	for _, e := range events {
		s.events[e.ID] = e
		s.eventLocks[e.ID] = &sync.Mutex{}
	}
	return s
}

// seed stores a request as if it had been committed earlier.
func (s *memStore) seed(eventID, requesterID int64, status domain.RequestStatus) *domain.ParticipationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := domain.NewParticipationRequest(eventID, requesterID, status, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	r.ID = s.nextID
	s.nextID++
	s.requests[r.ID] = r
	return r
}

func (s *memStore) get(id int64) domain.ParticipationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.requests[id]
}

func (s *memStore) countStatus(eventID int64, status domain.RequestStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.EventID == eventID && r.Status == status {
			n++
		}
	}
	return n
}

func (s *memStore) WithEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context, tx domain.ParticipationTx, event *domain.Event) error) error {
	s.mu.Lock()
	lock, ok := s.eventLocks[eventID]
	event := s.events[eventID]
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	ev := *event
	tx := &memTx{store: s, updates: make(map[int64]domain.RequestStatus)}
	if err := fn(ctx, tx, &ev); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *memStore) list(match func(*domain.ParticipationRequest) bool) []*domain.ParticipationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ParticipationRequest, 0)
	for _, r := range s.requests {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) ListByRequesterID(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return s.list(func(r *domain.ParticipationRequest) bool { return r.RequesterID == requesterID }), nil
}

func (s *memStore) ListByEventID(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return s.list(func(r *domain.ParticipationRequest) bool { return r.EventID == eventID }), nil
}

func (s *memStore) Cancel(ctx context.Context, requestID, requesterID int64) (*domain.ParticipationRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.RequesterID != requesterID {
		return nil, false, domain.ErrNotFound
	}
	changed := r.Status != domain.RequestStatusCanceled
	r.Status = domain.RequestStatusCanceled
	cp := *r
	return &cp, changed, nil
}

func (s *memStore) CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[int64]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}
	counts := make(map[int64]int64)
	for _, r := range s.requests {
		if want[r.EventID] && r.Status == domain.RequestStatusConfirmed {
			counts[r.EventID]++
		}
	}
	return counts, nil
}

// GetByID and friends make memStore an EventRepository too.
func (s *memStore) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (s *memStore) GetPublishedByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPublished() {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (s *memStore) ListPublished(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range s.events {
		if e.IsPublished() && !e.EventDate.Before(f.RangeStart) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].EventDate.Before(out[j].EventDate)
	})
	off := f.Page.Offset()
	if off > len(out) {
		return []*domain.Event{}, nil
	}
	out = out[off:]
	if f.Page.Size > 0 && len(out) > f.Page.Size {
		out = out[:f.Page.Size]
	}
	return out, nil
}

type memTx struct {
	store   *memStore
	created []*domain.ParticipationRequest
	updates map[int64]domain.RequestStatus
}

func (t *memTx) view() []domain.ParticipationRequest {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := make([]domain.ParticipationRequest, 0, len(t.store.requests)+len(t.created))
	for _, r := range t.store.requests {
		cp := *r
		if st, ok := t.updates[cp.ID]; ok {
			cp.Status = st
		}
		out = append(out, cp)
	}
	for _, r := range t.created {
		out = append(out, *r)
	}
	return out
}

func (t *memTx) CountConfirmed(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	for _, r := range t.view() {
		if r.EventID == eventID && r.Status == domain.RequestStatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (t *memTx) HasActiveRequest(ctx context.Context, eventID, requesterID int64) (bool, error) {
	for _, r := range t.view() {
		if r.EventID == eventID && r.RequesterID == requesterID && r.Status != domain.RequestStatusCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	t.store.mu.Lock()
	req.ID = t.store.nextID
	t.store.nextID++
	t.store.mu.Unlock()
	cp := *req
	t.created = append(t.created, &cp)
	return nil
}

func (t *memTx) ListByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]*domain.ParticipationRequest, 0)
	for _, r := range t.view() {
		if want[r.ID] {
			cp := r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *memTx) SetStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	for _, id := range ids {
		t.updates[id] = status
	}
	return nil
}

func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, st := range t.updates {
		if r, ok := t.store.requests[id]; ok {
			r.Status = st
		}
	}
	for _, r := range t.created {
		if st, ok := t.updates[r.ID]; ok {
			r.Status = st
		}
		t.store.requests[r.ID] = r
	}
}

// recordingPublisher captures published status changes.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.RequestStatusChanged
	err    error
}

func (p *recordingPublisher) PublishStatusChanged(ctx context.Context, events []domain.RequestStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

var errBroker = errors.New("broker unavailable")
