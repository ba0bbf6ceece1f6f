// Package memory provides an in-process implementation of every repository
// interface. It backs STORE_DRIVER=memory and the service and handler tests.
//
// Each assignment unit runs against a private clone of the state while
// holding the store lock; the clone replaces the live state only when the
// unit commits, so a failed unit leaves nothing behind.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

type pair struct {
	eventID        string
	photographerID string
}

type state struct {
	events        map[string]model.Event
	photographers map[string]model.Photographer
	assignments   map[string]model.Assignment
	pairs         map[pair]struct{}
	outbox        []model.OutboxEvent
	outboxSeq     int64
}

func newState() *state {
	return &state{
		events:        map[string]model.Event{},
		photographers: map[string]model.Photographer{},
		assignments:   map[string]model.Assignment{},
		pairs:         map[pair]struct{}{},
	}
}

func (s *state) clone() *state {
	c := &state{
		events:        make(map[string]model.Event, len(s.events)),
		photographers: make(map[string]model.Photographer, len(s.photographers)),
		assignments:   make(map[string]model.Assignment, len(s.assignments)),
		pairs:         make(map[pair]struct{}, len(s.pairs)),
		outbox:        make([]model.OutboxEvent, len(s.outbox)),
		outboxSeq:     s.outboxSeq,
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.photographers {
		c.photographers[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k := range s.pairs {
		c.pairs[k] = struct{}{}
	}
	copy(c.outbox, s.outbox)
	return c
}

// Store is a mutex-guarded in-memory database.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{state: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStore returns the repository bundle backed by a fresh in-memory Store.
func NewStore(opts ...Option) *repository.Store {
	return New(opts...).Repositories()
}

// Repositories exposes s through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Events:        eventRepo{s},
		Photographers: photographerRepo{s},
		Assignments:   assignmentRepo{s},
		Outbox:        outboxRepo{s},
		Tx:            txManager{s},
	}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// view runs fn with the live state under the lock.
func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// ─── events ─────────────────────────────────────────────────────────────────

type eventRepo struct{ s *Store }

func (r eventRepo) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	var out model.Event
	err := r.s.view(ctx, func(st *state) error {
		out = model.Event{
			ID:                    repository.NewID(),
			Name:                  req.Name,
			Date:                  req.Date,
			PhotographersRequired: req.PhotographersRequired,
			CreatedAt:             r.s.stamp(),
		}
		st.events[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r eventRepo) List(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	err := r.s.view(ctx, func(st *state) error {
		for _, e := range st.events {
			out = append(out, e)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Event) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, err
}

func (r eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var out model.Event
	err := r.s.view(ctx, func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r eventRepo) Update(ctx context.Context, in *model.Event) (*model.Event, error) {
	var out model.Event
	err := r.s.view(ctx, func(st *state) error {
		e, ok := st.events[in.ID]
		if !ok {
			return repository.ErrNotFound
		}
		e.Name = in.Name
		e.Date = in.Date
		e.PhotographersRequired = in.PhotographersRequired
		st.events[e.ID] = e
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r eventRepo) Delete(ctx context.Context, id string) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.events[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.events, id)
		st.dropAssignments(func(a model.Assignment) bool { return a.EventID == id })
		return nil
	})
}

// ─── photographers ──────────────────────────────────────────────────────────

type photographerRepo struct{ s *Store }

func (st *state) emailTaken(email, exceptID string) bool {
	for id, p := range st.photographers {
		if id != exceptID && p.Email == email {
			return true
		}
	}
	return false
}

func (r photographerRepo) Create(ctx context.Context, req model.CreatePhotographerRequest) (*model.Photographer, error) {
	var out model.Photographer
	err := r.s.view(ctx, func(st *state) error {
		if st.emailTaken(req.Email, "") {
			return repository.ErrDuplicateEmail
		}
		out = model.Photographer{
			ID:       repository.NewID(),
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			IsActive: req.IsActive == nil || *req.IsActive,
		}
		st.photographers[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r photographerRepo) List(ctx context.Context) ([]model.Photographer, error) {
	var out []model.Photographer
	err := r.s.view(ctx, func(st *state) error {
		for _, p := range st.photographers {
			out = append(out, p)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Photographer) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r photographerRepo) GetByID(ctx context.Context, id string) (*model.Photographer, error) {
	var out model.Photographer
	err := r.s.view(ctx, func(st *state) error {
		p, ok := st.photographers[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r photographerRepo) Update(ctx context.Context, in *model.Photographer) (*model.Photographer, error) {
	var out model.Photographer
	err := r.s.view(ctx, func(st *state) error {
		if _, ok := st.photographers[in.ID]; !ok {
			return repository.ErrNotFound
		}
		if st.emailTaken(in.Email, in.ID) {
			return repository.ErrDuplicateEmail
		}
		out = *in
		st.photographers[in.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r photographerRepo) Delete(ctx context.Context, id string) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.photographers[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.photographers, id)
		st.dropAssignments(func(a model.Assignment) bool { return a.PhotographerID == id })
		return nil
	})
}

func (st *state) dropAssignments(match func(model.Assignment) bool) {
	for id, a := range st.assignments {
		if match(a) {
			delete(st.assignments, id)
			delete(st.pairs, pair{a.EventID, a.PhotographerID})
		}
	}
}

// ─── assignments ────────────────────────────────────────────────────────────

type assignmentRepo struct{ s *Store }

func (r assignmentRepo) ListByEvent(ctx context.Context, eventID string) ([]model.AssignmentView, error) {
	var out []model.AssignmentView
	err := r.s.view(ctx, func(st *state) error {
		for _, a := range st.assignmentsOf(eventID) {
			out = append(out, model.AssignmentView{
				ID:           a.ID,
				Photographer: st.photographers[a.PhotographerID],
				EventID:      a.EventID,
			})
		}
		return nil
	})
	return out, err
}

func (r assignmentRepo) PhotographersForEvent(ctx context.Context, eventID string) ([]model.Photographer, error) {
	var out []model.Photographer
	err := r.s.view(ctx, func(st *state) error {
		out = st.photographersFor(eventID)
		return nil
	})
	return out, err
}

func (r assignmentRepo) EventsForPhotographer(ctx context.Context, photographerID string) ([]model.Event, error) {
	var out []model.Event
	err := r.s.view(ctx, func(st *state) error {
		for _, a := range st.assignments {
			if a.PhotographerID == photographerID {
				out = append(out, st.events[a.EventID])
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.Event) int {
		if c := a.Date.Time().Compare(b.Date.Time()); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

// assignmentsOf returns the assignments of eventID ordered by photographer id.
func (st *state) assignmentsOf(eventID string) []model.Assignment {
	var out []model.Assignment
	for _, a := range st.assignments {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b model.Assignment) int {
		return strings.Compare(a.PhotographerID, b.PhotographerID)
	})
	return out
}

func (st *state) photographersFor(eventID string) []model.Photographer {
	var out []model.Photographer
	for _, a := range st.assignmentsOf(eventID) {
		out = append(out, st.photographers[a.PhotographerID])
	}
	return out
}

// ─── outbox ─────────────────────────────────────────────────────────────────

type outboxRepo struct{ s *Store }

func (r outboxRepo) GetUnpublishedEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	err := r.s.view(ctx, func(st *state) error {
		for _, e := range st.outbox {
			if len(out) == limit {
				break
			}
			if e.PublishedAt == nil {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

func (r outboxRepo) MarkAsPublished(ctx context.Context, id int64) error {
	return r.s.view(ctx, func(st *state) error {
		for i := range st.outbox {
			if st.outbox[i].ID == id && st.outbox[i].PublishedAt == nil {
				at := r.s.stamp()
				st.outbox[i].PublishedAt = &at
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

// ─── transactions ───────────────────────────────────────────────────────────

type txManager struct{ s *Store }

// WithTransaction holds the store lock for the whole unit, which serializes
// units the way the row and date locks do on PostgreSQL.
func (m txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.AssignmentTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	work := m.s.state.clone()
	if err := fn(ctx, &memTx{store: m.s, st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	m.s.state = work
	return nil
}

type memTx struct {
	store *Store
	st    *state
}

func (t *memTx) LockEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := t.st.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (t *memTx) LockDate(ctx context.Context, _ model.Date) error {
	return ctx.Err()
}

func (t *memTx) CountAssignments(ctx context.Context, eventID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(t.st.assignmentsOf(eventID)), nil
}

func (t *memTx) BookedPhotographerIDs(ctx context.Context, date model.Date) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, a := range t.st.assignments {
		e, ok := t.st.events[a.EventID]
		if !ok || !e.Date.Equal(date) {
			continue
		}
		if _, dup := seen[a.PhotographerID]; dup {
			continue
		}
		seen[a.PhotographerID] = struct{}{}
		ids = append(ids, a.PhotographerID)
	}
	return ids, nil
}

func (t *memTx) ActivePhotographers(ctx context.Context) ([]model.Photographer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Photographer
	for _, p := range t.st.photographers {
		if p.IsActive {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Photographer) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (t *memTx) CreateAssignments(ctx context.Context, eventID string, photographerIDs []string) ([]model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := t.st.events[eventID]; !ok {
		return nil, fmt.Errorf("insert assignment: %w", repository.ErrNotFound)
	}
	now := t.store.stamp()
	out := make([]model.Assignment, 0, len(photographerIDs))
	for _, pid := range photographerIDs {
		if _, ok := t.st.photographers[pid]; !ok {
			return nil, fmt.Errorf("insert assignment: %w", repository.ErrNotFound)
		}
		key := pair{eventID, pid}
		if _, dup := t.st.pairs[key]; dup {
			return nil, fmt.Errorf("insert assignment: %w", repository.ErrConflict)
		}
		a := model.Assignment{ID: repository.NewID(), EventID: eventID, PhotographerID: pid, CreatedAt: now}
		t.st.assignments[a.ID] = a
		t.st.pairs[key] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

func (t *memTx) PhotographersForEvent(ctx context.Context, eventID string) ([]model.Photographer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.st.photographersFor(eventID), nil
}

func (t *memTx) CreateOutboxEvent(ctx context.Context, params *model.CreateOutboxEventParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.st.outboxSeq++
	t.st.outbox = append(t.st.outbox, model.OutboxEvent{
		ID:          t.st.outboxSeq,
		AggregateID: params.AggregateID,
		EventType:   params.EventType,
		Payload:     slices.Clone(params.Payload),
		CreatedAt:   t.store.stamp(),
	})
	return nil
}

var (
	_ repository.EventRepository        = eventRepo{}
	_ repository.PhotographerRepository = photographerRepo{}
	_ repository.AssignmentRepository   = assignmentRepo{}
	_ repository.OutboxRepository       = outboxRepo{}
	_ repository.TransactionManager     = txManager{}
	_ repository.AssignmentTx           = (*memTx)(nil)
)
