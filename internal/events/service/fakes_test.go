package service

import (
	"context"
	"fmt"
	"parkbook/internal/bookingevents"
	bookingserrors "parkbook/internal/bookings/errors"
	eventserrors "parkbook/internal/events/errors"
	"parkbook/internal/events/repository"
	mongotx "parkbook/pkg/db/mongo"
	"parkbook/pkg/model"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memEvents struct {
	mu     sync.Mutex
	events map[string]*model.Event
}

func newMemEvents(existing ...*model.Event) *memEvents {
	m := &memEvents{events: map[string]*model.Event{}}
	for _, e := range existing {
		m.events[e.ID] = e
	}
	return m
}

func (m *memEvents) Create(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID().Hex()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEvents) FindByID(ctx context.Context, id string) (*model.Event, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, eventserrors.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, eventserrors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvents) FindAll(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *model.Event) int { return a.StartTime.Compare(b.StartTime) })
	if offset >= int64(len(out)) {
		return nil, nil
	}
	return out[offset:min(int(offset)+limit, len(out))], nil
}

func (m *memEvents) Count(ctx context.Context, f repository.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

func (m *memEvents) Update(ctx context.Context, id string, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return eventserrors.ErrNotFound
	}
	cp := *e
	m.events[id] = &cp
	return nil
}

func (m *memEvents) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return eventserrors.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memEvents) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	return nil, nil
}

func (m *memEvents) SearchIDs(ctx context.Context, title string) ([]string, error) {
	return nil, nil
}

func (m *memEvents) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type memEventBookings struct {
	mu       sync.Mutex
	bookings map[string]*model.EventBooking
}

func newMemEventBookings() *memEventBookings {
	return &memEventBookings{bookings: map[string]*model.EventBooking{}}
}

func (m *memEventBookings) Create(ctx context.Context, b *model.EventBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = primitive.NewObjectID().Hex()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memEventBookings) FindByID(ctx context.Context, id string) (*model.EventBooking, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memEventBookings) UpdateStatus(ctx context.Context, id, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return bookingserrors.ErrNotFound
	}
	b.Status = to
	return nil
}

func (m *memEventBookings) held(eventID string) []*model.EventBooking {
	var out []*model.EventBooking
	for _, b := range m.bookings {
		if b.EventID == eventID && b.Status != model.BookingStatusCancelled {
			out = append(out, b)
		}
	}
	return out
}

func (m *memEventBookings) HasHeld(ctx context.Context, eventID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.held(eventID) {
		if b.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEventBookings) CountHeld(ctx context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.held(eventID))), nil
}

func (m *memEventBookings) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, b := range m.bookings {
		if b.EventID == eventID {
			delete(m.bookings, id)
			n++
		}
	}
	return n, nil
}

func (m *memEventBookings) FindActive(ctx context.Context, q model.BookingQuery, limit int, offset int64) ([]*model.EventBooking, error) {
	return nil, nil
}

func (m *memEventBookings) CountActive(ctx context.Context, q model.BookingQuery) (int64, error) {
	return 0, nil
}

func (m *memEventBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func (m *memEventBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type memUsers map[string]*model.User

func (m memUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %w", mongotx.ErrNotFound)
}

// fakeLocker records the keys it was asked to hold.
type fakeLocker struct {
	mu   sync.Mutex
	keys [][]string
}

func (l *fakeLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, keys)
	return func() {}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []bookingevents.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev bookingevents.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}
