package service

import (
	"context"
	"fmt"
	"parkbook/internal/bookingevents"
	bookingserrors "parkbook/internal/bookings/errors"
	mongotx "parkbook/pkg/db/mongo"
	"parkbook/pkg/model"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memRoomBookings is an in-memory ledger. Each method is atomic on its own;
// nothing spans a "transaction", so racing callers rely on the slot lock.
type memRoomBookings struct {
	mu            sync.Mutex
	bookings      map[string]*model.RoomBooking
	overlapCalls  int
	createErr     error
	findActiveErr error
}

func newMemRoomBookings(existing ...*model.RoomBooking) *memRoomBookings {
	m := &memRoomBookings{bookings: map[string]*model.RoomBooking{}}
	for _, b := range existing {
		if b.ID == "" {
			b.ID = primitive.NewObjectID().Hex()
		}
		if b.Status == "" {
			b.Status = model.BookingStatusConfirmed
		}
		m.bookings[b.ID] = b
	}
	return m
}

func (m *memRoomBookings) Create(ctx context.Context, b *model.RoomBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	b.ID = primitive.NewObjectID().Hex()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memRoomBookings) FindByID(ctx context.Context, id string) (*model.RoomBooking, error) {
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

func (m *memRoomBookings) Update(ctx context.Context, id string, b *model.RoomBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[id]
	if !ok || cur.Status != model.BookingStatusConfirmed {
		return bookingserrors.ErrNotFound
	}
	cp := *b
	m.bookings[id] = &cp
	return nil
}

func (m *memRoomBookings) UpdateStatus(ctx context.Context, id, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[id]
	if !ok || cur.Status != from {
		return bookingserrors.ErrNotFound
	}
	cur.Status = to
	return nil
}

func (m *memRoomBookings) FindOverlapping(ctx context.Context, roomID string, slot int, start, end time.Time, excludeID string) ([]*model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlapCalls++
	var out []*model.RoomBooking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.SlotNumber == slot && b.ID != excludeID &&
			b.Status == model.BookingStatusConfirmed && b.StartTime.Before(end) && b.EndTime.After(start) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRoomBookings) matches(b *model.RoomBooking, q model.BookingQuery) bool {
	if b.Status != model.BookingStatusConfirmed {
		return false
	}
	if q.UserID != "" && b.UserID != q.UserID {
		return false
	}
	if len(q.UserIDs) > 0 && !slices.Contains(q.UserIDs, b.UserID) {
		return false
	}
	if len(q.ObjectIDs) > 0 && !slices.Contains(q.ObjectIDs, b.RoomID) {
		return false
	}
	return true
}

func (m *memRoomBookings) sorted(q model.BookingQuery) []*model.RoomBooking {
	var out []*model.RoomBooking
	for _, b := range m.bookings {
		if m.matches(b, q) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b *model.RoomBooking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (m *memRoomBookings) FindActive(ctx context.Context, q model.BookingQuery, limit int, offset int64) ([]*model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findActiveErr != nil {
		return nil, m.findActiveErr
	}
	all := m.sorted(q)
	if offset >= int64(len(all)) {
		return nil, nil
	}
	return all[offset:min(int(offset)+limit, len(all))], nil
}

func (m *memRoomBookings) CountActive(ctx context.Context, q model.BookingQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sorted(q))), nil
}

func (m *memRoomBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func (m *memRoomBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type memRooms map[string]*model.Room

func (m memRooms) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if r, ok := m[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, fmt.Errorf("room %w", mongotx.ErrNotFound)
}

func (m memRooms) FindByIDs(ctx context.Context, ids []string) ([]*model.Room, error) {
	var out []*model.Room
	for _, id := range ids {
		if r, ok := m[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type memUsers map[string]*model.User

func (m memUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %w", mongotx.ErrNotFound)
}

func (m memUsers) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	for _, u := range m {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %w", mongotx.ErrNotFound)
}

func (m memUsers) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := m[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// memLocks backs the real locker in tests.
type memLocks struct {
	mu   sync.Mutex
	held map[string]string
	seq  int
}

func newMemLocks() *memLocks {
	return &memLocks{held: map[string]string{}}
}

func (m *memLocks) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", bookingserrors.ErrLockHeld
	}
	m.seq++
	owner := fmt.Sprintf("owner-%d", m.seq)
	m.held[key] = owner
	return owner, nil
}

func (m *memLocks) Release(ctx context.Context, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == owner {
		delete(m.held, key)
	}
	return nil
}

func (m *memLocks) heldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
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

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (m memRooms) SearchIDs(ctx context.Context, name string) ([]string, error) {
	var out []string
	for id, r := range m {
		if strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m memUsers) SearchIDs(ctx context.Context, name, phone string) ([]string, error) {
	var out []string
	for id, u := range m {
		if name != "" && !strings.Contains(strings.ToLower(u.FullName()), strings.ToLower(name)) {
			continue
		}
		if phone != "" && !strings.Contains(u.Phone, phone) {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

type memEvents map[string]*model.Event

func (m memEvents) FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error) {
	var out []*model.Event
	for _, id := range ids {
		if e, ok := m[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memEvents) SearchIDs(ctx context.Context, title string) ([]string, error) {
	var out []string
	for id, e := range m {
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(title)) {
			out = append(out, id)
		}
	}
	return out, nil
}

type memEventBookings struct {
	bookings []*model.EventBooking
}

func (m *memEventBookings) filter(q model.BookingQuery) []*model.EventBooking {
	var out []*model.EventBooking
	for _, b := range m.bookings {
		if b.Status != model.BookingStatusConfirmed {
			continue
		}
		if q.UserID != "" && b.UserID != q.UserID {
			continue
		}
		if len(q.UserIDs) > 0 && !slices.Contains(q.UserIDs, b.UserID) {
			continue
		}
		if len(q.ObjectIDs) > 0 && !slices.Contains(q.ObjectIDs, b.EventID) {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *model.EventBooking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (m *memEventBookings) FindActive(ctx context.Context, q model.BookingQuery, limit int, offset int64) ([]*model.EventBooking, error) {
	all := m.filter(q)
	if offset >= int64(len(all)) {
		return nil, nil
	}
	return all[offset:min(int(offset)+limit, len(all))], nil
}

func (m *memEventBookings) CountActive(ctx context.Context, q model.BookingQuery) (int64, error) {
	return int64(len(m.filter(q))), nil
}
