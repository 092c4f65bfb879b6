package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	"parkbook/internal/bookingevents"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/bookings/locker"
	"parkbook/internal/bookings/validator"
	"parkbook/pkg/config"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testRoomID  = "64b000000000000000000001"
	closedRoom  = "64b000000000000000000002"
	staffID     = "64a000000000000000000001"
	visitorID   = "64a000000000000000000002"
	clientID    = "64a000000000000000000003"
	clientPhone = "+12125551234"
)

var (
	staff   = access.Identity{UserID: staffID, Roles: []access.Role{access.RoleWorker}}
	visitor = access.Identity{UserID: visitorID, Roles: []access.Role{access.RoleVisitor}}
	day     = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type roomFixture struct {
	repo      *memRoomBookings
	locks     *memLocks
	publisher *recordingPublisher
	svc       RoomBookingService
}

func newRoomFixture(existing ...*model.RoomBooking) *roomFixture {
	cfg := &config.Config{Log: logger.Discard()}
	f := &roomFixture{
		repo:      newMemRoomBookings(existing...),
		locks:     newMemLocks(),
		publisher: &recordingPublisher{},
	}
	rooms := memRooms{
		testRoomID: {ID: testRoomID, Name: "Party Hall", PricePerSlotHour: 1500, Status: model.RoomStatusOpen, SlotsTotal: 3},
		closedRoom: {ID: closedRoom, Name: "Old Barn", PricePerSlotHour: 900, Status: model.RoomStatusMaintenance, SlotsTotal: 1},
	}
	users := memUsers{
		staffID:   {ID: staffID, Name: "Sam", Role: "worker"},
		visitorID: {ID: visitorID, Name: "Vic", Role: "visitor"},
		clientID:  {ID: clientID, Name: "Cleo", Surname: "Park", Phone: clientPhone, Role: "visitor"},
	}
	lk := locker.New(f.locks, time.Minute, 5*time.Second, cfg.Log)
	f.svc = NewRoomBookingService(f.repo, rooms, users, lk, f.publisher, validator.NewBookingValidator(cfg.Log), cfg)
	return f
}

func roomRequest(slot int, start, end time.Time) *model.RoomBookingRequest {
	return &model.RoomBookingRequest{
		RoomID:      testRoomID,
		SlotNumber:  slot,
		StartTime:   start,
		EndTime:     end,
		PeopleCount: 4,
		ClientPhone: clientPhone,
	}
}

func existingBooking(slot int, start, end time.Time) *model.RoomBooking {
	return &model.RoomBooking{
		UserID:     clientID,
		RoomID:     testRoomID,
		SlotNumber: slot,
		StartTime:  start,
		EndTime:    end,
		Status:     model.BookingStatusConfirmed,
	}
}

func cancelledBooking(slot int, start, end time.Time) *model.RoomBooking {
	b := existingBooking(slot, start, end)
	b.Status = model.BookingStatusCancelled
	return b
}

func TestCreateRoomBooking(t *testing.T) {
	f := newRoomFixture()

	b, err := f.svc.Create(context.Background(), staff, roomRequest(1, at(9, 0), at(11, 30)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if b.Price != 3000 {
		t.Errorf("price = %d, want 3000", b.Price)
	}
	if b.UserID != clientID || b.CreatedBy != staffID {
		t.Errorf("user_id = %s created_by = %s", b.UserID, b.CreatedBy)
	}
	if b.Status != model.BookingStatusConfirmed {
		t.Errorf("status = %s", b.Status)
	}
	if got := f.publisher.kinds(); len(got) != 1 || got[0] != bookingevents.RoomBookingCreated {
		t.Errorf("published = %v", got)
	}
	if f.locks.heldCount() != 0 {
		t.Error("slot lock was not released")
	}
}

func TestCreateRoomBookingForCaller(t *testing.T) {
	f := newRoomFixture()
	req := roomRequest(1, at(9, 0), at(10, 0))
	req.ClientPhone = ""

	b, err := f.svc.Create(context.Background(), staff, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.UserID != staffID {
		t.Errorf("user_id = %s, want caller %s", b.UserID, staffID)
	}
}

func TestCreateRoomBookingNormalizesPhone(t *testing.T) {
	f := newRoomFixture()
	req := roomRequest(1, at(9, 0), at(10, 0))
	req.ClientPhone = "+1 (212) 555-1234"

	b, err := f.svc.Create(context.Background(), staff, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.UserID != clientID {
		t.Errorf("user_id = %s, want %s", b.UserID, clientID)
	}
}

func TestCreateRoomBookingOverlap(t *testing.T) {
	tests := []struct {
		name     string
		existing *model.RoomBooking
		slot     int
		start    time.Time
		end      time.Time
		wantErr  error
	}{
		{
			name:     "overlap rejected",
			existing: existingBooking(1, at(10, 0), at(12, 0)),
			slot:     1,
			start:    at(11, 0),
			end:      at(13, 0),
			wantErr:  bookingserrors.ErrTimeConflict,
		},
		{
			name:     "contained rejected",
			existing: existingBooking(1, at(9, 0), at(18, 0)),
			slot:     1,
			start:    at(11, 0),
			end:      at(12, 0),
			wantErr:  bookingserrors.ErrTimeConflict,
		},
		{
			name:     "touching accepted",
			existing: existingBooking(1, at(9, 0), at(10, 0)),
			slot:     1,
			start:    at(10, 0),
			end:      at(11, 0),
		},
		{
			name:     "other slot accepted",
			existing: existingBooking(2, at(10, 0), at(12, 0)),
			slot:     1,
			start:    at(10, 0),
			end:      at(12, 0),
		},
		{
			name:     "cancelled booking ignored",
			existing: cancelledBooking(1, at(10, 0), at(12, 0)),
			slot:     1,
			start:    at(10, 0),
			end:      at(12, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoomFixture(tt.existing)

			_, err := f.svc.Create(context.Background(), staff, roomRequest(tt.slot, tt.start, tt.end))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if f.repo.count() != 2 {
					t.Errorf("bookings = %d, want 2", f.repo.count())
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if f.repo.count() != 1 {
				t.Errorf("rejected booking was written, bookings = %d", f.repo.count())
			}
			if !apperrors.HasCode(err, bookingserrors.CodeTimeConflict) {
				t.Errorf("code = %v", err)
			}
		})
	}
}

func TestCreateRoomBookingRejections(t *testing.T) {
	tests := []struct {
		name     string
		caller   access.Identity
		mutate   func(*model.RoomBookingRequest)
		wantErr  error
		wantCode string
	}{
		{
			name:    "visitor denied",
			caller:  visitor,
			mutate:  func(*model.RoomBookingRequest) {},
			wantErr: bookingserrors.ErrAccessDenied,
		},
		{
			name:   "end before start",
			caller: staff,
			mutate: func(r *model.RoomBookingRequest) {
				r.StartTime, r.EndTime = at(11, 0), at(10, 0)
			},
			wantErr: bookingserrors.ErrInvalidInterval,
		},
		{
			name:   "end equals start",
			caller: staff,
			mutate: func(r *model.RoomBookingRequest) {
				r.StartTime, r.EndTime = at(11, 0), at(11, 0)
			},
			wantErr: bookingserrors.ErrInvalidInterval,
		},
		{
			name:   "shorter than an hour",
			caller: staff,
			mutate: func(r *model.RoomBookingRequest) {
				r.StartTime, r.EndTime = at(11, 0), at(11, 59)
			},
			wantErr: bookingserrors.ErrInvalidDuration,
		},
		{
			name:    "unknown client phone",
			caller:  staff,
			mutate:  func(r *model.RoomBookingRequest) { r.ClientPhone = "+12125550000" },
			wantErr: bookingserrors.ErrClientNotFound,
		},
		{
			name:    "unknown room",
			caller:  staff,
			mutate:  func(r *model.RoomBookingRequest) { r.RoomID = "64b0000000000000000000ff" },
			wantErr: bookingserrors.ErrRoomNotFound,
		},
		{
			name:     "slot out of range",
			caller:   staff,
			mutate:   func(r *model.RoomBookingRequest) { r.SlotNumber = 4 },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "room under maintenance",
			caller:   staff,
			mutate:   func(r *model.RoomBookingRequest) { r.RoomID = closedRoom },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "garbage phone",
			caller:   staff,
			mutate:   func(r *model.RoomBookingRequest) { r.ClientPhone = "call me" },
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoomFixture()
			req := roomRequest(1, at(9, 0), at(11, 0))
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), tt.caller, req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantCode != "" && !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
			if f.repo.count() != 0 {
				t.Errorf("rejected booking was written")
			}
			if f.repo.overlapCalls != 0 {
				t.Errorf("overlap query ran %d times for a rejected request", f.repo.overlapCalls)
			}
			if f.locks.heldCount() != 0 {
				t.Error("slot lock leaked")
			}
		})
	}
}

func TestCreateRoomBookingPersistenceError(t *testing.T) {
	f := newRoomFixture()
	f.repo.createErr = errors.New("E11000 write concern timeout on shard-07")

	_, err := f.svc.Create(context.Background(), staff, roomRequest(1, at(9, 0), at(10, 0)))
	if !errors.Is(err, bookingserrors.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	body := string(apperrors.AsAppError(err).ToJSON())
	if strings.Contains(body, "shard-07") {
		t.Errorf("driver detail leaked into response: %s", body)
	}
	if f.locks.heldCount() != 0 {
		t.Error("slot lock leaked")
	}
	if len(f.publisher.kinds()) != 0 {
		t.Error("failed booking should not be published")
	}
}

func TestCreateRoomBookingConcurrent(t *testing.T) {
	f := newRoomFixture()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// Every request overlaps 10:00-11:00.
			req := roomRequest(2, at(9+i%2, 0), at(11, 0))
			_, err := f.svc.Create(context.Background(), staff, req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, bookingserrors.ErrTimeConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || conflicts != workers-1 {
		t.Errorf("successes = %d conflicts = %d, want 1 and %d", successes, conflicts, workers-1)
	}
	if f.repo.count() != 1 {
		t.Errorf("bookings stored = %d, want 1", f.repo.count())
	}
}

func TestRoomBookingTransitions(t *testing.T) {
	ctx := context.Background()
	existing := existingBooking(1, at(9, 0), at(10, 0))
	f := newRoomFixture(existing)

	if _, err := f.svc.Cancel(ctx, visitor, existing.ID); !errors.Is(err, bookingserrors.ErrAccessDenied) {
		t.Fatalf("visitor cancel: expected access denied, got %v", err)
	}

	b, err := f.svc.Cancel(ctx, staff, existing.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.Status != model.BookingStatusCancelled {
		t.Errorf("status = %s", b.Status)
	}

	for name, op := range map[string]func(context.Context, access.Identity, string) (*model.RoomBooking, error){
		"cancel again":       f.svc.Cancel,
		"complete cancelled": f.svc.Complete,
	} {
		if _, err := op(ctx, staff, existing.ID); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
			t.Errorf("%s: expected ErrInvalidTransition, got %v", name, err)
		}
	}

	if _, err := f.svc.Complete(ctx, staff, "64c000000000000000000009"); !errors.Is(err, bookingserrors.ErrNotFound) {
		t.Errorf("missing booking: expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Complete(ctx, staff, "bogus"); !errors.Is(err, bookingserrors.ErrInvalidID) {
		t.Errorf("bad id: expected ErrInvalidID, got %v", err)
	}

	if got := f.publisher.kinds(); len(got) != 1 || got[0] != bookingevents.RoomBookingCancelled {
		t.Errorf("published = %v", got)
	}
}

func TestCompleteRoomBooking(t *testing.T) {
	existing := existingBooking(1, at(9, 0), at(10, 0))
	f := newRoomFixture(existing)

	b, err := f.svc.Complete(context.Background(), staff, existing.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if b.Status != model.BookingStatusCompleted {
		t.Errorf("status = %s", b.Status)
	}
	if _, err := f.svc.Cancel(context.Background(), staff, existing.ID); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("cancel completed: expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateRoomBooking(t *testing.T) {
	ctx := context.Background()
	intPtr := func(v int) *int { return &v }
	timePtr := func(v time.Time) *time.Time { return &v }

	t.Run("extends over its own interval", func(t *testing.T) {
		mine := existingBooking(1, at(9, 0), at(10, 0))
		f := newRoomFixture(mine)

		b, err := f.svc.Update(ctx, staff, mine.ID, &model.RoomBookingUpdate{EndTime: timePtr(at(12, 0))})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if b.Price != 4500 {
			t.Errorf("price = %d, want 4500", b.Price)
		}
	})

	t.Run("moving onto a busy slot conflicts", func(t *testing.T) {
		mine := existingBooking(1, at(9, 0), at(10, 0))
		other := existingBooking(2, at(9, 0), at(10, 0))
		f := newRoomFixture(mine, other)

		_, err := f.svc.Update(ctx, staff, mine.ID, &model.RoomBookingUpdate{SlotNumber: intPtr(2)})
		if !errors.Is(err, bookingserrors.ErrTimeConflict) {
			t.Fatalf("expected ErrTimeConflict, got %v", err)
		}
		if f.locks.heldCount() != 0 {
			t.Error("slot locks leaked")
		}
	})

	t.Run("inverted interval", func(t *testing.T) {
		mine := existingBooking(1, at(9, 0), at(10, 0))
		f := newRoomFixture(mine)

		_, err := f.svc.Update(ctx, staff, mine.ID, &model.RoomBookingUpdate{StartTime: timePtr(at(10, 0))})
		if !errors.Is(err, bookingserrors.ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}
	})

	t.Run("terminal booking", func(t *testing.T) {
		mine := existingBooking(1, at(9, 0), at(10, 0))
		mine.Status = model.BookingStatusCompleted
		f := newRoomFixture(mine)

		_, err := f.svc.Update(ctx, staff, mine.ID, &model.RoomBookingUpdate{PeopleCount: intPtr(2)})
		if !errors.Is(err, bookingserrors.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("empty update", func(t *testing.T) {
		mine := existingBooking(1, at(9, 0), at(10, 0))
		f := newRoomFixture(mine)

		_, err := f.svc.Update(ctx, staff, mine.ID, &model.RoomBookingUpdate{})
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("visitor denied", func(t *testing.T) {
		mine := existingBooking(1, at(9, 0), at(10, 0))
		f := newRoomFixture(mine)

		_, err := f.svc.Update(ctx, visitor, mine.ID, &model.RoomBookingUpdate{PeopleCount: intPtr(2)})
		if !errors.Is(err, bookingserrors.ErrAccessDenied) {
			t.Fatalf("expected access denied, got %v", err)
		}
	})
}
