package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	"parkbook/internal/bookingevents"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/internal/bookings/locker"
	"parkbook/internal/events/validator"
	"parkbook/pkg/config"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"
	"testing"
	"time"
)

const (
	concertID  = "64c000000000000000000001"
	limitedID  = "64c000000000000000000002"
	workerID   = "64a000000000000000000001"
	visitorID  = "64a000000000000000000002"
	otherID    = "64a000000000000000000003"
	missingID  = "64a0000000000000000000ff"
	unknownEvt = "64c0000000000000000000ff"
)

var (
	worker  = access.Identity{UserID: workerID, Roles: []access.Role{access.RoleWorker}}
	visitor = access.Identity{UserID: visitorID, Roles: []access.Role{access.RoleVisitor}}
	other   = access.Identity{UserID: otherID, Roles: []access.Role{access.RoleVisitor}}
)

type eventFixture struct {
	events    *memEvents
	bookings  *memEventBookings
	locker    *fakeLocker
	publisher *recordingPublisher
	svc       EventBookingService
	eventSvc  EventService
}

func newEventFixture() *eventFixture {
	cfg := &config.Config{Log: logger.Discard()}
	start := time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC)
	f := &eventFixture{
		events: newMemEvents(
			&model.Event{ID: concertID, Title: "Night Concert", StartTime: start, EndTime: start.Add(2 * time.Hour), Price: 2500},
			&model.Event{ID: limitedID, Title: "Magic Show", StartTime: start, EndTime: start.Add(time.Hour), Price: 800, Capacity: 1},
		),
		bookings:  newMemEventBookings(),
		locker:    &fakeLocker{},
		publisher: &recordingPublisher{},
	}
	users := memUsers{
		workerID:  {ID: workerID, Name: "Wes"},
		visitorID: {ID: visitorID, Name: "Vic"},
		otherID:   {ID: otherID, Name: "Ola"},
	}
	v := validator.NewEventValidator(cfg.Log)
	f.svc = NewEventBookingService(f.bookings, f.events, users, f.locker, f.publisher, v, cfg)
	f.eventSvc = NewEventService(f.events, f.bookings, v, cfg)
	return f
}

func TestBookEventCopiesPrice(t *testing.T) {
	f := newEventFixture()

	b, err := f.svc.Book(context.Background(), visitor, concertID, nil)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if b.Price != 2500 || b.UserID != visitorID || b.Status != model.BookingStatusConfirmed {
		t.Errorf("booking = %+v", b)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != bookingevents.EventBookingCreated {
		t.Errorf("published = %+v", f.publisher.events)
	}
	if got := f.locker.keys[0][0]; got != locker.EventUserKey(concertID, visitorID) {
		t.Errorf("lock key = %q", got)
	}
}

func TestBookEventTwiceRejected(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	first, err := f.svc.Book(ctx, visitor, concertID, nil)
	if err != nil {
		t.Fatalf("first Book() error = %v", err)
	}
	if _, err := f.svc.Book(ctx, visitor, concertID, nil); !errors.Is(err, bookingserrors.ErrAlreadyBooked) {
		t.Fatalf("second Book() error = %v, want already booked", err)
	}

	if _, err := f.svc.Cancel(ctx, visitor, first.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := f.svc.Book(ctx, visitor, concertID, nil); err != nil {
		t.Errorf("Book() after cancel error = %v", err)
	}
}

func TestBookEventSoldOut(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, visitor, limitedID, nil); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	_, err := f.svc.Book(ctx, other, limitedID, nil)
	if !errors.Is(err, bookingserrors.ErrEventSoldOut) {
		t.Fatalf("Book() error = %v, want sold out", err)
	}
	if f.bookings.count() != 1 {
		t.Errorf("bookings = %d, want 1", f.bookings.count())
	}
	if got := f.locker.keys[1][0]; got != locker.EventKey(limitedID) {
		t.Errorf("lock key = %q, want event-wide key", got)
	}
}

func TestBookEventOnBehalf(t *testing.T) {
	tests := []struct {
		name    string
		caller  access.Identity
		userID  string
		wantErr error
	}{
		{name: "worker for visitor", caller: worker, userID: visitorID},
		{name: "visitor for someone else", caller: visitor, userID: otherID, wantErr: bookingserrors.ErrAccessDenied},
		{name: "unknown user", caller: worker, userID: missingID, wantErr: bookingserrors.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture()
			b, err := f.svc.Book(context.Background(), tt.caller, concertID, &model.EventBookingRequest{UserID: tt.userID})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Book() error = %v, want %v", err, tt.wantErr)
				}
				if f.bookings.count() != 0 {
					t.Error("booking was written")
				}
				return
			}
			if err != nil {
				t.Fatalf("Book() error = %v", err)
			}
			if b.UserID != tt.userID {
				t.Errorf("UserID = %q, want %q", b.UserID, tt.userID)
			}
			if f.publisher.events[0].ActorID != workerID {
				t.Errorf("ActorID = %q", f.publisher.events[0].ActorID)
			}
		})
	}
}

func TestBookEventRejections(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, access.Identity{}, concertID, nil); err == nil {
		t.Error("anonymous Book() succeeded")
	}
	if _, err := f.svc.Book(ctx, visitor, unknownEvt, nil); !errors.Is(err, bookingserrors.ErrEventNotFound) {
		t.Errorf("unknown event error = %v", err)
	}
	if _, err := f.svc.Book(ctx, visitor, "not-an-id", nil); !errors.Is(err, bookingserrors.ErrEventNotFound) {
		t.Errorf("malformed event id error = %v", err)
	}
	if f.bookings.count() != 0 {
		t.Errorf("bookings = %d, want 0", f.bookings.count())
	}
}

func TestEventBookingTransitions(t *testing.T) {
	f := newEventFixture()
	ctx := context.Background()

	b, err := f.svc.Book(ctx, visitor, concertID, nil)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if _, err := f.svc.Cancel(ctx, other, b.ID); !errors.Is(err, bookingserrors.ErrAccessDenied) {
		t.Errorf("Cancel() by other visitor error = %v", err)
	}
	if _, err := f.svc.Complete(ctx, visitor, b.ID); !errors.Is(err, bookingserrors.ErrAccessDenied) {
		t.Errorf("Complete() by visitor error = %v", err)
	}

	done, err := f.svc.Complete(ctx, worker, b.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.Status != model.BookingStatusCompleted {
		t.Errorf("Status = %q", done.Status)
	}

	if _, err := f.svc.Cancel(ctx, visitor, b.ID); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("Cancel() after complete error = %v", err)
	}
	if _, err := f.svc.Book(ctx, visitor, concertID, nil); !errors.Is(err, bookingserrors.ErrAlreadyBooked) {
		t.Errorf("Book() after complete error = %v", err)
	}
	if _, err := f.svc.Cancel(ctx, worker, missingID); err == nil {
		t.Error("Cancel() of missing booking succeeded")
	}
}
