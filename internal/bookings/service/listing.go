package service

import (
	"context"
	"fmt"
	"parkbook/internal/access"
	"parkbook/pkg/config"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/model"
	"slices"
	"strings"
	"sync"
)

const (
	KindAll   = "all"
	KindRoom  = model.BookingKindRoom
	KindEvent = model.BookingKindEvent

	// MaxListingOffset bounds how deep a page may start. A merged listing
	// reads offset+limit rows from each ledger.
	MaxListingOffset = 10000
)

type RoomLedger interface {
	FindActive(ctx context.Context, query model.BookingQuery, limit int, offset int64) ([]*model.RoomBooking, error)
	CountActive(ctx context.Context, query model.BookingQuery) (int64, error)
}

type EventLedger interface {
	FindActive(ctx context.Context, query model.BookingQuery, limit int, offset int64) ([]*model.EventBooking, error)
	CountActive(ctx context.Context, query model.BookingQuery) (int64, error)
}

type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	SearchIDs(ctx context.Context, name, phone string) ([]string, error)
}

type RoomDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Room, error)
	SearchIDs(ctx context.Context, name string) ([]string, error)
}

type EventDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Event, error)
	SearchIDs(ctx context.Context, title string) ([]string, error)
}

type ListingService interface {
	List(ctx context.Context, caller access.Identity, kind string, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingView, int64, error)
}

type listingService struct {
	roomBookings  RoomLedger
	eventBookings EventLedger
	users         UserDirectory
	rooms         RoomDirectory
	events        EventDirectory
	cfg           *config.Config
}

func NewListingService(
	roomBookings RoomLedger,
	eventBookings EventLedger,
	users UserDirectory,
	rooms RoomDirectory,
	events EventDirectory,
	cfg *config.Config,
) ListingService {
	return &listingService{
		roomBookings:  roomBookings,
		eventBookings: eventBookings,
		users:         users,
		rooms:         rooms,
		events:        events,
		cfg:           cfg,
	}
}

// ledgerQuery is the resolved form of a listing request for one ledger.
// skip is set when a filter matched nothing, so the ledger is not queried.
type ledgerQuery struct {
	query model.BookingQuery
	skip  bool
}

// List returns active bookings newest first. Visitors only ever see their
// own; staff see everyone's and may filter by client and object.
func (s *listingService) List(
	ctx context.Context,
	caller access.Identity,
	kind string,
	filter model.BookingFilter,
	limit int,
	offset int64,
) ([]*model.BookingView, int64, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindAll
	}
	if kind != KindAll && kind != KindRoom && kind != KindEvent {
		return nil, 0, apperrors.InvalidInput("kind must be one of: all, room, event")
	}
	if offset < 0 || offset > MaxListingOffset {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("offset must be between 0 and %d", MaxListingOffset))
	}
	limit = config.NormalizePaginationLimit(limit)
	if caller.UserID == "" {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}

	roomQ, eventQ, err := s.resolve(ctx, caller, filter)
	if err != nil {
		return nil, 0, err
	}
	if kind == KindRoom {
		eventQ.skip = true
	}
	if kind == KindEvent {
		roomQ.skip = true
	}

	// A merged page needs the first offset+limit rows of each ledger.
	fetch, skip := limit, offset
	if kind == KindAll {
		fetch, skip = limit+int(offset), 0
	}

	var (
		wg                    sync.WaitGroup
		roomRows              []*model.RoomBooking
		eventRows             []*model.EventBooking
		roomTotal, eventTotal int64
		roomErr, eventErr     error
	)

	if !roomQ.skip {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if roomTotal, roomErr = s.roomBookings.CountActive(ctx, roomQ.query); roomErr != nil {
				return
			}
			roomRows, roomErr = s.roomBookings.FindActive(ctx, roomQ.query, fetch, skip)
		}()
	}
	if !eventQ.skip {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if eventTotal, eventErr = s.eventBookings.CountActive(ctx, eventQ.query); eventErr != nil {
				return
			}
			eventRows, eventErr = s.eventBookings.FindActive(ctx, eventQ.query, fetch, skip)
		}()
	}
	wg.Wait()

	if roomErr != nil {
		s.cfg.Log.Error("Failed to list room bookings", "error", roomErr)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", roomErr)
	}
	if eventErr != nil {
		s.cfg.Log.Error("Failed to list event bookings", "error", eventErr)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", eventErr)
	}

	views, err := s.views(ctx, roomRows, eventRows)
	if err != nil {
		return nil, 0, err
	}

	slices.SortStableFunc(views, func(a, b *model.BookingView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if kind == KindAll {
		views = page(views, limit, offset)
	}

	return views, roomTotal + eventTotal, nil
}

func (s *listingService) resolve(ctx context.Context, caller access.Identity, filter model.BookingFilter) (ledgerQuery, ledgerQuery, error) {
	var roomQ, eventQ ledgerQuery

	if !access.IsAdminOrWorker(caller) {
		roomQ.query.UserID = caller.UserID
		eventQ.query.UserID = caller.UserID
		return roomQ, eventQ, nil
	}

	name := strings.TrimSpace(filter.ClientName)
	phone := strings.TrimSpace(filter.ClientPhone)
	if name != "" || phone != "" {
		ids, err := s.users.SearchIDs(ctx, name, phone)
		if err != nil {
			s.cfg.Log.Error("Failed to search clients", "error", err)
			return roomQ, eventQ, apperrors.Internal("Failed to search clients", err)
		}
		if len(ids) == 0 {
			roomQ.skip, eventQ.skip = true, true
		}
		roomQ.query.UserIDs = ids
		eventQ.query.UserIDs = ids
	}

	if title := strings.TrimSpace(filter.ObjectTitle); title != "" {
		roomIDs, err := s.rooms.SearchIDs(ctx, title)
		if err != nil {
			s.cfg.Log.Error("Failed to search rooms", "error", err)
			return roomQ, eventQ, apperrors.Internal("Failed to search rooms", err)
		}
		eventIDs, err := s.events.SearchIDs(ctx, title)
		if err != nil {
			s.cfg.Log.Error("Failed to search events", "error", err)
			return roomQ, eventQ, apperrors.Internal("Failed to search events", err)
		}
		roomQ.skip = roomQ.skip || len(roomIDs) == 0
		eventQ.skip = eventQ.skip || len(eventIDs) == 0
		roomQ.query.ObjectIDs = roomIDs
		eventQ.query.ObjectIDs = eventIDs
	}

	return roomQ, eventQ, nil
}

func (s *listingService) views(ctx context.Context, roomRows []*model.RoomBooking, eventRows []*model.EventBooking) ([]*model.BookingView, error) {
	userIDs := make([]string, 0, len(roomRows)+len(eventRows))
	roomIDs := make([]string, 0, len(roomRows))
	eventIDs := make([]string, 0, len(eventRows))
	for _, b := range roomRows {
		userIDs = append(userIDs, b.UserID)
		roomIDs = append(roomIDs, b.RoomID)
	}
	for _, b := range eventRows {
		userIDs = append(userIDs, b.UserID)
		eventIDs = append(eventIDs, b.EventID)
	}

	users := map[string]*model.User{}
	if len(userIDs) > 0 {
		found, err := s.users.FindByIDs(ctx, dedupe(userIDs))
		if err != nil {
			s.cfg.Log.Error("Failed to load booking clients", "error", err)
			return nil, apperrors.Internal("Failed to retrieve bookings", err)
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}

	rooms := map[string]string{}
	if len(roomIDs) > 0 {
		found, err := s.rooms.FindByIDs(ctx, dedupe(roomIDs))
		if err != nil {
			s.cfg.Log.Error("Failed to load booked rooms", "error", err)
			return nil, apperrors.Internal("Failed to retrieve bookings", err)
		}
		for _, r := range found {
			rooms[r.ID] = r.Name
		}
	}

	events := map[string]string{}
	if len(eventIDs) > 0 {
		found, err := s.events.FindByIDs(ctx, dedupe(eventIDs))
		if err != nil {
			s.cfg.Log.Error("Failed to load booked events", "error", err)
			return nil, apperrors.Internal("Failed to retrieve bookings", err)
		}
		for _, e := range found {
			events[e.ID] = e.Title
		}
	}

	views := make([]*model.BookingView, 0, len(roomRows)+len(eventRows))
	for _, b := range roomRows {
		v := &model.BookingView{
			ID:          b.ID,
			Kind:        model.BookingKindRoom,
			UserID:      b.UserID,
			ObjectID:    b.RoomID,
			ObjectTitle: rooms[b.RoomID],
			SlotNumber:  b.SlotNumber,
			StartTime:   &b.StartTime,
			EndTime:     &b.EndTime,
			PeopleCount: b.PeopleCount,
			Price:       b.Price,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt,
		}
		fillClient(v, users[b.UserID])
		views = append(views, v)
	}
	for _, b := range eventRows {
		v := &model.BookingView{
			ID:          b.ID,
			Kind:        model.BookingKindEvent,
			UserID:      b.UserID,
			ObjectID:    b.EventID,
			ObjectTitle: events[b.EventID],
			Price:       b.Price,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt,
		}
		fillClient(v, users[b.UserID])
		views = append(views, v)
	}
	return views, nil
}

func fillClient(v *model.BookingView, u *model.User) {
	if u == nil {
		return
	}
	v.ClientName = u.FullName()
	v.ClientPhone = u.Phone
}

func dedupe(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func page(views []*model.BookingView, limit int, offset int64) []*model.BookingView {
	if offset >= int64(len(views)) {
		return []*model.BookingView{}
	}
	end := min(int(offset)+limit, len(views))
	return views[offset:end]
}
