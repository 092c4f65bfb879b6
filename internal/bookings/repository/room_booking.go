package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	"parkbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Room_bookings"
)

type RoomBookingRepository interface {
	Create(ctx context.Context, booking *model.RoomBooking) error
	FindByID(ctx context.Context, id string) (*model.RoomBooking, error)
	Update(ctx context.Context, id string, booking *model.RoomBooking) error
	UpdateStatus(ctx context.Context, id, from, to string) error
	FindOverlapping(ctx context.Context, roomID string, slot int, start, end time.Time, excludeID string) ([]*model.RoomBooking, error)
	FindActive(ctx context.Context, query model.BookingQuery, limit int, offset int64) ([]*model.RoomBooking, error)
	CountActive(ctx context.Context, query model.BookingQuery) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRoomBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewRoomBookingRepository(cfg *config.Config) RoomBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRoomBookingRepository) Create(ctx context.Context, booking *model.RoomBooking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create room booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoomBookingRepository) FindByID(ctx context.Context, id string) (*model.RoomBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.RoomBooking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room booking: %w", err)
	}

	return &booking, nil
}

// Update rewrites the schedule fields of a confirmed booking. Bookings that
// left the confirmed state are reported as ErrNotFound.
func (r *mongoRoomBookingRepository) Update(ctx context.Context, id string, booking *model.RoomBooking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": objectID, "status": model.BookingStatusConfirmed}
	update := bson.M{
		"$set": bson.M{
			"slot_number":  booking.SlotNumber,
			"start_time":   booking.StartTime,
			"end_time":     booking.EndTime,
			"people_count": booking.PeopleCount,
			"price":        booking.Price,
			"updated_at":   booking.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update room booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// UpdateStatus moves a booking from one status to another. The match on from
// makes concurrent transitions race safely: only one of them matches.
func (r *mongoRoomBookingRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC().Truncate(time.Millisecond)}},
	)
	if err != nil {
		return fmt.Errorf("failed to update room booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// FindOverlapping returns active bookings of the slot whose interval
// intersects [start, end). Touching intervals do not intersect.
func (r *mongoRoomBookingRepository) FindOverlapping(
	ctx context.Context,
	roomID string,
	slot int,
	start, end time.Time,
	excludeID string,
) ([]*model.RoomBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":     roomID,
		"slot_number": slot,
		"status":      model.BookingStatusConfirmed,
		"start_time":  bson.M{"$lt": end},
		"end_time":    bson.M{"$gt": start},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.RoomBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoRoomBookingRepository) FindActive(ctx context.Context, query model.BookingQuery, limit int, offset int64) ([]*model.RoomBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildListFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find room bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.RoomBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoRoomBookingRepository) CountActive(ctx context.Context, query model.BookingQuery) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(query))
	if err != nil {
		return 0, fmt.Errorf("failed to count room bookings: %w", err)
	}
	return count, nil
}

func buildListFilter(q model.BookingQuery) bson.M {
	filter := bson.M{"status": model.BookingStatusConfirmed}

	if q.UserID != "" {
		filter["user_id"] = q.UserID
	} else if len(q.UserIDs) > 0 {
		filter["user_id"] = bson.M{"$in": q.UserIDs}
	}
	if len(q.ObjectIDs) > 0 {
		filter["room_id"] = bson.M{"$in": q.ObjectIDs}
	}

	return filter
}

func (r *mongoRoomBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
