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
	BookingsCollectionName = "Event_bookings"
)

// heldStatuses are the bookings that still occupy a seat. Completed ones
// count: the user attended and cannot book the same event again.
var heldStatuses = []string{model.BookingStatusConfirmed, model.BookingStatusCompleted}

type EventBookingRepository interface {
	Create(ctx context.Context, booking *model.EventBooking) error
	FindByID(ctx context.Context, id string) (*model.EventBooking, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
	HasHeld(ctx context.Context, eventID, userID string) (bool, error)
	CountHeld(ctx context.Context, eventID string) (int64, error)
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
	FindActive(ctx context.Context, query model.BookingQuery, limit int, offset int64) ([]*model.EventBooking, error)
	CountActive(ctx context.Context, query model.BookingQuery) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoEventBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoEventBookingRepository(cfg *config.Config) EventBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingsCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoEventBookingRepository) Create(ctx context.Context, booking *model.EventBooking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create event booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEventBookingRepository) FindByID(ctx context.Context, id string) (*model.EventBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.EventBooking
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoEventBookingRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
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
		return fmt.Errorf("failed to update event booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoEventBookingRepository) HasHeld(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"event_id": eventID,
		"user_id":  userID,
		"status":   bson.M{"$in": heldStatuses},
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check event booking: %w", err)
	}
	return count > 0, nil
}

func (r *mongoEventBookingRepository) CountHeld(ctx context.Context, eventID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"status":   bson.M{"$in": heldStatuses},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count event bookings: %w", err)
	}
	return count, nil
}

func (r *mongoEventBookingRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete event bookings: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoEventBookingRepository) FindActive(ctx context.Context, query model.BookingQuery, limit int, offset int64) ([]*model.EventBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildActiveFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find event bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.EventBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode event bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoEventBookingRepository) CountActive(ctx context.Context, query model.BookingQuery) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildActiveFilter(query))
	if err != nil {
		return 0, fmt.Errorf("failed to count event bookings: %w", err)
	}
	return count, nil
}

func buildActiveFilter(q model.BookingQuery) bson.M {
	filter := bson.M{"status": model.BookingStatusConfirmed}

	if q.UserID != "" {
		filter["user_id"] = q.UserID
	} else if len(q.UserIDs) > 0 {
		filter["user_id"] = bson.M{"$in": q.UserIDs}
	}
	if len(q.ObjectIDs) > 0 {
		filter["event_id"] = bson.M{"$in": q.ObjectIDs}
	}

	return filter
}

func (r *mongoEventBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
