package repository

import (
	"context"
	"fmt"
	bookingserrors "parkbook/internal/bookings/errors"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	"parkbook/pkg/model"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const SlotLockCollectionName = "Slot_locks"

// SlotLockRepository stores advisory lock documents keyed by slot.
type SlotLockRepository interface {
	// TryAcquire claims key for ttl and returns an owner token. A live lock held
	// by someone else yields ErrLockHeld; an expired one is reclaimed.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	Release(ctx context.Context, key, owner string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
		now:        time.Now,
	}
}

func (r *mongoSlotLockRepository) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	owner := uuid.NewString()

	// Two passes: the second runs only after an expired holder was swept.
	for attempt := 0; attempt < 2; attempt++ {
		now := r.now().UTC()
		lock := &model.SlotLock{
			ID:        key,
			Owner:     owner,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}

		_, err := r.collection.InsertOne(ctx, lock)
		if err == nil {
			return owner, nil
		}
		if !mongotx.IsDuplicateKey(err) {
			return "", fmt.Errorf("failed to acquire slot lock: %w", err)
		}

		res, err := r.collection.DeleteOne(ctx, bson.M{
			"_id":        key,
			"expires_at": bson.M{"$lt": now},
		})
		if err != nil {
			return "", fmt.Errorf("failed to reclaim stale slot lock: %w", err)
		}
		if res.DeletedCount == 0 {
			return "", bookingserrors.ErrLockHeld
		}
	}

	return "", bookingserrors.ErrLockHeld
}

// Release only removes the lock while owner still holds it, so a holder that
// outlived its ttl cannot free a lock someone else has since taken.
func (r *mongoSlotLockRepository) Release(ctx context.Context, key, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}
