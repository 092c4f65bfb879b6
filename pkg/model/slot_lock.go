package model

import "time"

// SlotLock is an advisory lock document. Inserting it claims the key; the
// unique _id makes a second insert fail while the first holder is alive.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
