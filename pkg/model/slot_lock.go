package model

import "time"

// SlotLock is an advisory lock guarding the overlap check on a guide's
// day. The _id encodes guide and date; a duplicate-key insert means
// another request holds the lock.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
