package entity

import (
	"time"
)

// StorageSlot is one named slot of the key-value archive storage.
// Value holds an opaque JSON document owned by the caller.
type StorageSlot struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
