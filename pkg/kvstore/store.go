package kvstore

import (
	"context"
	"errors"
)

// ErrQuotaExceeded marks writes rejected by the capacity bound. Callers must
// be able to tell it apart from ordinary write failures, so it is a sentinel.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueStore is the small persistence capability the core depends on but
// does not implement. A missing key is not an error: Get returns (nil, nil).
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
