package kvstore

import (
	"context"
	"fmt"
)

// DefaultQuotaBytes is sized like a browser local-storage slot: big enough
// for many saved tests, small enough to force cleanup eventually.
const DefaultQuotaBytes = 5 << 20

// QuotaStore bounds the size of any single value written through it.
// Reads and deletes pass straight through to the wrapped store.
type QuotaStore struct {
	inner KeyValueStore
	limit int64
}

func NewQuotaStore(inner KeyValueStore, limit int64) *QuotaStore {
	if limit <= 0 {
		limit = DefaultQuotaBytes
	}
	return &QuotaStore{
		inner: inner,
		limit: limit,
	}
}

func (s *QuotaStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

func (s *QuotaStore) Set(ctx context.Context, key string, value []byte) error {
	if int64(len(value)) > s.limit {
		return fmt.Errorf("%w: %d bytes over the %d byte limit", ErrQuotaExceeded, int64(len(value))-s.limit, s.limit)
	}
	return s.inner.Set(ctx, key, value)
}

func (s *QuotaStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
