package slotstore

import (
	"context"

	"ai-examgen-be/internal/entity"
	"ai-examgen-be/internal/repository/specification"
	"ai-examgen-be/internal/repository/unitofwork"
	"ai-examgen-be/pkg/kvstore"
)

// GormSlotStore adapts the storage_slots table to the KeyValueStore
// capability so the archive persists through the main database.
type GormSlotStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewGormSlotStore(uowFactory unitofwork.RepositoryFactory) kvstore.KeyValueStore {
	return &GormSlotStore{
		uowFactory: uowFactory,
	}
}

func (s *GormSlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	slot, err := uow.StorageSlotRepository().FindOne(ctx, specification.BySlotKey{Key: key})
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, nil
	}
	return slot.Value, nil
}

func (s *GormSlotStore) Set(ctx context.Context, key string, value []byte) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	slot := entity.StorageSlot{Key: key, Value: value}
	if err := uow.StorageSlotRepository().Upsert(ctx, &slot); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *GormSlotStore) Delete(ctx context.Context, key string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.StorageSlotRepository().DeleteByKey(ctx, key); err != nil {
		return err
	}

	return uow.Commit()
}
