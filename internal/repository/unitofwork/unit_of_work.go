package unitofwork

import (
	"context"

	"ai-examgen-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	StorageSlotRepository() contract.StorageSlotRepository
}
