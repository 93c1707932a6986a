package contract

import (
	"context"

	"ai-examgen-be/internal/entity"
	"ai-examgen-be/internal/repository/specification"
)

type StorageSlotRepository interface {
	Upsert(ctx context.Context, slot *entity.StorageSlot) error
	DeleteByKey(ctx context.Context, key string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StorageSlot, error)
}
