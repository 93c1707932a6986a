package implementation

import (
	"context"
	"errors"

	"ai-examgen-be/internal/entity"
	"ai-examgen-be/internal/mapper"
	"ai-examgen-be/internal/model"
	"ai-examgen-be/internal/repository/contract"
	"ai-examgen-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StorageSlotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StorageSlotMapper
}

func NewStorageSlotRepository(db *gorm.DB) contract.StorageSlotRepository {
	return &StorageSlotRepositoryImpl{
		db:     db,
		mapper: mapper.NewStorageSlotMapper(),
	}
}

func (r *StorageSlotRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StorageSlotRepositoryImpl) Upsert(ctx context.Context, slot *entity.StorageSlot) error {
	m := r.mapper.ToModel(slot)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*slot = *r.mapper.ToEntity(m)
	return nil
}

func (r *StorageSlotRepositoryImpl) DeleteByKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.StorageSlot{}).Error
}

func (r *StorageSlotRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StorageSlot, error) {
	var m model.StorageSlot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
