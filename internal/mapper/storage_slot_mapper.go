package mapper

import (
	"ai-examgen-be/internal/entity"
	"ai-examgen-be/internal/model"

	"gorm.io/datatypes"
)

type StorageSlotMapper struct{}

func NewStorageSlotMapper() *StorageSlotMapper {
	return &StorageSlotMapper{}
}

func (m *StorageSlotMapper) ToEntity(s *model.StorageSlot) *entity.StorageSlot {
	if s == nil {
		return nil
	}

	return &entity.StorageSlot{
		Key:       s.Key,
		Value:     []byte(s.Value),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *StorageSlotMapper) ToModel(s *entity.StorageSlot) *model.StorageSlot {
	if s == nil {
		return nil
	}

	return &model.StorageSlot{
		Key:       s.Key,
		Value:     datatypes.JSON(s.Value),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
