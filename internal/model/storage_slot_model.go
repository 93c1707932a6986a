package model

import (
	"time"

	"gorm.io/datatypes"
)

type StorageSlot struct {
	Key       string         `gorm:"type:varchar(128);primaryKey"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (StorageSlot) TableName() string {
	return "storage_slots"
}
