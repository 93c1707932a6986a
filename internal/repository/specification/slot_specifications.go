package specification

import "gorm.io/gorm"

// BySlotKey filters storage slots by their primary key
type BySlotKey struct {
	Key string
}

func (s BySlotKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("key = ?", s.Key)
}
