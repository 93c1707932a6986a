package specification

import "gorm.io/gorm"

// Specification narrows a slot query. Implementations are composed by the
// repository before executing Find/Delete.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
