package unitofwork

import "context"

// RepositoryFactory hands out a fresh UnitOfWork per request. The archive
// service and the gorm slot store both go through this.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
