package changelog

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Filters struct {
	EntityType string
	EntityID   string
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, entry *model.ChangeLogEntry) error
	FindAll(ctx context.Context, filters *Filters) ([]model.ChangeLogEntry, error)
}
