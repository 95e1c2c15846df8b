package masterdata

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, m *model.MasterData) error
	FindByID(ctx context.Context, kind model.MasterKind, id string) (*model.MasterData, error)
	FindByName(ctx context.Context, kind model.MasterKind, name string) (*model.MasterData, error)
	FindAll(ctx context.Context, kind model.MasterKind, filters *dto.MasterFilters) ([]model.MasterData, int, error)
	Update(ctx context.Context, m *model.MasterData) error
	Delete(ctx context.Context, kind model.MasterKind, id string) error

	// NameIndex maps every name of the kind to its id.
	NameIndex(ctx context.Context, kind model.MasterKind) (map[string]string, error)
	// CountExisting counts how many of ids exist for the kind.
	CountExisting(ctx context.Context, kind model.MasterKind, ids []string) (int, error)
	SetSortOrder(ctx context.Context, kind model.MasterKind, id string, order int) error
}
