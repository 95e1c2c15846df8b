package masterdata

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	CreateMaster(ctx context.Context, kind model.MasterKind, input *dto.MasterInput, actor model.Actor) (*model.MasterData, error)
	GetMaster(ctx context.Context, kind model.MasterKind, id string) (*model.MasterData, error)
	ListMasters(ctx context.Context, kind model.MasterKind, filters *dto.MasterFilters) ([]model.MasterData, int, error)
	UpdateMaster(ctx context.Context, kind model.MasterKind, id string, input *dto.MasterInput, actor model.Actor) (*model.MasterData, error)
	DeleteMaster(ctx context.Context, kind model.MasterKind, id string, actor model.Actor) error

	// ReorderMaterialTypes assigns sort orders 1..n following ids.
	ReorderMaterialTypes(ctx context.Context, ids []string, actor model.Actor) error
}
