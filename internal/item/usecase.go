package item

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.CreateItemInput, actor model.Actor) (*model.InventoryItem, error)
	// GetItem finds an item; a non-nil itemType hides items of other types.
	GetItem(ctx context.Context, id string, itemType *model.ItemType) (*model.InventoryItem, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error)
	ListItemIDs(ctx context.Context, filters *dto.ItemFilters, limit int) ([]string, error)
	ExportItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput, itemType *model.ItemType, actor model.Actor) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id string, itemType *model.ItemType, actor model.Actor) error

	BulkEdit(ctx context.Context, input *dto.BulkEditInput, actor model.Actor) (*dto.BulkEditResult, error)
	BulkDelete(ctx context.Context, input *dto.BulkDeleteInput, actor model.Actor) (*dto.BulkDeleteResult, error)
}
