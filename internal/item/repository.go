package item

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id string) (*model.InventoryItem, error)
	FindByIDs(ctx context.Context, ids []string, itemType *model.ItemType) ([]model.InventoryItem, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error)
	// FindAllUnpaged returns every matching row in list order.
	FindAllUnpaged(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, error)
	// FindIDs returns matching ids in list order; limit <= 0 means no cap.
	FindIDs(ctx context.Context, filters *dto.ItemFilters, limit int) ([]string, error)
	Update(ctx context.Context, item *model.InventoryItem) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	// ReplaceTags drops every tag of itemIDs and attaches tagIDs to each.
	ReplaceTags(ctx context.Context, itemIDs, tagIDs []string) error
	BulkUpdateFields(ctx context.Context, ids []string, fields dto.ScalarUpdate, now time.Time) (int64, error)
	SetQuantity(ctx context.Context, id string, quantity int, now time.Time) error
	NextSKU(ctx context.Context, itemType model.ItemType) (string, error)
}
