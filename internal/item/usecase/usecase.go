package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/item"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// BulkMetrics receives the number of records each bulk operation touched.
type BulkMetrics interface {
	BulkRecords(operation string, n int)
}

type Options struct {
	MaxBulkIDs  int
	MaxPageSize int
	Metrics     BulkMetrics
}

type itemUseCase struct {
	repo     item.Repository
	masters  masterdata.Repository
	tx       database.TxManager
	recorder *changelog.Recorder
	clock    clock.Clock
	logger   logger.ZapLogger
	opts     Options
}

func NewItemUseCase(
	repo item.Repository,
	masters masterdata.Repository,
	tx database.TxManager,
	recorder *changelog.Recorder,
	clk clock.Clock,
	log logger.ZapLogger,
	opts Options,
) item.UseCase {
	if opts.MaxBulkIDs <= 0 {
		opts.MaxBulkIDs = 100
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &itemUseCase{
		repo:     repo,
		masters:  masters,
		tx:       tx,
		recorder: recorder,
		clock:    clk,
		logger:   log,
		opts:     opts,
	}
}

func (uc *itemUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput, actor model.Actor) (*model.InventoryItem, error) {
	now := uc.clock.Now()
	it := &model.InventoryItem{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ItemType:       input.ItemType,
		Name:           input.Name,
		Specification:  input.Specification,
		Designer:       input.Designer,
		Quantity:       input.Quantity,
		CostPrice:      nullDecimal(input.CostPrice),
		ListPrice:      nullDecimal(input.ListPrice),
		ManufacturerID: optionalID(input.ManufacturerID),
		CategoryID:     optionalID(input.CategoryID),
		LocationID:     optionalID(input.LocationID),
		UnitID:         optionalID(input.UnitID),
		IsSold:         input.IsSold,
		SoldAt:         input.SoldAt,
		Notes:          input.Notes,
	}
	for _, id := range uniqueIDs(input.TagIDs) {
		it.Tags = append(it.Tags, model.TagRef{ID: id})
	}
	it.ApplySoldState(now)
	if err := item.Validate(it); err != nil {
		return nil, err
	}

	var created *model.InventoryItem
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.checkReferences(ctx, it); err != nil {
			return err
		}
		sku, err := uc.repo.NextSKU(ctx, it.ItemType)
		if err != nil {
			return err
		}
		it.SKU = sku
		if err := uc.repo.Create(ctx, it); err != nil {
			return err
		}
		if created, err = uc.repo.FindByID(ctx, it.ID); err != nil {
			return err
		}
		return uc.recorder.RecordCreate(ctx, created, actor)
	})
	if err != nil {
		return nil, uc.fail(err, "failed to create item")
	}
	return created, nil
}

func (uc *itemUseCase) GetItem(ctx context.Context, id string, itemType *model.ItemType) (*model.InventoryItem, error) {
	it, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, uc.fail(err, "failed to get item")
	}
	if it == nil || !inScope(it, itemType) {
		return nil, apperror.NotFound("item not found")
	}
	return it, nil
}

func (uc *itemUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	if err := filters.Validate(uc.opts.MaxPageSize); err != nil {
		return nil, 0, err
	}
	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, uc.fail(err, "failed to list items")
	}
	return items, count, nil
}

func (uc *itemUseCase) ListItemIDs(ctx context.Context, filters *dto.ItemFilters, limit int) ([]string, error) {
	ids, err := uc.repo.FindIDs(ctx, filters, limit)
	if err != nil {
		return nil, uc.fail(err, "failed to list item ids")
	}
	return ids, nil
}

func (uc *itemUseCase) ExportItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, error) {
	items, err := uc.repo.FindAllUnpaged(ctx, filters)
	if err != nil {
		return nil, uc.fail(err, "failed to export items")
	}
	return items, nil
}

func (uc *itemUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput, itemType *model.ItemType, actor model.Actor) (*model.InventoryItem, error) {
	var updated *model.InventoryItem
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if before == nil || !inScope(before, itemType) {
			return apperror.NotFound("item not found")
		}

		now := uc.clock.Now()
		it := before.Clone()
		applyUpdate(it, input)
		if input.IsSold != nil && !*input.IsSold {
			it.MarkUnsold()
		}
		it.ApplySoldState(now)
		it.UpdatedAt = now
		if err := item.Validate(it); err != nil {
			return err
		}
		if err := uc.checkReferences(ctx, it); err != nil {
			return err
		}

		if err := uc.repo.Update(ctx, it); err != nil {
			return err
		}
		if input.TagIDs != nil {
			if err := uc.repo.ReplaceTags(ctx, []string{it.ID}, it.TagIDs()); err != nil {
				return err
			}
		}

		if updated, err = uc.repo.FindByID(ctx, it.ID); err != nil {
			return err
		}
		_, err = uc.recorder.RecordUpdate(ctx, before, updated, item.FieldLabels, actor)
		return err
	})
	if err != nil {
		return nil, uc.fail(err, "failed to update item")
	}
	return updated, nil
}

func applyUpdate(it *model.InventoryItem, in *dto.UpdateItemInput) {
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Specification != nil {
		it.Specification = *in.Specification
	}
	if in.Designer != nil {
		it.Designer = *in.Designer
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.CostPrice != nil {
		it.CostPrice = decimal.NewNullDecimal(*in.CostPrice)
	}
	if in.ListPrice.Set {
		it.ListPrice = nullDecimal(in.ListPrice.Value)
	}
	if in.ManufacturerID != nil {
		it.ManufacturerID = optionalID(in.ManufacturerID)
	}
	if in.CategoryID != nil {
		it.CategoryID = optionalID(in.CategoryID)
	}
	if in.LocationID != nil {
		it.LocationID = optionalID(in.LocationID)
	}
	if in.UnitID != nil {
		it.UnitID = optionalID(in.UnitID)
	}
	if in.TagIDs != nil {
		it.Tags = it.Tags[:0]
		for _, id := range uniqueIDs(*in.TagIDs) {
			it.Tags = append(it.Tags, model.TagRef{ID: id})
		}
	}
	if in.IsSold != nil {
		it.IsSold = *in.IsSold
	}
	if in.SoldAt != nil {
		it.SoldAt = in.SoldAt
	}
	if in.Notes != nil {
		it.Notes = *in.Notes
	}
}

func (uc *itemUseCase) DeleteItem(ctx context.Context, id string, itemType *model.ItemType, actor model.Actor) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if before == nil || !inScope(before, itemType) {
			return apperror.NotFound("item not found")
		}
		if _, err := uc.repo.DeleteMany(ctx, []string{id}); err != nil {
			return err
		}
		return uc.recorder.RecordDelete(ctx, before, actor)
	})
	if err != nil {
		return uc.fail(err, "failed to delete item")
	}
	return nil
}

// BulkEdit applies one set of updates to every target inside a single
// transaction. Ids that do not exist are skipped. Any increment that would
// drive a quantity below zero aborts the whole batch.
func (uc *itemUseCase) BulkEdit(ctx context.Context, input *dto.BulkEditInput, actor model.Actor) (*dto.BulkEditResult, error) {
	if err := input.Validate(uc.opts.MaxBulkIDs); err != nil {
		return nil, err
	}
	u := input.Updates

	var updated int
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 1. Load targets and verify referenced master data
		targets, err := uc.repo.FindByIDs(ctx, input.IDs, input.ItemType)
		if err != nil {
			return err
		}
		if err := uc.checkBulkReferences(ctx, &u); err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		ids := make([]string, len(targets))
		for n := range targets {
			ids[n] = targets[n].ID
		}
		updated = len(ids)

		// 2. Replace tags; nested in the outer transaction
		if u.TagIDs != nil {
			err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
				return uc.repo.ReplaceTags(ctx, ids, uniqueIDs(*u.TagIDs))
			})
			if err != nil {
				return err
			}
		}

		now := uc.clock.Now()

		// 3. Scalar fields in one statement
		if u.HasScalar() {
			fields := dto.ScalarUpdate{
				LocationID:     u.LocationID,
				ManufacturerID: u.ManufacturerID,
				CategoryID:     u.CategoryID,
			}
			if u.Quantity != nil && u.Quantity.Mode == model.QuantitySet {
				v := u.Quantity.Value
				fields.Quantity = &v
			}
			affected, err := uc.repo.BulkUpdateFields(ctx, ids, fields, now)
			if err != nil {
				return err
			}
			updated = int(affected)
		}

		// 4. Per-record increments, all resolved before any write
		if u.Quantity != nil && u.Quantity.Mode == model.QuantityIncrement {
			next := make([]int, len(targets))
			for n := range targets {
				q, err := item.ResolveQuantity(targets[n].Quantity, model.QuantityIncrement, u.Quantity.Value)
				if err != nil {
					switch {
					case errors.Is(err, item.ErrNegativeQuantity):
						return item.NewNegativeQuantityError(&targets[n], u.Quantity.Value)
					case errors.Is(err, item.ErrQuantityTooLarge):
						return item.NewQuantityLimitError(&targets[n], u.Quantity.Value)
					}
					return err
				}
				next[n] = q
			}
			for n := range targets {
				if err := uc.repo.SetQuantity(ctx, targets[n].ID, next[n], now); err != nil {
					return err
				}
			}
			updated = len(targets)
		}

		// 5. One log entry per existing target
		for n := range targets {
			if err := uc.recorder.RecordBulkUpdate(ctx, &targets[n], actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(err, "failed to bulk edit items")
	}

	uc.observe("edit", updated)
	return &dto.BulkEditResult{
		UpdatedCount: updated,
		Message:      fmt.Sprintf("%d件を更新しました", updated),
	}, nil
}

// BulkDelete removes every existing target and logs each with its
// pre-deletion state.
func (uc *itemUseCase) BulkDelete(ctx context.Context, input *dto.BulkDeleteInput, actor model.Actor) (*dto.BulkDeleteResult, error) {
	if err := input.Validate(uc.opts.MaxBulkIDs); err != nil {
		return nil, err
	}

	var deleted int
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		targets, err := uc.repo.FindByIDs(ctx, input.IDs, input.ItemType)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		ids := make([]string, len(targets))
		for n := range targets {
			ids[n] = targets[n].ID
		}

		n, err := uc.repo.DeleteMany(ctx, ids)
		if err != nil {
			return err
		}
		deleted = int(n)

		for i := range targets {
			if err := uc.recorder.RecordDelete(ctx, &targets[i], actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(err, "failed to bulk delete items")
	}

	uc.observe("delete", deleted)
	return &dto.BulkDeleteResult{
		DeletedCount: deleted,
		Message:      fmt.Sprintf("%d件を削除しました", deleted),
	}, nil
}

func (uc *itemUseCase) checkReferences(ctx context.Context, it *model.InventoryItem) error {
	var fe apperror.FieldErrors
	refs := []struct {
		field string
		kind  model.MasterKind
		id    *string
	}{
		{"manufacturerId", model.KindManufacturer, it.ManufacturerID},
		{"categoryId", model.KindCategory, it.CategoryID},
		{"locationId", model.KindLocation, it.LocationID},
		{"unitId", model.KindUnit, it.UnitID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if err := uc.expectExisting(ctx, ref.kind, []string{*ref.id}, ref.field, &fe); err != nil {
			return err
		}
	}
	if err := uc.expectExisting(ctx, model.KindTag, it.TagIDs(), "tagIds", &fe); err != nil {
		return err
	}
	return fe.Err("invalid item")
}

func (uc *itemUseCase) checkBulkReferences(ctx context.Context, u *dto.BulkUpdates) error {
	var fe apperror.FieldErrors
	refs := []struct {
		field string
		kind  model.MasterKind
		id    *string
	}{
		{"updates.locationId", model.KindLocation, u.LocationID},
		{"updates.manufacturerId", model.KindManufacturer, u.ManufacturerID},
		{"updates.categoryId", model.KindCategory, u.CategoryID},
	}
	for _, ref := range refs {
		if ref.id == nil || *ref.id == "" {
			continue
		}
		if err := uc.expectExisting(ctx, ref.kind, []string{*ref.id}, ref.field, &fe); err != nil {
			return err
		}
	}
	if u.TagIDs != nil {
		if err := uc.expectExisting(ctx, model.KindTag, uniqueIDs(*u.TagIDs), "updates.tagIds", &fe); err != nil {
			return err
		}
	}
	return fe.Err("invalid bulk edit")
}

func (uc *itemUseCase) expectExisting(ctx context.Context, kind model.MasterKind, ids []string, field string, fe *apperror.FieldErrors) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := uc.masters.CountExisting(ctx, kind, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		fe.Add(field, "references unknown "+string(kind))
	}
	return nil
}

func (uc *itemUseCase) observe(operation string, n int) {
	if uc.opts.Metrics != nil {
		uc.opts.Metrics.BulkRecords(operation, n)
	}
}

// fail passes taxonomy errors through and wraps storage failures.
func (uc *itemUseCase) fail(err error, msg string) error {
	if apperror.KindOf(err) != apperror.KindUnexpected {
		return err
	}
	uc.logger.Error(msg, zap.Error(err))
	return apperror.Unexpected(msg, err)
}

func inScope(it *model.InventoryItem, itemType *model.ItemType) bool {
	return itemType == nil || it.ItemType == *itemType
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// optionalID maps a missing or empty id to no reference.
func optionalID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
