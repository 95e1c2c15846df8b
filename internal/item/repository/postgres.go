package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/query"
)

const skuCounter = "item_sku"

// sortColumns whitelists the sortable fields.
var sortColumns = map[string]string{
	"name":      "i.name",
	"sku":       "i.sku",
	"quantity":  "i.quantity",
	"costPrice": "i.cost_price",
	"listPrice": "i.list_price",
	"createdAt": "i.created_at",
	"updatedAt": "i.updated_at",
	"soldAt":    "i.sold_at",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func withDetails(b *query.Builder) *query.Builder {
	return b.Select(
		"i.*",
		"m.name AS manufacturer_name",
		"c.name AS category_name",
		"l.name AS location_name",
		"u.name AS unit_name",
	).
		LeftJoin("manufacturers m ON m.id = i.manufacturer_id").
		LeftJoin("categories c ON c.id = i.category_id").
		LeftJoin("locations l ON l.id = i.location_id").
		LeftJoin("units u ON u.id = i.unit_id")
}

// filtered applies every list predicate. Count, page, export and id queries
// all start from it.
func filtered(f *dto.ItemFilters) *query.Builder {
	b := query.From("items i")
	if f.Search != "" {
		b = b.Where(query.LikeAny(f.Search, "i.name", "i.sku", "i.specification", "i.designer", "i.notes"))
	}
	if f.CategoryID != "" {
		b = b.Where(query.Eq("i.category_id", f.CategoryID))
	}
	if f.ManufacturerID != "" {
		b = b.Where(query.Eq("i.manufacturer_id", f.ManufacturerID))
	}
	if f.LocationID != "" {
		b = b.Where(query.Eq("i.location_id", f.LocationID))
	}
	if len(f.TagIDs) > 0 {
		args := make([]any, len(f.TagIDs))
		for n, id := range f.TagIDs {
			args[n] = id
		}
		sub := fmt.Sprintf("SELECT 1 FROM item_tags it WHERE it.item_id = i.id AND it.tag_id IN (%s)", query.Placeholders(len(args)))
		b = b.Where(query.Exists(sub, args...))
	}
	if !f.IncludeSold {
		b = b.Where(query.Eq("i.is_sold", false))
	}
	if f.ItemType != nil {
		b = b.Where(query.Eq("i.item_type", string(*f.ItemType)))
	}
	return b
}

// sorted orders by the requested column, falling back to newest first. The
// id is always the final key so pages are stable.
func sorted(b *query.Builder, f *dto.ItemFilters) *query.Builder {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		return b.OrderBy("i.created_at", query.Desc).OrderBy("i.id", query.Desc)
	}
	dir := query.Desc
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = query.Asc
	}
	return b.OrderBy(col, dir).OrderBy("i.id", dir)
}

func (r *PGRepository) Create(ctx context.Context, it *model.InventoryItem) error {
	q := `
        INSERT INTO items (
            id, sku, item_type, name, specification, designer, quantity,
            cost_price, list_price, manufacturer_id, category_id, location_id, unit_id,
            is_sold, sold_at, notes, created_at, updated_at
        )
        VALUES (
            :id, :sku, :item_type, :name, :specification, :designer, :quantity,
            :cost_price, :list_price, :manufacturer_id, :category_id, :location_id, :unit_id,
            :is_sold, :sold_at, :notes, :created_at, :updated_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), q, it); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	if len(it.Tags) > 0 {
		return r.insertTags(ctx, []string{it.ID}, it.TagIDs())
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	conn := database.Conn(ctx, r.DB)
	q, args := withDetails(query.From("items i")).Where(query.Eq("i.id", id)).Limit(1).Build()

	var it model.InventoryItem
	if err := sqlx.GetContext(ctx, conn, &it, conn.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select item: %w", err)
	}

	items := []model.InventoryItem{it}
	if err := r.attachTags(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string, itemType *model.ItemType) ([]model.InventoryItem, error) {
	if len(ids) == 0 {
		return []model.InventoryItem{}, nil
	}
	b := withDetails(query.From("items i")).Where(query.In("i.id", ids))
	if itemType != nil {
		b = b.Where(query.Eq("i.item_type", string(*itemType)))
	}
	return r.selectItems(ctx, b.OrderBy("i.id", query.Asc))
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	conn := database.Conn(ctx, r.DB)
	base := filtered(f)

	var count int
	countQ, countArgs := base.Count().Build()
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(countQ), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	page := sorted(withDetails(base), f).Limit(int64(f.Limit)).Offset(int64(f.Offset()))
	items, err := r.selectItems(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) FindAllUnpaged(ctx context.Context, f *dto.ItemFilters) ([]model.InventoryItem, error) {
	return r.selectItems(ctx, sorted(withDetails(filtered(f)), f))
}

func (r *PGRepository) FindIDs(ctx context.Context, f *dto.ItemFilters, limit int) ([]string, error) {
	b := sorted(filtered(f).Select("i.id"), f)
	if limit > 0 {
		b = b.Limit(int64(limit))
	}
	q, args := b.Build()
	conn := database.Conn(ctx, r.DB)

	ids := []string{}
	if err := sqlx.SelectContext(ctx, conn, &ids, conn.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select item ids: %w", err)
	}
	return ids, nil
}

func (r *PGRepository) selectItems(ctx context.Context, b *query.Builder) ([]model.InventoryItem, error) {
	q, args := b.Build()
	conn := database.Conn(ctx, r.DB)

	items := []model.InventoryItem{}
	if err := sqlx.SelectContext(ctx, conn, &items, conn.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	if err := r.attachTags(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) attachTags(ctx context.Context, items []model.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for n := range items {
		ids[n] = items[n].ID
		items[n].Tags = []model.TagRef{}
	}

	q, args, err := sqlx.In(`
        SELECT it.item_id, t.id, t.name
        FROM item_tags it
        JOIN tags t ON t.id = it.tag_id
        WHERE it.item_id IN (?)
        ORDER BY t.name, t.id
    `, ids)
	if err != nil {
		return fmt.Errorf("expand tag query: %w", err)
	}

	conn := database.Conn(ctx, r.DB)
	var rows []struct {
		ItemID string `db:"item_id"`
		model.TagRef
	}
	if err := sqlx.SelectContext(ctx, conn, &rows, conn.Rebind(q), args...); err != nil {
		return fmt.Errorf("select item tags: %w", err)
	}

	byItem := make(map[string][]model.TagRef, len(items))
	for _, row := range rows {
		byItem[row.ItemID] = append(byItem[row.ItemID], row.TagRef)
	}
	for n := range items {
		if tags, ok := byItem[items[n].ID]; ok {
			items[n].Tags = tags
		}
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, it *model.InventoryItem) error {
	q := `
        UPDATE items
        SET name = :name,
            specification = :specification,
            designer = :designer,
            quantity = :quantity,
            cost_price = :cost_price,
            list_price = :list_price,
            manufacturer_id = :manufacturer_id,
            category_id = :category_id,
            location_id = :location_id,
            unit_id = :unit_id,
            is_sold = :is_sold,
            sold_at = :sold_at,
            notes = :notes,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), q, it); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// DeleteMany removes the items and their child rows.
func (r *PGRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	conn := database.Conn(ctx, r.DB)
	for _, table := range []string{"item_tags", "item_images", "item_materials"} {
		q, args, err := sqlx.In(fmt.Sprintf(`DELETE FROM %s WHERE item_id IN (?)`, table), ids)
		if err != nil {
			return 0, fmt.Errorf("expand delete query: %w", err)
		}
		if _, err := conn.ExecContext(ctx, conn.Rebind(q), args...); err != nil {
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
	}

	q, args, err := sqlx.In(`DELETE FROM items WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("expand delete query: %w", err)
	}
	res, err := conn.ExecContext(ctx, conn.Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	return res.RowsAffected()
}

func (r *PGRepository) ReplaceTags(ctx context.Context, itemIDs, tagIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM item_tags WHERE item_id IN (?)`, itemIDs)
	if err != nil {
		return fmt.Errorf("expand delete query: %w", err)
	}
	conn := database.Conn(ctx, r.DB)
	if _, err := conn.ExecContext(ctx, conn.Rebind(q), args...); err != nil {
		return fmt.Errorf("delete item tags: %w", err)
	}
	return r.insertTags(ctx, itemIDs, tagIDs)
}

// insertTags attaches the cross product of itemIDs and tagIDs.
func (r *PGRepository) insertTags(ctx context.Context, itemIDs, tagIDs []string) error {
	if len(itemIDs) == 0 || len(tagIDs) == 0 {
		return nil
	}
	values := make([]string, 0, len(itemIDs)*len(tagIDs))
	args := make([]any, 0, 2*len(itemIDs)*len(tagIDs))
	for _, itemID := range itemIDs {
		for _, tagID := range tagIDs {
			values = append(values, "(?, ?)")
			args = append(args, itemID, tagID)
		}
	}
	conn := database.Conn(ctx, r.DB)
	q := "INSERT INTO item_tags (item_id, tag_id) VALUES " + strings.Join(values, ", ")
	if _, err := conn.ExecContext(ctx, conn.Rebind(q), args...); err != nil {
		return fmt.Errorf("insert item tags: %w", err)
	}
	return nil
}

func (r *PGRepository) BulkUpdateFields(ctx context.Context, ids []string, fields dto.ScalarUpdate, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var sets []string
	var args []any
	ref := func(col string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, col+" = ?")
		if *v == "" {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
	}
	ref("location_id", fields.LocationID)
	ref("manufacturer_id", fields.ManufacturerID)
	ref("category_id", fields.CategoryID)
	if fields.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *fields.Quantity)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now)

	where, whereArgs := query.In("id", ids).SQL()
	q := fmt.Sprintf("UPDATE items SET %s WHERE %s", strings.Join(sets, ", "), where)
	args = append(args, whereArgs...)

	conn := database.Conn(ctx, r.DB)
	res, err := conn.ExecContext(ctx, conn.Rebind(q), args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update items: %w", err)
	}
	return res.RowsAffected()
}

func (r *PGRepository) SetQuantity(ctx context.Context, id string, quantity int, now time.Time) error {
	conn := database.Conn(ctx, r.DB)
	q := conn.Rebind(`UPDATE items SET quantity = ?, updated_at = ? WHERE id = ?`)
	if _, err := conn.ExecContext(ctx, q, quantity, now, id); err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	return nil
}

// NextSKU advances the shared counter. Inside a transaction the row stays
// locked until commit, so concurrent creators never share a number.
func (r *PGRepository) NextSKU(ctx context.Context, itemType model.ItemType) (string, error) {
	conn := database.Conn(ctx, r.DB)
	if _, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE counters SET value = value + 1 WHERE name = ?`), skuCounter); err != nil {
		return "", fmt.Errorf("advance sku counter: %w", err)
	}
	var n int64
	if err := sqlx.GetContext(ctx, conn, &n, conn.Rebind(`SELECT value FROM counters WHERE name = ?`), skuCounter); err != nil {
		return "", fmt.Errorf("read sku counter: %w", err)
	}
	return fmt.Sprintf("%s%06d", itemType.SKUPrefix(), n), nil
}
