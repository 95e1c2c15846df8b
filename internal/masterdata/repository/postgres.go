package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/query"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func columns(kind model.MasterKind) []string {
	cols := []string{"id", "name", "created_at", "updated_at"}
	if kind.Ordered() {
		cols = append(cols, "sort_order")
	}
	return cols
}

func (r *PGRepository) Create(ctx context.Context, m *model.MasterData) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`, m.Kind.Table())
	if m.Kind.Ordered() {
		q = fmt.Sprintf(`INSERT INTO %s (id, name, sort_order, created_at, updated_at) VALUES (:id, :name, :sort_order, :created_at, :updated_at)`, m.Kind.Table())
	}
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), q, m); err != nil {
		return fmt.Errorf("insert %s: %w", m.Kind, err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, kind model.MasterKind, id string) (*model.MasterData, error) {
	return r.findOne(ctx, kind, query.Eq("id", id))
}

func (r *PGRepository) FindByName(ctx context.Context, kind model.MasterKind, name string) (*model.MasterData, error) {
	return r.findOne(ctx, kind, query.Eq("name", name))
}

func (r *PGRepository) findOne(ctx context.Context, kind model.MasterKind, cond query.Condition) (*model.MasterData, error) {
	q, args := query.From(kind.Table()).Select(columns(kind)...).Where(cond).Limit(1).Build()
	conn := database.Conn(ctx, r.DB)

	var m model.MasterData
	if err := sqlx.GetContext(ctx, conn, &m, conn.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select %s: %w", kind, err)
	}
	m.Kind = kind
	return &m, nil
}

func (r *PGRepository) FindAll(ctx context.Context, kind model.MasterKind, f *dto.MasterFilters) ([]model.MasterData, int, error) {
	conn := database.Conn(ctx, r.DB)
	b := query.From(kind.Table())
	if f.Search != "" {
		b = b.Where(query.LikeAny(f.Search, "name"))
	}

	var count int
	countQ, countArgs := b.Count().Build()
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(countQ), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", kind, err)
	}

	b = b.Select(columns(kind)...)
	if kind.Ordered() {
		// Unranked rows sort after ranked ones.
		b = b.OrderBy("CASE WHEN sort_order IS NULL THEN 1 ELSE 0 END", query.Asc).OrderBy("sort_order", query.Asc)
	}
	b = b.OrderBy("name", query.Asc).OrderBy("id", query.Asc)
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		b = b.Limit(int64(f.Limit)).Offset(int64((page - 1) * f.Limit))
	}

	q, args := b.Build()
	rows := []model.MasterData{}
	if err := sqlx.SelectContext(ctx, conn, &rows, conn.Rebind(q), args...); err != nil {
		return nil, 0, fmt.Errorf("select %s: %w", kind, err)
	}
	for i := range rows {
		rows[i].Kind = kind
	}
	return rows, count, nil
}

func (r *PGRepository) Update(ctx context.Context, m *model.MasterData) error {
	q := fmt.Sprintf(`UPDATE %s SET name = :name, updated_at = :updated_at WHERE id = :id`, m.Kind.Table())
	if m.Kind.Ordered() {
		q = fmt.Sprintf(`UPDATE %s SET name = :name, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`, m.Kind.Table())
	}
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), q, m); err != nil {
		return fmt.Errorf("update %s: %w", m.Kind, err)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, kind model.MasterKind, id string) error {
	conn := database.Conn(ctx, r.DB)
	if kind == model.KindTag {
		if _, err := conn.ExecContext(ctx, conn.Rebind(`DELETE FROM item_tags WHERE tag_id = ?`), id); err != nil {
			return fmt.Errorf("detach tag: %w", err)
		}
	}
	if col := referenceColumn(kind); col != "" {
		q := fmt.Sprintf(`UPDATE items SET %s = NULL WHERE %s = ?`, col, col)
		if _, err := conn.ExecContext(ctx, conn.Rebind(q), id); err != nil {
			return fmt.Errorf("detach %s: %w", kind, err)
		}
	}
	if kind == model.KindMaterialType {
		if _, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE item_materials SET material_type_id = NULL WHERE material_type_id = ?`), id); err != nil {
			return fmt.Errorf("detach material type: %w", err)
		}
	}

	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, kind.Table())
	if _, err := conn.ExecContext(ctx, conn.Rebind(q), id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// referenceColumn is the items column pointing at the kind, if any.
func referenceColumn(kind model.MasterKind) string {
	switch kind {
	case model.KindManufacturer:
		return "manufacturer_id"
	case model.KindCategory:
		return "category_id"
	case model.KindLocation:
		return "location_id"
	case model.KindUnit:
		return "unit_id"
	}
	return ""
}

func (r *PGRepository) NameIndex(ctx context.Context, kind model.MasterKind) (map[string]string, error) {
	conn := database.Conn(ctx, r.DB)
	var rows []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	q := fmt.Sprintf(`SELECT id, name FROM %s`, kind.Table())
	if err := sqlx.SelectContext(ctx, conn, &rows, q); err != nil {
		return nil, fmt.Errorf("select %s names: %w", kind, err)
	}
	index := make(map[string]string, len(rows))
	for _, row := range rows {
		index[row.Name] = row.ID
	}
	return index, nil
}

func (r *PGRepository) CountExisting(ctx context.Context, kind model.MasterKind, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	conn := database.Conn(ctx, r.DB)
	q, args := query.From(kind.Table()).Count().Where(query.In("id", ids)).Build()

	var n int
	if err := sqlx.GetContext(ctx, conn, &n, conn.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

func (r *PGRepository) SetSortOrder(ctx context.Context, kind model.MasterKind, id string, order int) error {
	if !kind.Ordered() {
		return fmt.Errorf("%s has no sort order", kind)
	}
	conn := database.Conn(ctx, r.DB)
	q := fmt.Sprintf(`UPDATE %s SET sort_order = ? WHERE id = ?`, kind.Table())
	if _, err := conn.ExecContext(ctx, conn.Rebind(q), order, id); err != nil {
		return fmt.Errorf("set sort order: %w", err)
	}
	return nil
}
