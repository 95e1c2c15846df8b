package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/query"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, e *model.ChangeLogEntry) error {
	q := `
        INSERT INTO change_logs (
            id, entity_type, entity_id, entity_name, entity_sku, action,
            changes, user_id, user_name, item_type, created_at
        )
        VALUES (
            :id, :entity_type, :entity_id, :entity_name, :entity_sku, :action,
            :changes, :user_id, :user_name, :item_type, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.DB), q, e); err != nil {
		return fmt.Errorf("insert change log: %w", err)
	}
	return nil
}

// FindAll returns entries newest first.
func (r *PGRepository) FindAll(ctx context.Context, f *changelog.Filters) ([]model.ChangeLogEntry, error) {
	b := query.From("change_logs").Select("*")
	if f.EntityType != "" {
		b = b.Where(query.Eq("entity_type", f.EntityType))
	}
	if f.EntityID != "" {
		b = b.Where(query.Eq("entity_id", f.EntityID))
	}
	b = b.OrderBy("created_at", query.Desc).OrderBy("id", query.Desc)
	if f.Limit > 0 {
		b = b.Limit(int64(f.Limit))
	}

	q, args := b.Build()
	conn := database.Conn(ctx, r.DB)
	entries := []model.ChangeLogEntry{}
	if err := sqlx.SelectContext(ctx, conn, &entries, conn.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select change logs: %w", err)
	}
	return entries, nil
}
