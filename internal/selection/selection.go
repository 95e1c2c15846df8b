// Package selection tracks the ids a user has picked in a list view, so a
// selection survives navigation and can drive bulk operations.
package selection

import (
	"context"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
)

const DefaultSelectAllLimit = 10000

type View string

const (
	ViewItems        View = "items"
	ViewProducts     View = "products"
	ViewConsignments View = "consignments"
)

func (v View) Valid() bool {
	return v == ViewItems || v == ViewProducts || v == ViewConsignments
}

// Key is the storage key of one user's selection in v.
func Key(v View, userID string) string {
	return "selection:" + string(v) + ":" + userID
}

// IDLister returns the ids matching filters, at most limit of them.
type IDLister interface {
	ListItemIDs(ctx context.Context, filters *dto.ItemFilters, limit int) ([]string, error)
}

type Service struct {
	store  Store
	items  IDLister
	limit  int
	logger logger.ZapLogger
}

func NewService(store Store, items IDLister, selectAllLimit int, log logger.ZapLogger) *Service {
	if selectAllLimit <= 0 {
		selectAllLimit = DefaultSelectAllLimit
	}
	return &Service{store: store, items: items, limit: selectAllLimit, logger: log}
}

func (s *Service) Get(ctx context.Context, v View, userID string) ([]string, error) {
	if err := check(v, userID); err != nil {
		return nil, err
	}
	ids, err := s.store.Get(ctx, Key(v, userID))
	if err != nil {
		return nil, s.fail(err, "failed to read selection")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Toggle adds id when it is not selected and removes it otherwise.
func (s *Service) Toggle(ctx context.Context, v View, userID, id string) ([]string, error) {
	if id == "" {
		return nil, apperror.Validation("invalid selection", apperror.FieldError{Field: "id", Message: "is required"})
	}
	ids, err := s.Get(ctx, v, userID)
	if err != nil {
		return nil, err
	}
	if i := indexOf(ids, id); i >= 0 {
		ids = append(ids[:i], ids[i+1:]...)
	} else {
		ids = append(ids, id)
	}
	return s.save(ctx, v, userID, ids)
}

// TogglePage deselects every id of the page when all of them are selected,
// and selects the missing ones otherwise.
func (s *Service) TogglePage(ctx context.Context, v View, userID string, page []string) ([]string, error) {
	ids, err := s.Get(ctx, v, userID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	all := true
	for _, id := range page {
		if !selected[id] {
			all = false
			break
		}
	}

	if all {
		remove := make(map[string]bool, len(page))
		for _, id := range page {
			remove[id] = true
		}
		kept := ids[:0]
		for _, id := range ids {
			if !remove[id] {
				kept = append(kept, id)
			}
		}
		ids = kept
	} else {
		for _, id := range page {
			if id != "" && !selected[id] {
				selected[id] = true
				ids = append(ids, id)
			}
		}
	}
	return s.save(ctx, v, userID, ids)
}

// SelectAllMatching replaces the selection with every id matching filters,
// capped at the select-all limit.
func (s *Service) SelectAllMatching(ctx context.Context, v View, userID string, filters *dto.ItemFilters) ([]string, error) {
	if err := check(v, userID); err != nil {
		return nil, err
	}
	ids, err := s.items.ListItemIDs(ctx, filters, s.limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == s.limit {
		s.logger.Warn("select all hit the limit", zap.String("view", string(v)), zap.Int("limit", s.limit))
	}
	return s.save(ctx, v, userID, ids)
}

func (s *Service) Clear(ctx context.Context, v View, userID string) error {
	if err := check(v, userID); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, Key(v, userID)); err != nil {
		return s.fail(err, "failed to clear selection")
	}
	return nil
}

// save writes ids, clearing the key entirely when the selection is empty.
func (s *Service) save(ctx context.Context, v View, userID string, ids []string) ([]string, error) {
	key := Key(v, userID)
	if len(ids) == 0 {
		if err := s.store.Clear(ctx, key); err != nil {
			return nil, s.fail(err, "failed to clear selection")
		}
		return []string{}, nil
	}
	if err := s.store.Set(ctx, key, ids); err != nil {
		return nil, s.fail(err, "failed to save selection")
	}
	return ids, nil
}

func (s *Service) fail(err error, msg string) error {
	s.logger.Error(msg, zap.Error(err))
	return apperror.Unexpected(msg, err)
}

func check(v View, userID string) error {
	if !v.Valid() {
		return apperror.NotFound("unknown selection view")
	}
	if userID == "" {
		return apperror.Unauthenticated("missing user context")
	}
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
