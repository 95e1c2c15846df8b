package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

var fieldLabels = []changelog.FieldLabel{
	{Field: "name", Label: "名前"},
	{Field: "sortOrder", Label: "表示順"},
}

type masterUseCase struct {
	repo     masterdata.Repository
	tx       database.TxManager
	recorder *changelog.Recorder
	clock    clock.Clock
	logger   logger.ZapLogger
}

func NewMasterUseCase(repo masterdata.Repository, tx database.TxManager, recorder *changelog.Recorder, clk clock.Clock, log logger.ZapLogger) masterdata.UseCase {
	return &masterUseCase{
		repo:     repo,
		tx:       tx,
		recorder: recorder,
		clock:    clk,
		logger:   log,
	}
}

func checkKind(kind model.MasterKind) error {
	if !kind.Valid() {
		return apperror.NotFound("unknown master data kind")
	}
	return nil
}

func (uc *masterUseCase) CreateMaster(ctx context.Context, kind model.MasterKind, input *dto.MasterInput, actor model.Actor) (*model.MasterData, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	m := &model.MasterData{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Kind:      kind,
		Name:      input.Name,
	}
	if kind.Ordered() {
		m.SortOrder = input.SortOrder
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.ensureNameFree(ctx, kind, m.Name, ""); err != nil {
			return err
		}
		if err := uc.repo.Create(ctx, m); err != nil {
			return err
		}
		return uc.recorder.RecordCreate(ctx, m, actor)
	})
	if err != nil {
		return nil, uc.fail(err, "failed to create master data", kind)
	}
	return m, nil
}

func (uc *masterUseCase) GetMaster(ctx context.Context, kind model.MasterKind, id string) (*model.MasterData, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	m, err := uc.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, uc.fail(err, "failed to get master data", kind)
	}
	if m == nil {
		return nil, apperror.NotFound(string(kind) + " not found")
	}
	return m, nil
}

func (uc *masterUseCase) ListMasters(ctx context.Context, kind model.MasterKind, filters *dto.MasterFilters) ([]model.MasterData, int, error) {
	if err := checkKind(kind); err != nil {
		return nil, 0, err
	}
	rows, count, err := uc.repo.FindAll(ctx, kind, filters)
	if err != nil {
		return nil, 0, uc.fail(err, "failed to list master data", kind)
	}
	return rows, count, nil
}

func (uc *masterUseCase) UpdateMaster(ctx context.Context, kind model.MasterKind, id string, input *dto.MasterInput, actor model.Actor) (*model.MasterData, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var after *model.MasterData
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := uc.repo.FindByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if before == nil {
			return apperror.NotFound(string(kind) + " not found")
		}
		if err := uc.ensureNameFree(ctx, kind, input.Name, id); err != nil {
			return err
		}

		m := *before
		m.Name = input.Name
		if kind.Ordered() && input.SortOrder != nil {
			m.SortOrder = input.SortOrder
		}
		m.UpdatedAt = uc.clock.Now()
		if err := uc.repo.Update(ctx, &m); err != nil {
			return err
		}
		after = &m
		_, err = uc.recorder.RecordUpdate(ctx, before, after, fieldLabels, actor)
		return err
	})
	if err != nil {
		return nil, uc.fail(err, "failed to update master data", kind)
	}
	return after, nil
}

// DeleteMaster logs the master row only. Item references to it are cleared
// by the schema's ON DELETE SET NULL and produce no item entries.
func (uc *masterUseCase) DeleteMaster(ctx context.Context, kind model.MasterKind, id string, actor model.Actor) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := uc.repo.FindByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if m == nil {
			return apperror.NotFound(string(kind) + " not found")
		}
		if err := uc.repo.Delete(ctx, kind, id); err != nil {
			return err
		}
		return uc.recorder.RecordDelete(ctx, m, actor)
	})
	if err != nil {
		return uc.fail(err, "failed to delete master data", kind)
	}
	return nil
}

func (uc *masterUseCase) ReorderMaterialTypes(ctx context.Context, ids []string, actor model.Actor) error {
	if len(ids) == 0 {
		return apperror.Validation("invalid reorder", apperror.FieldError{Field: "ids", Message: "is required"})
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			return apperror.Validation("invalid reorder", apperror.FieldError{Field: "ids", Message: "must be unique and non-empty"})
		}
		seen[id] = true
	}

	kind := model.KindMaterialType
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, id := range ids {
			before, err := uc.repo.FindByID(ctx, kind, id)
			if err != nil {
				return err
			}
			if before == nil {
				return apperror.NotFound("material_type not found: " + id)
			}
			order := i + 1
			if err := uc.repo.SetSortOrder(ctx, kind, id, order); err != nil {
				return err
			}
			after := *before
			after.SortOrder = &order
			if _, err := uc.recorder.RecordUpdate(ctx, before, &after, fieldLabels, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uc.fail(err, "failed to reorder material types", kind)
	}
	return nil
}

func (uc *masterUseCase) ensureNameFree(ctx context.Context, kind model.MasterKind, name, selfID string) error {
	existing, err := uc.repo.FindByName(ctx, kind, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.Validation("name already exists", apperror.FieldError{Field: "name", Message: "already exists"})
	}
	return nil
}

// fail passes taxonomy errors through and wraps storage failures.
func (uc *masterUseCase) fail(err error, msg string, kind model.MasterKind) error {
	if apperror.KindOf(err) != apperror.KindUnexpected {
		return err
	}
	uc.logger.Error(msg, zap.String("kind", string(kind)), zap.Error(err))
	return apperror.Unexpected(msg, err)
}
