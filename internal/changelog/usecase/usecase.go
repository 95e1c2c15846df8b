package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type changeLogUseCase struct {
	repo   changelog.Repository
	logger logger.ZapLogger
}

func NewChangeLogUseCase(repo changelog.Repository, log logger.ZapLogger) changelog.UseCase {
	return &changeLogUseCase{repo: repo, logger: log}
}

func (uc *changeLogUseCase) ListChangeLogs(ctx context.Context, filters *changelog.Filters) ([]model.ChangeLogEntry, error) {
	f := *filters
	if f.Limit < 1 || f.Limit > MaxLimit {
		return nil, apperror.Validation("invalid query", apperror.FieldError{Field: "limit", Message: "must be between 1 and 500"})
	}

	entries, err := uc.repo.FindAll(ctx, &f)
	if err != nil {
		uc.logger.Error("failed to list change logs", zap.Error(err))
		return nil, apperror.Unexpected("failed to list change logs", err)
	}
	return entries, nil
}
