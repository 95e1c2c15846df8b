package changelog

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	ListChangeLogs(ctx context.Context, filters *Filters) ([]model.ChangeLogEntry, error)
}
