package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	clrepo "github.com/fekuna/omnipos-inventory-service/internal/changelog/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/item"
	itemrepo "github.com/fekuna/omnipos-inventory-service/internal/item/repository"
	itemuc "github.com/fekuna/omnipos-inventory-service/internal/item/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata"
	mdrepo "github.com/fekuna/omnipos-inventory-service/internal/masterdata/repository"
	mduc "github.com/fekuna/omnipos-inventory-service/internal/masterdata/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Actor is the user every fixture mutation runs as.
var Actor = model.Actor{UserID: "u-test", UserName: "Test User"}

// App wires the use cases over one throwaway database.
type App struct {
	DB        *sqlx.DB
	Clock     *clock.MockClock
	TxManager database.TxManager
	Recorder  *changelog.Recorder

	ItemRepo   *itemrepo.PGRepository
	MasterRepo *mdrepo.PGRepository
	LogRepo    *clrepo.PGRepository

	Items   item.UseCase
	Masters masterdata.UseCase
}

func NewApp(t *testing.T) *App {
	t.Helper()
	db := NewDB(t)
	clk := clock.NewMockClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	tx := database.NewTransactor(db)
	logRepo := clrepo.NewPGRepository(db)
	recorder := changelog.NewRecorder(logRepo, clk)
	itemRepo := itemrepo.NewPGRepository(db)
	masterRepo := mdrepo.NewPGRepository(db)
	log := logger.NewNop()

	return &App{
		DB:         db,
		Clock:      clk,
		TxManager:  tx,
		Recorder:   recorder,
		ItemRepo:   itemRepo,
		MasterRepo: masterRepo,
		LogRepo:    logRepo,
		Items:      itemuc.NewItemUseCase(itemRepo, masterRepo, tx, recorder, clk, log, itemuc.Options{MaxBulkIDs: 100, MaxPageSize: 100}),
		Masters:    mduc.NewMasterUseCase(masterRepo, tx, recorder, clk, log),
	}
}

// Master inserts a master data row directly, bypassing the change log.
func (a *App) Master(t *testing.T, kind model.MasterKind, name string) *model.MasterData {
	t.Helper()
	now := a.Clock.Now()
	m := &model.MasterData{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Kind:      kind,
		Name:      name,
	}
	require.NoError(t, a.MasterRepo.Create(context.Background(), m))
	return m
}

// Logs returns the change-log entries of one entity, newest first.
func (a *App) Logs(t *testing.T, entityID string) []model.ChangeLogEntry {
	t.Helper()
	entries, err := a.LogRepo.FindAll(context.Background(), &changelog.Filters{EntityID: entityID})
	require.NoError(t, err)
	return entries
}
