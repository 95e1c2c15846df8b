package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/importer"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/metrics"
	"github.com/fekuna/omnipos-inventory-service/internal/selection"

	clH "github.com/fekuna/omnipos-inventory-service/internal/changelog/handler"
	clRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/changelog/repository"
	clUCPkg "github.com/fekuna/omnipos-inventory-service/internal/changelog/usecase"

	importH "github.com/fekuna/omnipos-inventory-service/internal/importer/handler"

	itemH "github.com/fekuna/omnipos-inventory-service/internal/item/handler"
	itemRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/item/repository"
	itemUCPkg "github.com/fekuna/omnipos-inventory-service/internal/item/usecase"

	mdH "github.com/fekuna/omnipos-inventory-service/internal/masterdata/handler"
	mdRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/masterdata/repository"
	mdUCPkg "github.com/fekuna/omnipos-inventory-service/internal/masterdata/usecase"

	selH "github.com/fekuna/omnipos-inventory-service/internal/selection/handler"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database
	db, err := database.Open(ctx, &database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			appLogger.Fatal("Could not apply schema", zap.Error(err))
		}
		appLogger.Info("Schema applied")
	}

	// 4. Initialize Selection Store
	var selStore selection.Store = selection.NewMemoryStore()
	if cfg.Selection.Store == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		selStore = selection.NewRedisStore(redisClient, time.Duration(cfg.Selection.TTLSeconds)*time.Second)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Repositories
	m := metrics.New()
	clk := clock.NewRealClock()
	tx := database.NewTransactor(db)

	clRepo := clRepoPkg.NewPGRepository(db)
	mdRepo := mdRepoPkg.NewPGRepository(db)
	itemRepo := itemRepoPkg.NewPGRepository(db)

	recorder := changelog.NewRecorder(clRepo, clk)
	recorder.OnWrite(m.ChangeLog)

	// 6. Initialize UseCases
	clUC := clUCPkg.NewChangeLogUseCase(clRepo, appLogger)
	mdUC := mdUCPkg.NewMasterUseCase(mdRepo, tx, recorder, clk, appLogger)
	itemUC := itemUCPkg.NewItemUseCase(itemRepo, mdRepo, tx, recorder, clk, appLogger, itemUCPkg.Options{
		MaxBulkIDs:  cfg.Bulk.MaxIDs,
		MaxPageSize: cfg.Pagination.MaxPageSize,
		Metrics:     m,
	})
	csvImporter := importer.NewImporter(itemUC, mdUC, mdRepo, appLogger, m)
	selSvc := selection.NewService(selStore, itemUC, cfg.Selection.SelectAllLimit, appLogger)

	// 7. Initialize Handlers
	itemHandler := itemH.NewItemHandler(itemUC, appLogger, cfg.Pagination.DefaultLimit)

	mux := http.NewServeMux()
	itemHandler.Register(mux)
	importH.NewImportHandler(csvImporter, itemHandler, appLogger, cfg.Import.MaxUploadBytes).Register(mux)
	mdH.NewMasterHandler(mdUC, appLogger).Register(mux)
	clH.NewChangeLogHandler(clUC, appLogger).Register(mux)
	selH.NewSelectionHandler(selSvc, itemHandler, appLogger).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", m.Handler())

	httpServer := &http.Server{
		Addr:         normalizePort(cfg.Server.HTTPPort),
		Handler:      httpx.Chain(mux, httpx.AccessLog(appLogger), auth.Middleware(appLogger, "/healthz", "/metrics"), m.Middleware),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 8. Start gRPC Health Server
	lis, err := net.Listen("tcp", normalizePort(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
