package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/controller"
	"CapIot.readings/internal/metrics"
	"CapIot.readings/internal/middleware"
	"CapIot.readings/internal/repository"
	"CapIot.readings/internal/routes"
	"CapIot.readings/internal/service"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const closeTimeout = 5 * time.Second

// App wires the readings API dependencies.
type App struct {
	handler http.Handler
	server  *Server
	repo    repository.Repository
	logger  *zap.Logger
}

// New connects to the configured store and builds the HTTP stack.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("store connected",
		zap.String("backend", cfg.StoreBackend),
		zap.String("account", cfg.AccountID),
	)
	return NewWithRepository(cfg, store, logger), nil
}

// NewWithRepository builds the HTTP stack around an already opened store.
func NewWithRepository(cfg config.Config, store repository.Repository, logger *zap.Logger) *App {
	m := metrics.New()
	repo := repository.NewInstrumentedRepository(store, m, logger)

	dataService := service.NewDataService(repo, logger)
	dataController := controller.NewDataController(dataService, logger)
	systemController := controller.NewSystemController(cfg.BaseURL)

	router := mux.NewRouter()
	router.Use(middleware.Metrics(m))
	routes.RegisterRoutes(router, dataController, systemController, m.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})
	handler := middleware.RequestID(middleware.Logging(logger)(c.Handler(router)))

	return &App{
		handler: handler,
		server:  NewServer(cfg.Address(), handler, logger),
		repo:    repo,
		logger:  logger,
	}
}

// OpenRepository connects the store selected by cfg.StoreBackend.
func OpenRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Repository, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		return repository.NewFirestoreRepository(ctx, cfg.Firestore, cfg.AccountID)
	case config.BackendMongoDB:
		return repository.NewMongoRepository(ctx, cfg.Mongo, cfg.AccountID)
	case config.BackendInfluxDB:
		return repository.NewInfluxDBRepository(ctx, cfg.Influx, cfg.AccountID, logger)
	case config.BackendRedis:
		client, err := repository.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisRepository(client, cfg.AccountID), nil
	case config.BackendMemory:
		logger.Warn("using in-memory store, readings are lost on restart")
		return repository.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts the HTTP server and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases the store connection.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.repo.Close(ctx); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}
