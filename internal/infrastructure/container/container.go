// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/application/consult"
	"github.com/daidai-0318/nanimeshi-web/internal/application/meal"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/ai/groq"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/config"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/http/apiserver"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/monitoring"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/file"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/gormkv"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/localstore"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/memory"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/persistence/redis"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StorageModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// StorageModule provides the key-value store selected by configuration.
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.KVStore, error) {
		switch cfg.Storage.Backend {
		case config.BackendFile:
			log.Info("Using file storage", zap.String("path", cfg.Storage.Path))
			return file.NewKVStore(cfg.Storage.Path)
		case config.BackendMemory:
			log.Info("Using in-memory storage, data is lost on exit")
			return memory.NewKVStore(), nil
		case config.BackendRedis:
			log.Info("Using Redis storage",
				zap.String("host", cfg.Redis.Host),
				zap.Int("port", cfg.Redis.Port),
			)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return redis.NewKVStore(ctx, redis.Config{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				Database: cfg.Redis.Database,
			}, log)
		case config.BackendSQLite:
			log.Info("Using SQLite storage", zap.String("path", cfg.Storage.Path))
			return gormkv.NewKVStore(cfg.Storage.Path)
		default:
			return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
		}
	},
)

// RepositoryModule provides the store implementations over the
// key-value backend.
var RepositoryModule = fx.Provide(
	fx.Annotate(
		localstore.NewCredentialStore,
		fx.As(new(outbound.CredentialRepository)),
	),
	fx.Annotate(
		localstore.NewMealStore,
		fx.As(new(outbound.MealRepository)),
	),
	fx.Annotate(
		localstore.NewFavoriteStore,
		fx.As(new(outbound.FavoriteRepository)),
	),
	fx.Annotate(
		localstore.NewShoppingStore,
		fx.As(new(outbound.ShoppingListRepository)),
	),
	fx.Annotate(
		localstore.NewPreferenceStore,
		fx.As(new(outbound.PreferenceRepository)),
	),
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	monitoring.NewMetrics,

	func(cfg *config.Config, credentials outbound.CredentialRepository, metrics *monitoring.Metrics, log *zap.Logger) outbound.AIService {
		return groq.NewClient(groq.Config{
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, credentials, metrics, log)
	},

	consult.NewConsultService,

	meal.NewMealService,
	func(s *meal.MealService) inbound.MealService { return s },
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	apiserver.NewAPIServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	kv outbound.KVStore,
	mealService *meal.MealService,
	server *apiserver.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting nanimeshi",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("storage", cfg.Storage.Backend),
			)

			go func() {
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down nanimeshi")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			// Let in-flight nutrition estimations land before the
			// store goes away.
			mealService.WaitForEnrichment()

			if closer, ok := kv.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					log.Error("Failed to close storage", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
