package initializers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/store"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectToDb opens the configured store and prepares its schema or indexes
func ConnectToDb(ctx context.Context, cfg config.DBConfig, log *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	case "mongo":
		return connectMongo(ctx, cfg, log)
	default:
		return connectSQLite(cfg, log)
	}
}

func connectSQLite(cfg config.DBConfig, log *slog.Logger) (store.Store, error) {
	log.Info("connecting to database", "driver", "sqlite", "dsn", cfg.URL)

	db, err := gorm.Open(sqlite.Open(cfg.URL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := store.NewGormStore(db)
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func connectMongo(ctx context.Context, cfg config.DBConfig, log *slog.Logger) (store.Store, error) {
	log.Info("connecting to database", "driver", "mongo", "db", cfg.MongoDB)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := store.NewMongoStore(client, cfg.MongoDB)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}
