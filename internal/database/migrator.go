package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate prepares the store schema: tern migrations on postgres, indexes on
// mongo, nothing for memory.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return migratePostgres(ctx, logger, cfg)
	case config.DriverMongo:
		db, err := New(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer db.Close()
		return EnsureIndexes(ctx, logger, db.Mongo.Collection(cfg.Database.Collection))
	default:
		logger.Info().Str("driver", cfg.Database.Driver).Msg("nothing to migrate")
		return nil
	}
}

func migratePostgres(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, PostgresDSN(cfg.Database))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

// ParcelIndexes are the indexes backing the list query: filter on
// created_by, newest createdAt first.
func ParcelIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_by_1_createdAt_-1"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_-1"),
		},
	}
}

// EnsureIndexes creates the parcel indexes. Existing indexes are left alone.
func EnsureIndexes(ctx context.Context, logger *zerolog.Logger, coll *mongo.Collection) error {
	names, err := coll.Indexes().CreateMany(ctx, ParcelIndexes())
	if err != nil {
		return fmt.Errorf("creating parcel indexes: %w", err)
	}
	logger.Info().Strs("indexes", names).Msg("parcel indexes ensured")
	return nil
}
