// Package database opens and closes the connection to the parcel store.
//
// The driver is picked by database.driver:
//   - mongo: a mongo.Client with Stable API v1, command monitoring and
//     optional New Relic instrumentation (nrmongo)
//   - postgres: a pgx connection pool with tracelog and nrpgx5
//   - memory: nothing to connect, parcels live in the process
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parcelhub/parcel-server/internal/config"
	loggerConfig "github.com/parcelhub/parcel-server/internal/logger"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Database is the shared store handle. Exactly one of Client or Pool is set,
// or neither for the memory driver.
type Database struct {
	Driver string

	// Client and Mongo are set for the mongo driver. Mongo is the configured
	// database (parcelDB by default).
	Client *mongo.Client
	Mongo  *mongo.Database

	// Pool is set for the postgres driver.
	Pool *pgxpool.Pool

	log *zerolog.Logger
}

// DatabasePingTimeout is the number of seconds to wait for the startup ping.
const DatabasePingTimeout = 10

// New connects to the configured store and pings it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		return newMongo(cfg, logger, loggerService)
	case config.DriverPostgres:
		return newPostgres(cfg, logger, loggerService)
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory parcel store, data is lost on restart")
		return &Database{Driver: config.DriverMemory, log: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Ping checks the store is reachable.
func (db *Database) Ping(ctx context.Context) error {
	switch {
	case db.Client != nil:
		return db.Client.Ping(ctx, nil)
	case db.Pool != nil:
		return db.Pool.Ping(ctx)
	default:
		return nil
	}
}

// Close releases the store connections.
func (db *Database) Close() error {
	switch {
	case db.Client != nil:
		db.log.Info().Msg("closing mongo client")
		ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
		defer cancel()
		return db.Client.Disconnect(ctx)
	case db.Pool != nil:
		db.log.Info().Msg("closing database connection pool")
		db.Pool.Close()
	}
	return nil
}
