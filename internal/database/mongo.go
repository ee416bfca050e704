package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/parcelhub/parcel-server/internal/config"
	loggerConfig "github.com/parcelhub/parcel-server/internal/logger"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURI builds the connection string.
//
// URI wins when set. Otherwise a host without port is treated as an Atlas
// cluster (mongodb+srv) and a host with port as a plain deployment.
func MongoURI(cfg config.DatabaseConfig) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	var userInfo string
	if cfg.User != "" {
		userInfo = url.UserPassword(cfg.User, cfg.Password).String() + "@"
	}

	query := url.Values{}
	query.Set("retryWrites", "true")
	query.Set("w", "majority")
	if cfg.AppName != "" {
		query.Set("appName", cfg.AppName)
	}

	if cfg.Port != 0 {
		return fmt.Sprintf("mongodb://%s%s:%s/?%s", userInfo, cfg.Host, strconv.Itoa(cfg.Port), query.Encode())
	}
	return fmt.Sprintf("mongodb+srv://%s%s/?%s", userInfo, cfg.Host, query.Encode())
}

func newMongo(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(MongoURI(cfg.Database)).
		SetServerAPIOptions(serverAPI).
		SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns)).
		SetMaxConnIdleTime(time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second)

	// Command logging is very noisy, which is why it's only on in local.
	var monitor *event.CommandMonitor
	if cfg.Primary.Env == "local" {
		monitor = newCommandLogger(logger, cfg.Observability.Logging.SlowQueryThreshold)
	}
	if loggerService.GetApplication() != nil {
		monitor = nrmongo.NewCommandMonitor(monitor)
	}
	if monitor != nil {
		opts.SetMonitor(monitor)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info().Str("database", cfg.Database.Name).Msg("connected to mongo")

	return &Database{
		Driver: config.DriverMongo,
		Client: client,
		Mongo:  client.Database(cfg.Database.Name),
		log:    logger,
	}, nil
}

// newCommandLogger logs every finished command at debug, or at warn when it
// took longer than slow.
func newCommandLogger(logger *zerolog.Logger, slow time.Duration) *event.CommandMonitor {
	log := logger.With().Str("database", "mongo").Logger()

	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			e := log.Debug()
			if slow > 0 && evt.Duration > slow {
				e = log.Warn().Bool("slow", true)
			}
			e.Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Msg("mongo command")
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			log.Error().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Str("failure", evt.Failure).
				Msg("mongo command failed")
		},
	}
}
