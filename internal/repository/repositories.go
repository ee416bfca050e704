package repository

import (
	"fmt"

	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/parcelhub/parcel-server/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Parcels ParcelStore
}

// NewRepositories picks the parcel store matching the connected database.
func NewRepositories(s *server.Server) (*Repositories, error) {
	var parcels ParcelStore

	switch s.DB.Driver {
	case config.DriverMongo:
		parcels = NewMongoParcelStore(s.DB.Mongo.Collection(s.Config.Database.Collection))
	case config.DriverPostgres:
		parcels = NewPostgresParcelStore(s.DB.Pool)
	case config.DriverMemory:
		parcels = NewMemoryParcelStore()
	default:
		return nil, fmt.Errorf("no parcel store for driver %q", s.DB.Driver)
	}

	return &Repositories{Parcels: parcels}, nil
}
