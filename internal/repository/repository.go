// Package repository handles all interactions with the parcel store.
//
// ParcelStore is the data-access contract the service layer depends on.
// There is one implementation per database driver; all of them return
// model.ErrParcelNotFound for a missing parcel and wrap every driver failure
// with dberr.Wrap.
package repository

import (
	"context"

	"github.com/parcelhub/parcel-server/internal/model"
)

// ParcelFilter narrows Find. An empty CreatedBy matches every parcel.
type ParcelFilter struct {
	CreatedBy string
}

// ParcelStore persists parcel documents.
type ParcelStore interface {
	// Find returns the matching parcels ordered by createdAt, newest first.
	// Parcels without createdAt come last.
	Find(ctx context.Context, filter ParcelFilter) ([]model.Parcel, error)

	FindByID(ctx context.Context, id model.ParcelID) (*model.Parcel, error)

	// Insert stores doc as-is and assigns a new id. A client supplied _id is
	// ignored.
	Insert(ctx context.Context, doc model.Document) (*model.InsertResult, error)

	// Delete removes at most one parcel. Deleting a missing id is not an
	// error: DeletedCount is 0.
	Delete(ctx context.Context, id model.ParcelID) (*model.DeleteResult, error)

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}

var (
	_ ParcelStore = (*MongoParcelStore)(nil)
	_ ParcelStore = (*PostgresParcelStore)(nil)
	_ ParcelStore = (*MemoryParcelStore)(nil)
)
