package repository

import (
	"context"
	"sync"

	"github.com/parcelhub/parcel-server/internal/dberr"
	"github.com/parcelhub/parcel-server/internal/model"
)

// MemoryParcelStore keeps parcels in process memory. Documents are copied on
// the way in and out.
type MemoryParcelStore struct {
	mu      sync.RWMutex
	parcels map[model.ParcelID]model.Document
	order   []model.ParcelID
}

func NewMemoryParcelStore() *MemoryParcelStore {
	return &MemoryParcelStore{parcels: map[model.ParcelID]model.Document{}}
}

func (r *MemoryParcelStore) Find(ctx context.Context, filter ParcelFilter) ([]model.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, dberr.Wrap("parcels.find", err)
	}

	r.mu.RLock()
	parcels := make([]model.Parcel, 0, len(r.order))
	for _, id := range r.order {
		doc := r.parcels[id]
		if filter.CreatedBy != "" {
			if createdBy, ok := doc.CreatedBy(); !ok || createdBy != filter.CreatedBy {
				continue
			}
		}
		parcels = append(parcels, model.Parcel{ID: id, Fields: doc.Clone()})
	}
	r.mu.RUnlock()

	model.SortByCreatedAtDesc(parcels)
	return parcels, nil
}

func (r *MemoryParcelStore) FindByID(ctx context.Context, id model.ParcelID) (*model.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, dberr.Wrap("parcels.find_one", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.parcels[id]
	if !ok {
		return nil, model.ErrParcelNotFound
	}
	return &model.Parcel{ID: id, Fields: doc.Clone()}, nil
}

func (r *MemoryParcelStore) Insert(ctx context.Context, doc model.Document) (*model.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, dberr.Wrap("parcels.insert", err)
	}

	id := model.NewParcelID()
	stored := doc.Without(model.FieldID).Clone()

	r.mu.Lock()
	r.parcels[id] = stored
	r.order = append(r.order, id)
	r.mu.Unlock()

	return &model.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *MemoryParcelStore) Delete(ctx context.Context, id model.ParcelID) (*model.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, dberr.Wrap("parcels.delete", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parcels[id]; !ok {
		return &model.DeleteResult{Acknowledged: true, DeletedCount: 0}, nil
	}

	delete(r.parcels, id)
	for i, existing := range r.order {
		if existing.Equal(id) {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (r *MemoryParcelStore) Ping(ctx context.Context) error {
	return dberr.Wrap("parcels.ping", ctx.Err())
}
