package service

import (
	"context"

	"github.com/parcelhub/parcel-server/internal/model"
	"github.com/parcelhub/parcel-server/internal/repository"
	"github.com/parcelhub/parcel-server/internal/server"
)

// ParcelNotifier queues the "parcel created" email.
type ParcelNotifier interface {
	EnqueueParcelCreated(ctx context.Context, to, parcelID, title string) error
}

// ParcelService implements the parcel operations on top of a ParcelStore.
// It holds no state of its own.
type ParcelService struct {
	server   *server.Server
	store    repository.ParcelStore
	notifier ParcelNotifier
}

// NewParcelService wires the service. notifier may be nil.
func NewParcelService(s *server.Server, store repository.ParcelStore, notifier ParcelNotifier) *ParcelService {
	return &ParcelService{
		server:   s,
		store:    store,
		notifier: notifier,
	}
}

// List returns the parcels created by email, or every parcel when email is
// empty, newest first. The result is never nil.
func (s *ParcelService) List(ctx context.Context, email string) ([]model.Parcel, error) {
	parcels, err := s.store.Find(ctx, repository.ParcelFilter{CreatedBy: email})
	s.server.Metrics.ParcelOperation("list", err)
	if err != nil {
		return nil, err
	}

	if parcels == nil {
		parcels = []model.Parcel{}
	}
	return parcels, nil
}

// GetByID returns one parcel. A malformed id fails before the store is
// queried.
func (s *ParcelService) GetByID(ctx context.Context, id string) (*model.Parcel, error) {
	parcelID, err := model.ParseParcelID(id)
	if err != nil {
		return nil, err
	}

	parcel, err := s.store.FindByID(ctx, parcelID)
	s.server.Metrics.ParcelOperation("get", err)
	if err != nil {
		return nil, err
	}
	return parcel, nil
}

// Create stores doc without inspecting its fields. When doc names its
// creator the parcel-created notification is queued; a failure to queue is
// logged and does not fail the create.
func (s *ParcelService) Create(ctx context.Context, doc model.Document) (*model.InsertResult, error) {
	res, err := s.store.Insert(ctx, doc)
	s.server.Metrics.ParcelOperation("create", err)
	if err != nil {
		return nil, err
	}

	s.notifyCreated(ctx, doc, res.InsertedID)
	return res, nil
}

func (s *ParcelService) notifyCreated(ctx context.Context, doc model.Document, id model.ParcelID) {
	if s.notifier == nil {
		return
	}
	to, ok := doc.CreatedBy()
	if !ok || to == "" {
		return
	}

	var title string
	if v, ok := doc.Get("title"); ok {
		title, _ = v.(string)
	}

	err := s.notifier.EnqueueParcelCreated(ctx, to, id.String(), title)
	s.server.Metrics.Notification(err)
	if err != nil {
		s.server.Logger.Error().
			Err(err).
			Str("parcel_id", id.String()).
			Msg("failed to enqueue parcel created notification")
	}
}

// Delete removes the parcel with id. Deleting a parcel that does not exist
// reports DeletedCount 0.
func (s *ParcelService) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	parcelID, err := model.ParseParcelID(id)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Delete(ctx, parcelID)
	s.server.Metrics.ParcelOperation("delete", err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Ping checks the parcel store.
func (s *ParcelService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
