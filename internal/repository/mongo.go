package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/parcelhub/parcel-server/internal/dberr"
	"github.com/parcelhub/parcel-server/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoParcelStore keeps parcels in a MongoDB collection.
type MongoParcelStore struct {
	coll *mongo.Collection
}

func NewMongoParcelStore(coll *mongo.Collection) *MongoParcelStore {
	return &MongoParcelStore{coll: coll}
}

func mongoFilter(filter ParcelFilter) bson.D {
	if filter.CreatedBy == "" {
		return bson.D{}
	}
	return bson.D{{Key: model.FieldCreatedBy, Value: filter.CreatedBy}}
}

func mongoFindOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: model.FieldCreatedAt, Value: -1}})
}

func (r *MongoParcelStore) Find(ctx context.Context, filter ParcelFilter) ([]model.Parcel, error) {
	cursor, err := r.coll.Find(ctx, mongoFilter(filter), mongoFindOptions())
	if err != nil {
		return nil, dberr.Wrap("parcels.find", err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dberr.Wrap("parcels.find", err)
	}

	parcels := make([]model.Parcel, 0, len(docs))
	for _, d := range docs {
		p, err := parcelFromBSON(d)
		if err != nil {
			return nil, dberr.Wrap("parcels.find", err)
		}
		parcels = append(parcels, p)
	}
	return parcels, nil
}

func (r *MongoParcelStore) FindByID(ctx context.Context, id model.ParcelID) (*model.Parcel, error) {
	var d bson.D
	err := r.coll.FindOne(ctx, bson.D{{Key: model.FieldID, Value: id.ObjectID()}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrParcelNotFound
	}
	if err != nil {
		return nil, dberr.Wrap("parcels.find_one", err)
	}

	p, err := parcelFromBSON(d)
	if err != nil {
		return nil, dberr.Wrap("parcels.find_one", err)
	}
	return &p, nil
}

func (r *MongoParcelStore) Insert(ctx context.Context, doc model.Document) (*model.InsertResult, error) {
	// The driver prepends a fresh ObjectID when the document has no _id.
	res, err := r.coll.InsertOne(ctx, toBSON(doc.Without(model.FieldID)))
	if err != nil {
		return nil, dberr.Wrap("parcels.insert", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, dberr.Wrap("parcels.insert", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}

	return &model.InsertResult{
		Acknowledged: true,
		InsertedID:   model.ParcelIDFromObjectID(oid),
	}, nil
}

func (r *MongoParcelStore) Delete(ctx context.Context, id model.ParcelID) (*model.DeleteResult, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: model.FieldID, Value: id.ObjectID()}})
	if err != nil {
		return nil, dberr.Wrap("parcels.delete", err)
	}

	return &model.DeleteResult{
		Acknowledged: true,
		DeletedCount: res.DeletedCount,
	}, nil
}

func (r *MongoParcelStore) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
