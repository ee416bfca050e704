package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/parcelhub/parcel-server/internal/dberr"
	"github.com/parcelhub/parcel-server/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoParcelStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find filters by creator newest first", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "title", Value: "Box"},
			{Key: "created_by", Value: "a@x.com"},
		}))

		parcels, err := NewMongoParcelStore(mt.Coll).Find(ctx, ParcelFilter{CreatedBy: "a@x.com"})
		if err != nil {
			mt.Fatalf("Find() error = %v", err)
		}
		if len(parcels) != 1 || parcels[0].ID.ObjectID() != oid {
			mt.Fatalf("parcels = %+v", parcels)
		}
		if title, _ := parcels[0].Fields.Get("title"); title != "Box" {
			mt.Errorf("title = %v, want Box", title)
		}

		cmd := mt.GetStartedEvent().Command
		if got := cmd.Lookup("filter", "created_by").StringValue(); got != "a@x.com" {
			mt.Errorf("filter created_by = %q", got)
		}
		if got := cmd.Lookup("sort", "createdAt").AsInt64(); got != -1 {
			mt.Errorf("sort createdAt = %d, want -1", got)
		}
	})

	mt.Run("find without creator sends empty filter", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		parcels, err := NewMongoParcelStore(mt.Coll).Find(ctx, ParcelFilter{})
		if err != nil {
			mt.Fatalf("Find() error = %v", err)
		}
		if parcels == nil || len(parcels) != 0 {
			mt.Errorf("parcels = %#v, want empty non-nil", parcels)
		}

		filter, err := mt.GetStartedEvent().Command.Lookup("filter").Document().Elements()
		if err != nil || len(filter) != 0 {
			mt.Errorf("filter = %v, %v; want {}", filter, err)
		}
	})

	mt.Run("find command error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))

		_, err := NewMongoParcelStore(mt.Coll).Find(ctx, ParcelFilter{})
		var dbErr *dberr.Error
		if !errors.As(err, &dbErr) || dbErr.Op != "parcels.find" {
			mt.Errorf("Find() error = %v, want *dberr.Error for parcels.find", err)
		}
	})

	mt.Run("find by id", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "weight", Value: int32(3)},
		}))

		p, err := NewMongoParcelStore(mt.Coll).FindByID(ctx, model.ParcelIDFromObjectID(oid))
		if err != nil {
			mt.Fatalf("FindByID() error = %v", err)
		}
		if p.ID.ObjectID() != oid {
			mt.Errorf("ID = %s, want %s", p.ID, oid.Hex())
		}
		if got := mt.GetStartedEvent().Command.Lookup("filter", "_id").ObjectID(); got != oid {
			mt.Errorf("filter _id = %s, want %s", got.Hex(), oid.Hex())
		}
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoParcelStore(mt.Coll).FindByID(ctx, model.NewParcelID())
		if !errors.Is(err, model.ErrParcelNotFound) {
			mt.Errorf("FindByID() error = %v, want ErrParcelNotFound", err)
		}
	})

	mt.Run("insert drops client id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))

		doc := model.Document{
			{Key: "_id", Value: "client supplied"},
			{Key: "title", Value: "Box"},
		}
		res, err := NewMongoParcelStore(mt.Coll).Insert(ctx, doc)
		if err != nil {
			mt.Fatalf("Insert() error = %v", err)
		}
		if !res.Acknowledged || res.InsertedID.IsZero() {
			mt.Fatalf("result = %+v", res)
		}

		sent := mt.GetStartedEvent().Command.Lookup("documents").Array().Index(0).Value().Document()
		id, ok := sent.Lookup("_id").ObjectIDOK()
		if !ok {
			mt.Fatalf("_id sent = %v, want an ObjectID", sent.Lookup("_id"))
		}
		if id != res.InsertedID.ObjectID() {
			mt.Errorf("InsertedID = %s, want %s", res.InsertedID, id.Hex())
		}
		if got := sent.Lookup("title").StringValue(); got != "Box" {
			mt.Errorf("title sent = %q", got)
		}
	})

	mt.Run("delete reports count", func(mt *mtest.T) {
		store := NewMongoParcelStore(mt.Coll)

		for _, n := range []int32{1, 0} {
			mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}))

			res, err := store.Delete(ctx, model.NewParcelID())
			if err != nil {
				mt.Fatalf("Delete() error = %v", err)
			}
			if !res.Acknowledged || res.DeletedCount != int64(n) {
				mt.Errorf("result = %+v, want deletedCount %d", res, n)
			}
		}
	})
}
