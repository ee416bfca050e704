package repository

import (
	"fmt"
	"sort"

	"github.com/parcelhub/parcel-server/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toBSON converts a parcel document into an ordered bson.D.
func toBSON(doc model.Document) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, f := range doc {
		out = append(out, bson.E{Key: f.Key, Value: toBSONValue(f.Value)})
	}
	return out
}

func toBSONValue(v any) any {
	switch t := v.(type) {
	case model.Document:
		return toBSON(t)
	case []any:
		arr := make(bson.A, len(t))
		for i, e := range t {
			arr[i] = toBSONValue(e)
		}
		return arr
	default:
		return v
	}
}

// fromBSON converts a stored document back. Store specific types are
// flattened to their JSON friendly form: ObjectIDs become hex strings,
// dates become time.Time and 32-bit integers widen to int64.
func fromBSON(d bson.D) model.Document {
	out := make(model.Document, 0, len(d))
	for _, e := range d {
		out = append(out, model.Field{Key: e.Key, Value: fromBSONValue(e.Value)})
	}
	return out
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.D:
		return fromBSON(t)
	case bson.M:
		return fromBSON(sortedD(t))
	case bson.A:
		arr := make([]any, len(t))
		for i, e := range t {
			arr[i] = fromBSONValue(e)
		}
		return arr
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return int64(t.T)
	case primitive.Decimal128:
		return t.String()
	case int32:
		return int64(t)
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}

// parcelFromBSON splits a stored document into its id and fields.
func parcelFromBSON(d bson.D) (model.Parcel, error) {
	var p model.Parcel
	found := false

	fields := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key != model.FieldID {
			fields = append(fields, e)
			continue
		}
		oid, ok := e.Value.(primitive.ObjectID)
		if !ok {
			return p, fmt.Errorf("parcel has non ObjectID _id of type %T", e.Value)
		}
		p.ID = model.ParcelIDFromObjectID(oid)
		found = true
	}
	if !found {
		return p, fmt.Errorf("parcel document has no _id")
	}

	p.Fields = fromBSON(fields)
	return p, nil
}

// sortedD orders an unordered map by key so conversions are stable.
func sortedD(m bson.M) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(bson.D, len(keys))
	for i, k := range keys {
		d[i] = bson.E{Key: k, Value: m[k]}
	}
	return d
}
