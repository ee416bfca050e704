package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrParcelNotFound is returned when no parcel has the requested id.
	ErrParcelNotFound = errors.New("parcel not found")

	// ErrInvalidParcelID is returned for identifiers that are not 24 hex chars.
	ErrInvalidParcelID = errors.New("invalid parcel id")
)

// ParcelID is the store-assigned identifier of a parcel. It renders as a
// 24 character hex string.
type ParcelID struct {
	oid primitive.ObjectID
}

// NewParcelID returns a fresh, unique identifier.
func NewParcelID() ParcelID {
	return ParcelID{oid: primitive.NewObjectID()}
}

// ParseParcelID parses the textual form of a ParcelID.
func ParseParcelID(s string) (ParcelID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ParcelID{}, ErrInvalidParcelID
	}
	return ParcelID{oid: oid}, nil
}

// ParcelIDFromObjectID wraps an id read back from the document store.
func ParcelIDFromObjectID(oid primitive.ObjectID) ParcelID {
	return ParcelID{oid: oid}
}

func (id ParcelID) String() string {
	return id.oid.Hex()
}

// ObjectID exposes the underlying document store id.
func (id ParcelID) ObjectID() primitive.ObjectID {
	return id.oid
}

func (id ParcelID) IsZero() bool {
	return id.oid.IsZero()
}

func (id ParcelID) Equal(other ParcelID) bool {
	return id.oid == other.oid
}

func (id ParcelID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ParcelID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidParcelID
	}
	parsed, err := ParseParcelID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parcel is a stored delivery record: an id plus whatever fields the
// client submitted.
type Parcel struct {
	ID     ParcelID
	Fields Document
}

// MarshalJSON renders the parcel as a flat object with _id first.
func (p Parcel) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(p.ID)
	if err != nil {
		return nil, err
	}

	fields, err := p.Fields.Without(FieldID).MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"_id":`)
	buf.Write(id)
	if len(fields) > 2 {
		buf.WriteByte(',')
		buf.Write(fields[1 : len(fields)-1])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// InsertResult acknowledges a create.
type InsertResult struct {
	Acknowledged bool     `json:"acknowledged"`
	InsertedID   ParcelID `json:"insertedId"`
}

// DeleteResult acknowledges a delete. DeletedCount is 0 when nothing
// matched.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
