package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parcelhub/parcel-server/internal/dberr"
	"github.com/parcelhub/parcel-server/internal/model"
)

// PostgresParcelStore keeps parcels in the parcels table. The document is a
// json column so key order survives the round trip.
//
// Listing orders createdAt the way model.CompareValues does: by JSON type
// first (boolean, array, object, string, number), then by value, with
// missing and null timestamps last and ties in insertion order.
type PostgresParcelStore struct {
	pool *pgxpool.Pool
}

func NewPostgresParcelStore(pool *pgxpool.Pool) *PostgresParcelStore {
	return &PostgresParcelStore{pool: pool}
}

const selectParcels = `select id, doc from parcels`

const orderParcels = ` order by
	case json_typeof(doc -> 'createdAt')
		when 'number' then 2
		when 'string' then 3
		when 'object' then 4
		when 'array' then 5
		when 'boolean' then 6
	end desc nulls last,
	case when json_typeof(doc -> 'createdAt') = 'number'
		then (doc ->> 'createdAt')::numeric end desc,
	case when json_typeof(doc -> 'createdAt') in ('string', 'boolean')
		then doc ->> 'createdAt' end collate "C" desc,
	created_at asc`

// created_by is a generated text column; numbers would match their digits,
// so the JSON type is checked too.
const filterByCreator = ` where created_by = $1 and json_typeof(doc -> 'created_by') = 'string'`

func listQuery(filter ParcelFilter) (string, []any) {
	if filter.CreatedBy == "" {
		return selectParcels + orderParcels, nil
	}
	return selectParcels + filterByCreator + orderParcels, []any{filter.CreatedBy}
}

func scanParcel(row pgx.Row) (model.Parcel, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return model.Parcel{}, err
	}

	parcelID, err := model.ParseParcelID(id)
	if err != nil {
		return model.Parcel{}, fmt.Errorf("stored parcel id %q: %w", id, err)
	}

	var doc model.Document
	if err := doc.UnmarshalJSON(raw); err != nil {
		return model.Parcel{}, fmt.Errorf("stored parcel %s: %w", id, err)
	}

	return model.Parcel{ID: parcelID, Fields: doc}, nil
}

func (r *PostgresParcelStore) Find(ctx context.Context, filter ParcelFilter) ([]model.Parcel, error) {
	query, args := listQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap("parcels.find", err)
	}
	defer rows.Close()

	parcels := []model.Parcel{}
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, dberr.Wrap("parcels.find", err)
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap("parcels.find", err)
	}
	return parcels, nil
}

func (r *PostgresParcelStore) FindByID(ctx context.Context, id model.ParcelID) (*model.Parcel, error) {
	row := r.pool.QueryRow(ctx, selectParcels+` where id = $1`, id.String())

	p, err := scanParcel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrParcelNotFound
	}
	if err != nil {
		return nil, dberr.Wrap("parcels.find_one", err)
	}
	return &p, nil
}

func (r *PostgresParcelStore) Insert(ctx context.Context, doc model.Document) (*model.InsertResult, error) {
	body, err := doc.Without(model.FieldID).MarshalJSON()
	if err != nil {
		return nil, dberr.Wrap("parcels.insert", err)
	}

	id := model.NewParcelID()
	// Passed as a string so pgx sends the text untouched to the json column.
	_, err = r.pool.Exec(ctx, `insert into parcels (id, doc) values ($1, $2)`, id.String(), string(body))
	if err != nil {
		return nil, dberr.Wrap("parcels.insert", err)
	}

	return &model.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *PostgresParcelStore) Delete(ctx context.Context, id model.ParcelID) (*model.DeleteResult, error) {
	tag, err := r.pool.Exec(ctx, `delete from parcels where id = $1`, id.String())
	if err != nil {
		return nil, dberr.Wrap("parcels.delete", err)
	}

	return &model.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

func (r *PostgresParcelStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
