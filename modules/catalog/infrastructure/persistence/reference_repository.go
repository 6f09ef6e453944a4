package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/entities/reference"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/composables"
)

// referenceTables is the only source of table names interpolated into SQL.
var referenceTables = map[reference.Kind]string{
	reference.KindRegion:   "regions",
	reference.KindSector:   "sectors",
	reference.KindCategory: "categories",
}

type ReferenceRepository struct{}

func NewReferenceRepository() reference.Repository {
	return &ReferenceRepository{}
}

func (r *ReferenceRepository) List(ctx context.Context, kind reference.Kind) ([]reference.Reference, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	op := "list " + table
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, mapError(op, err)
	}
	rows, err := tx.Query(ctx, `SELECT id, name, slug FROM `+table+` ORDER BY name, id`)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var out []reference.Reference
	for rows.Next() {
		var id pgtype.UUID
		ref := reference.Reference{Kind: kind}
		if err := rows.Scan(&id, &ref.Name, &ref.Slug); err != nil {
			return nil, mapError(op, err)
		}
		ref.ID = uuid.UUID(id.Bytes)
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}
