package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/composables"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

const selectBrand = `
SELECT b.id, b.slug, b.name, b.description, b.website, b.founded_year, b.made_in_france_level,
       b.street, b.postal_code, b.city, b.region_id, b.sector_id, b.created_at, b.updated_at,
       COALESCE((SELECT array_agg(bc.category_id ORDER BY bc.category_id)
                 FROM brand_categories bc WHERE bc.brand_id = b.id), '{}') AS category_ids
FROM brands b`

type BrandRepository struct{}

func NewBrandRepository() brand.Repository {
	return &BrandRepository{}
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (brand.Brand, error) {
	q := selectBrand + ` WHERE b.slug = $1`
	if composables.InTransaction(ctx) {
		q += ` FOR UPDATE OF b`
	}
	return r.getOne(ctx, "get brand by slug", q, slug)
}

func (r *BrandRepository) GetByName(ctx context.Context, name string) (brand.Brand, error) {
	q := selectBrand + ` WHERE b.name_key = $1 ORDER BY b.created_at LIMIT 1`
	return r.getOne(ctx, "get brand by name", q, textnorm.Fold(name))
}

func (r *BrandRepository) getOne(ctx context.Context, op, q string, arg any) (brand.Brand, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return brand.Brand{}, mapError(op, err)
	}
	b, err := scanBrand(tx.QueryRow(ctx, q, arg))
	if err != nil {
		return brand.Brand{}, mapError(op, err)
	}
	return b, nil
}

func (r *BrandRepository) Create(ctx context.Context, b brand.Brand) (brand.Brand, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return brand.Brand{}, mapError("create brand", err)
	}
	f := b.Fields()
	id := b.ID()
	if id == uuid.Nil {
		id = uuid.New()
	}

	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx, `
INSERT INTO brands (id, slug, name, name_key, description, website, founded_year, made_in_france_level,
                    street, postal_code, city, region_id, sector_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING created_at, updated_at`,
		pgUUIDFromUUID(id), f.Slug, f.Name, textnorm.Fold(f.Name), f.Description, f.Website,
		pgInt4FromPtr(f.FoundedYear), string(f.Level), f.Street, f.PostalCode, f.City,
		pgUUIDFromPtr(f.RegionID), pgUUIDFromPtr(f.SectorID),
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return brand.Brand{}, mapError("create brand", err)
	}
	if err := replaceCategories(ctx, tx, id, f.CategoryIDs); err != nil {
		return brand.Brand{}, err
	}
	return brand.Hydrate(id, f, createdAt, updatedAt), nil
}

func (r *BrandRepository) Update(ctx context.Context, b brand.Brand) (brand.Brand, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return brand.Brand{}, mapError("update brand", err)
	}
	f := b.Fields()

	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx, `
UPDATE brands
SET name = $2, name_key = $3, description = $4, website = $5, founded_year = $6,
    made_in_france_level = $7, street = $8, postal_code = $9, city = $10,
    region_id = $11, sector_id = $12, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at`,
		pgUUIDFromUUID(b.ID()), f.Name, textnorm.Fold(f.Name), f.Description, f.Website,
		pgInt4FromPtr(f.FoundedYear), string(f.Level), f.Street, f.PostalCode, f.City,
		pgUUIDFromPtr(f.RegionID), pgUUIDFromPtr(f.SectorID),
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return brand.Brand{}, mapError("update brand", err)
	}
	if err := replaceCategories(ctx, tx, b.ID(), f.CategoryIDs); err != nil {
		return brand.Brand{}, err
	}
	return brand.Hydrate(b.ID(), f, createdAt, updatedAt), nil
}

func (r *BrandRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, mapError("count brands", err)
	}
	var n int64
	if err := tx.QueryRow(ctx, `SELECT count(*)::bigint FROM brands`).Scan(&n); err != nil {
		return 0, mapError("count brands", err)
	}
	return n, nil
}

func replaceCategories(ctx context.Context, tx composables.Tx, brandID uuid.UUID, ids []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM brand_categories WHERE brand_id = $1`, pgUUIDFromUUID(brandID)); err != nil {
		return mapError("clear brand categories", err)
	}
	if len(ids) == 0 {
		return nil
	}
	pgIDs := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		pgIDs[i] = pgUUIDFromUUID(id)
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO brand_categories (brand_id, category_id) SELECT $1, unnest($2::uuid[])`,
		pgUUIDFromUUID(brandID), pgIDs,
	)
	return mapError("set brand categories", err)
}

func scanBrand(row pgx.Row) (brand.Brand, error) {
	var (
		id, regionID, sectorID pgtype.UUID
		foundedYear            pgtype.Int4
		level                  pgtype.Text
		createdAt, updatedAt   time.Time
		categoryIDs            []pgtype.UUID
		f                      brand.Fields
	)
	if err := row.Scan(
		&id, &f.Slug, &f.Name, &f.Description, &f.Website, &foundedYear, &level,
		&f.Street, &f.PostalCode, &f.City, &regionID, &sectorID, &createdAt, &updatedAt,
		&categoryIDs,
	); err != nil {
		return brand.Brand{}, err
	}
	lvl, err := levelFromDB(level)
	if err != nil {
		return brand.Brand{}, err
	}
	f.FoundedYear = intPtr(foundedYear)
	f.Level = lvl
	f.RegionID = uuidPtr(regionID)
	f.SectorID = uuidPtr(sectorID)
	f.CategoryIDs = make([]uuid.UUID, 0, len(categoryIDs))
	for _, c := range categoryIDs {
		if c.Valid {
			f.CategoryIDs = append(f.CategoryIDs, uuid.UUID(c.Bytes))
		}
	}
	return brand.Hydrate(uuid.UUID(id.Bytes), f, createdAt, updatedAt), nil
}
