package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/entities/reference"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

type memBrands struct {
	bySlug map[string]brand.Brand
	// failWrites makes Create and Update fail for the given slugs.
	failWrites map[string]error
	// downAfter makes every call fail with ErrUnavailable once that many
	// writes have succeeded. Zero disables it.
	downAfter int
	// afterWrite runs after every successful write.
	afterWrite func()
	writes     int
	calls      int
}

func newMemBrands() *memBrands {
	return &memBrands{bySlug: map[string]brand.Brand{}, failWrites: map[string]error{}}
}

func (m *memBrands) down() bool { return m.downAfter > 0 && m.writes >= m.downAfter }

func (m *memBrands) wrote() {
	m.writes++
	if m.afterWrite != nil {
		m.afterWrite()
	}
}

func (m *memBrands) GetBySlug(_ context.Context, slug string) (brand.Brand, error) {
	m.calls++
	if m.down() {
		return brand.Brand{}, brand.ErrUnavailable
	}
	b, ok := m.bySlug[slug]
	if !ok {
		return brand.Brand{}, brand.ErrNotFound
	}
	return b, nil
}

func (m *memBrands) GetByName(_ context.Context, name string) (brand.Brand, error) {
	m.calls++
	if m.down() {
		return brand.Brand{}, brand.ErrUnavailable
	}
	for _, b := range m.bySlug {
		if textnorm.Fold(b.Name()) == textnorm.Fold(name) {
			return b, nil
		}
	}
	return brand.Brand{}, brand.ErrNotFound
}

func (m *memBrands) Create(_ context.Context, b brand.Brand) (brand.Brand, error) {
	m.calls++
	if err := m.failWrites[b.Slug()]; err != nil {
		return brand.Brand{}, err
	}
	if _, exists := m.bySlug[b.Slug()]; exists {
		return brand.Brand{}, brand.ErrSlugTaken
	}
	now := time.Now()
	created := brand.Hydrate(uuid.New(), b.Fields(), now, now)
	m.bySlug[b.Slug()] = created
	m.wrote()
	return created, nil
}

func (m *memBrands) Update(_ context.Context, b brand.Brand) (brand.Brand, error) {
	m.calls++
	if err := m.failWrites[b.Slug()]; err != nil {
		return brand.Brand{}, err
	}
	prev, ok := m.bySlug[b.Slug()]
	if !ok {
		return brand.Brand{}, brand.ErrNotFound
	}
	updated := brand.Hydrate(prev.ID(), b.Fields(), prev.CreatedAt(), time.Now())
	m.bySlug[b.Slug()] = updated
	m.wrote()
	return updated, nil
}

func (m *memBrands) Count(context.Context) (int64, error) {
	return int64(len(m.bySlug)), nil
}

type memRefs map[reference.Kind][]reference.Reference

func (r memRefs) List(_ context.Context, kind reference.Kind) ([]reference.Reference, error) {
	return append([]reference.Reference(nil), r[kind]...), nil
}

type refIDs struct {
	bretagne, normandie, textile, vetements, accessoires uuid.UUID
}

func newRefs() (memRefs, refIDs) {
	ids := refIDs{
		bretagne:    uuid.New(),
		normandie:   uuid.New(),
		textile:     uuid.New(),
		vetements:   uuid.New(),
		accessoires: uuid.New(),
	}
	return memRefs{
		reference.KindRegion: {
			{ID: ids.bretagne, Name: "Bretagne", Slug: "bretagne"},
			{ID: ids.normandie, Name: "Normandie", Slug: "normandie"},
		},
		reference.KindSector: {
			{ID: ids.textile, Name: "Textile", Slug: "textile"},
		},
		reference.KindCategory: {
			{ID: ids.vetements, Name: "Vêtements", Slug: "vetements"},
			{ID: ids.accessoires, Name: "Accessoires", Slug: "accessoires"},
		},
	}, ids
}
