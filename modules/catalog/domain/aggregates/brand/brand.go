package brand

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fields holds everything an import can set on a brand. The json names are
// the paths reported when an update changes a field.
type Fields struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Website     string            `json:"website"`
	FoundedYear *int              `json:"founded_year"`
	Level       MadeInFranceLevel `json:"made_in_france_level"`
	Street      string            `json:"street"`
	PostalCode  string            `json:"postal_code"`
	City        string            `json:"city"`
	RegionID    *uuid.UUID        `json:"region_id"`
	SectorID    *uuid.UUID        `json:"sector_id"`
	CategoryIDs []uuid.UUID       `json:"category_ids"`
}

// Normalize trims text fields and sorts and de-duplicates CategoryIDs so
// two Fields built from the same data compare equal.
func (f Fields) Normalize() Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
	f.Website = strings.TrimSpace(f.Website)
	f.Street = strings.TrimSpace(f.Street)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.City = strings.TrimSpace(f.City)

	ids := make([]uuid.UUID, 0, len(f.CategoryIDs))
	ids = append(ids, f.CategoryIDs...)
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	f.CategoryIDs = slices.Compact(ids)
	return f
}

type Brand struct {
	id        uuid.UUID
	fields    Fields
	createdAt time.Time
	updatedAt time.Time
}

func New(fields Fields) Brand {
	return Brand{fields: fields.Normalize()}
}

func Hydrate(id uuid.UUID, fields Fields, createdAt, updatedAt time.Time) Brand {
	return Brand{
		id:        id,
		fields:    fields.Normalize(),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Apply returns b with its fields replaced. The identity and slug are kept.
func (b Brand) Apply(fields Fields) Brand {
	fields = fields.Normalize()
	fields.Slug = b.fields.Slug
	b.fields = fields
	return b
}

func (b Brand) ID() uuid.UUID        { return b.id }
func (b Brand) Slug() string         { return b.fields.Slug }
func (b Brand) Name() string         { return b.fields.Name }
func (b Brand) CreatedAt() time.Time { return b.createdAt }
func (b Brand) UpdatedAt() time.Time { return b.updatedAt }
func (b Brand) IsZero() bool         { return b.id == uuid.Nil && b.fields.Slug == "" }

// Fields returns a copy of the brand's fields.
func (b Brand) Fields() Fields {
	f := b.fields
	f.CategoryIDs = slices.Clone(b.fields.CategoryIDs)
	if f.CategoryIDs == nil {
		f.CategoryIDs = []uuid.UUID{}
	}
	return f
}
