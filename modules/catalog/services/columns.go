package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/iota-uz/utils/fs"
	"gopkg.in/yaml.v3"

	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

// ErrHeader is returned when the header row cannot be mapped. It aborts the
// run before any row is processed.
var ErrHeader = errors.New("invalid header")

// Field is a logical import column.
type Field string

const (
	FieldName        Field = "name"
	FieldSlug        Field = "slug"
	FieldDescription Field = "description"
	FieldWebsite     Field = "website"
	FieldFoundedYear Field = "founded_year"
	FieldLevel       Field = "made_in_france_level"
	FieldStreet      Field = "street"
	FieldPostalCode  Field = "postal_code"
	FieldCity        Field = "city"
	FieldRegion      Field = "region"
	FieldSector      Field = "sector"
	FieldCategories  Field = "categories"
)

// Fields lists the logical columns in template order.
var Fields = []Field{
	FieldName, FieldSlug, FieldDescription, FieldWebsite, FieldFoundedYear, FieldLevel,
	FieldStreet, FieldPostalCode, FieldCity, FieldRegion, FieldSector, FieldCategories,
}

// TemplateHeaders are the French headers written by the template command.
var TemplateHeaders = map[Field]string{
	FieldName:        "Nom",
	FieldSlug:        "Slug",
	FieldDescription: "Description",
	FieldWebsite:     "Site web",
	FieldFoundedYear: "Année de création",
	FieldLevel:       "Niveau Made in France",
	FieldStreet:      "Adresse",
	FieldPostalCode:  "Code postal",
	FieldCity:        "Ville",
	FieldRegion:      "Région",
	FieldSector:      "Secteur",
	FieldCategories:  "Catégories",
}

// Aliases maps a logical column to the header spellings that select it.
// Spellings are compared after textnorm.Fold.
type Aliases map[Field][]string

func DefaultAliases() Aliases {
	return Aliases{
		FieldName:        {"name", "nom", "marque", "nom de la marque", "brand", "brand name"},
		FieldSlug:        {"slug", "identifiant", "identifiant url"},
		FieldDescription: {"description", "descriptif", "presentation"},
		FieldWebsite:     {"website", "site", "site web", "site internet", "url", "web"},
		FieldFoundedYear: {"founded year", "founded", "year", "annee", "annee de creation", "date de creation", "creation", "annee de fondation", "fondation"},
		FieldLevel:       {"made in france level", "level", "niveau", "niveau made in france", "niveau de fabrication", "fabrication"},
		FieldStreet:      {"street", "address", "adresse", "rue"},
		FieldPostalCode:  {"postal code", "zip", "zip code", "code postal", "cp"},
		FieldCity:        {"city", "ville", "commune"},
		FieldRegion:      {"region"},
		FieldSector:      {"sector", "secteur", "secteur d activite"},
		FieldCategories:  {"categories", "category", "categorie", "categories produits"},
	}
}

// Merge returns a copy of a with the spellings of extra appended.
func (a Aliases) Merge(extra Aliases) Aliases {
	out := make(Aliases, len(a))
	for f, names := range a {
		out[f] = append([]string(nil), names...)
	}
	for f, names := range extra {
		out[f] = append(out[f], names...)
	}
	return out
}

// lookup folds every spelling. A spelling claimed by two fields is an error.
func (a Aliases) lookup() (map[string]Field, error) {
	known := map[Field]bool{}
	for _, f := range Fields {
		known[f] = true
	}
	out := map[string]Field{}
	for f, names := range a {
		if !known[f] {
			return nil, fmt.Errorf("unknown column %q in aliases", f)
		}
		for _, n := range names {
			key := textnorm.Fold(n)
			if key == "" {
				continue
			}
			if prev, ok := out[key]; ok && prev != f {
				return nil, fmt.Errorf("alias %q maps to both %s and %s", n, prev, f)
			}
			out[key] = f
		}
	}
	return out, nil
}

// LoadAliases reads a YAML file of extra header spellings keyed by logical
// column and merges it over the defaults:
//
//	name: [Raison sociale]
//	region: [Province]
func LoadAliases(path string) (Aliases, error) {
	if !fs.FileExists(path) {
		return nil, fmt.Errorf("column aliases file %s does not exist", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read column aliases: %w", err)
	}
	var extra map[string][]string
	if err := yaml.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("parse column aliases %s: %w", path, err)
	}
	typed := make(Aliases, len(extra))
	for k, v := range extra {
		typed[Field(strings.TrimSpace(k))] = v
	}
	merged := DefaultAliases().Merge(typed)
	if _, err := merged.lookup(); err != nil {
		return nil, fmt.Errorf("column aliases %s: %w", path, err)
	}
	return merged, nil
}

// ColumnMap locates the logical columns in a header row.
type ColumnMap struct {
	index map[Field]int
	// Unknown holds header cells that matched no alias, in file order.
	Unknown []string
}

func NewColumnMap(header []string, aliases Aliases) (*ColumnMap, error) {
	lookup, err := aliases.lookup()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	m := &ColumnMap{index: map[Field]int{}}
	for i, h := range header {
		key := textnorm.Fold(h)
		if key == "" {
			continue
		}
		f, ok := lookup[key]
		if !ok {
			m.Unknown = append(m.Unknown, strings.TrimSpace(h))
			continue
		}
		if prev, dup := m.index[f]; dup {
			return nil, fmt.Errorf("%w: columns %q and %q both map to %s", ErrHeader, header[prev], h, f)
		}
		m.index[f] = i
	}
	if _, ok := m.index[FieldName]; !ok {
		return nil, fmt.Errorf("%w: no name column (expected one of %s)", ErrHeader, strings.Join(aliases[FieldName], ", "))
	}
	return m, nil
}

// Column returns the index of f in the header.
func (m *ColumnMap) Column(f Field) (int, bool) {
	i, ok := m.index[f]
	return i, ok
}

// Mapped lists the logical columns present, sorted.
func (m *ColumnMap) Mapped() []Field {
	out := make([]Field, 0, len(m.index))
	for f := range m.index {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
