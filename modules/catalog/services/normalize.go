package services

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/entities/reference"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/spreadsheet"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

const minFoundedYear = 1000

// RowError is a row-level failure. It never aborts the run.
type RowError struct {
	Field  string
	Reason string
}

func (e *RowError) Error() string { return e.Reason }

func rowErr(field, format string, args ...any) *RowError {
	return &RowError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// BrandInput is a row after cleaning and validation but before its
// references are resolved.
type BrandInput struct {
	Name        string                  `field:"name" validate:"required,max=200"`
	Slug        string                  `field:"slug" validate:"required,max=200"`
	Description string                  `field:"description" validate:"max=5000"`
	Website     string                  `field:"website" validate:"omitempty,url,max=500"`
	FoundedYear *int                    `field:"founded_year" validate:"omitempty,min=1000"`
	Level       brand.MadeInFranceLevel `field:"made_in_france_level"`
	Street      string                  `field:"street" validate:"max=300"`
	PostalCode  string                  `field:"postal_code" validate:"omitempty,len=5,numeric"`
	City        string                  `field:"city" validate:"max=200"`
	Region      string                  `field:"region" validate:"max=200"`
	Sector      string                  `field:"sector" validate:"max=200"`
	Categories  []string                `field:"categories" validate:"dive,max=200"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// NormalizeRow turns a data row into a BrandInput. now bounds the founding
// year.
func NormalizeRow(cols *ColumnMap, row spreadsheet.Row, now time.Time) (BrandInput, error) {
	cell := func(f Field) spreadsheet.Cell {
		i, ok := cols.Column(f)
		if !ok {
			return spreadsheet.Empty
		}
		return row.Cell(i)
	}
	text := func(f Field) string { return strings.TrimSpace(cell(f).Text()) }

	in := BrandInput{
		Name:        collapseSpaces(text(FieldName)),
		Description: text(FieldDescription),
		Street:      collapseSpaces(text(FieldStreet)),
		City:        collapseSpaces(text(FieldCity)),
		Region:      text(FieldRegion),
		Sector:      text(FieldSector),
		Categories:  splitList(text(FieldCategories)),
	}
	if in.Name == "" {
		return BrandInput{}, rowErr(string(FieldName), "name is required")
	}

	in.Slug = textnorm.Slugify(in.Name)
	if given := text(FieldSlug); given != "" {
		in.Slug = textnorm.Slugify(given)
	}
	if in.Slug == "" {
		return BrandInput{}, rowErr(string(FieldSlug), "slug is empty after removing unsupported characters")
	}

	website, err := normalizeWebsite(text(FieldWebsite))
	if err != nil {
		return BrandInput{}, err
	}
	in.Website = website

	year, err := parseYear(cell(FieldFoundedYear), now)
	if err != nil {
		return BrandInput{}, err
	}
	in.FoundedYear = year

	postal, err := parsePostalCode(cell(FieldPostalCode))
	if err != nil {
		return BrandInput{}, err
	}
	in.PostalCode = postal

	level, err := brand.ParseLevel(text(FieldLevel))
	if err != nil {
		return BrandInput{}, rowErr(string(FieldLevel), "%s", err.Error())
	}
	in.Level = level

	if err := validate.Struct(in); err != nil {
		return BrandInput{}, validationRowError(err)
	}
	return in, nil
}

func validationRowError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return rowErr("", "%s", err.Error())
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, describeFieldError(fe))
	}
	field := verrs[0].Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return rowErr(field, "%s", strings.Join(reasons, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "url":
		return fmt.Sprintf("%s %q is not a valid URL", name, fe.Value())
	case "len":
		return fmt.Sprintf("%s %q must have %s characters", name, fe.Value(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s %q must contain only digits", name, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s is longer than %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitList splits a categories cell on , ; | / and newlines, dropping
// blanks and folded duplicates while keeping the first spelling.
func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', '|', '/', '\n', '\r':
			return true
		}
		return false
	})
	seen := map[string]bool{}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = collapseSpaces(p)
		key := textnorm.Fold(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func normalizeWebsite(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	if !strings.Contains(v, "://") {
		// mailto:, tel: and the like carry a scheme but no host. A dotted
		// "scheme" is a bare host with a port, as in example.fr:8080.
		if u, err := url.Parse(v); err == nil && u.Scheme != "" && u.Host == "" && !strings.Contains(u.Scheme, ".") {
			return "", rowErr(string(FieldWebsite), "website %q must use http or https", v)
		}
		v = "https://" + strings.TrimPrefix(v, "//")
	}
	u, err := url.Parse(v)
	if err != nil {
		return "", rowErr(string(FieldWebsite), "website %q is not a valid URL", v)
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return "", rowErr(string(FieldWebsite), "website %q must use http or https", v)
	}
	return v, nil
}

func parseYear(c spreadsheet.Cell, now time.Time) (*int, error) {
	var year int
	switch c.Kind {
	case spreadsheet.KindEmpty:
		return nil, nil
	case spreadsheet.KindDate:
		year = c.Time.Year()
	case spreadsheet.KindNumber:
		if c.Num != math.Trunc(c.Num) {
			return nil, rowErr(string(FieldFoundedYear), "founded_year %q is not a whole year", c.Text())
		}
		year = int(c.Num)
	default:
		v := strings.TrimSpace(c.Str)
		n, err := strconv.Atoi(v)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
			if ferr != nil || f != math.Trunc(f) {
				return nil, rowErr(string(FieldFoundedYear), "founded_year %q is not a number", v)
			}
			n = int(f)
		}
		year = n
	}
	if year < minFoundedYear || year > now.Year() {
		return nil, rowErr(string(FieldFoundedYear), "founded_year %d must be between %d and %d", year, minFoundedYear, now.Year())
	}
	return &year, nil
}

// parsePostalCode restores the leading zero Excel drops from numeric
// postal codes such as 01000.
func parsePostalCode(c spreadsheet.Cell) (string, error) {
	switch c.Kind {
	case spreadsheet.KindEmpty:
		return "", nil
	case spreadsheet.KindNumber:
		if c.Num < 0 || c.Num != math.Trunc(c.Num) || c.Num > 99999 {
			return "", rowErr(string(FieldPostalCode), "postal_code %q is not a French postal code", c.Text())
		}
		return fmt.Sprintf("%05d", int(c.Num)), nil
	case spreadsheet.KindDate:
		return "", rowErr(string(FieldPostalCode), "postal_code %q is a date", c.Text())
	default:
		v := strings.ReplaceAll(c.Str, " ", "")
		if len(v) == 4 && isDigits(v) {
			v = "0" + v
		}
		return v, nil
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ResolveReferences maps the free-text region, sector and categories to
// reference ids with exact folded matching. Every unknown value is listed
// in the error, with close reference names as hints.
func ResolveReferences(in BrandInput, ix *reference.Index) (brand.Fields, error) {
	fields := brand.Fields{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Website:     in.Website,
		FoundedYear: in.FoundedYear,
		Level:       in.Level,
		Street:      in.Street,
		PostalCode:  in.PostalCode,
		City:        in.City,
		CategoryIDs: []uuid.UUID{},
	}

	var problems []string
	firstField := ""
	fail := func(kind reference.Kind, value string) {
		if firstField == "" {
			firstField = string(kind)
		}
		msg := fmt.Sprintf("unknown %s %q", kind, value)
		if hints := ix.Suggest(kind, value, 3); len(hints) > 0 {
			quoted := make([]string, len(hints))
			for i, h := range hints {
				quoted[i] = strconv.Quote(h)
			}
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(quoted, ", "))
		}
		problems = append(problems, msg)
	}

	if in.Region != "" {
		if ref, ok := ix.Resolve(reference.KindRegion, in.Region); ok {
			id := ref.ID
			fields.RegionID = &id
		} else {
			fail(reference.KindRegion, in.Region)
		}
	}
	if in.Sector != "" {
		if ref, ok := ix.Resolve(reference.KindSector, in.Sector); ok {
			id := ref.ID
			fields.SectorID = &id
		} else {
			fail(reference.KindSector, in.Sector)
		}
	}
	for _, c := range in.Categories {
		if ref, ok := ix.Resolve(reference.KindCategory, c); ok {
			fields.CategoryIDs = append(fields.CategoryIDs, ref.ID)
		} else {
			fail(reference.KindCategory, c)
		}
	}

	if len(problems) > 0 {
		return brand.Fields{}, &RowError{Field: firstField, Reason: strings.Join(problems, "; ")}
	}
	return fields.Normalize(), nil
}
