package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/entities/reference"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/spreadsheet"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

// TxFunc runs fn inside a transaction carried by the context it is given.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func noTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type ImportService struct {
	brands  brand.Repository
	refs    reference.Repository
	inTx    TxFunc
	logger  *logrus.Logger
	aliases Aliases
	now     func() time.Time
}

type Option func(*ImportService)

// WithTransactor sets how each row's writes are grouped. Without it the
// repositories are called directly.
func WithTransactor(fn TxFunc) Option {
	return func(s *ImportService) { s.inTx = fn }
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *ImportService) { s.logger = l }
}

func WithAliases(a Aliases) Option {
	return func(s *ImportService) { s.aliases = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *ImportService) { s.now = now }
}

func NewImportService(brands brand.Repository, refs reference.Repository, opts ...Option) *ImportService {
	s := &ImportService{
		brands:  brands,
		refs:    refs,
		inTx:    noTx,
		aliases: DefaultAliases(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetOutput(io.Discard)
	}
	return s
}

type ImportOptions struct {
	// DryRun runs every read and check but performs no write.
	DryRun bool
	// Source labels the report, usually the input path.
	Source string
}

// runState is the mutable part of a run. It never outlives Run.
type runState struct {
	// seen maps the slug of every row that did not fail to its row number.
	seen map[string]int
	// names holds the folded names of brands created or updated by earlier
	// rows. A dry run writes nothing, so the store cannot be asked for them.
	names       map[string]plannedBrand
	unavailable error
}

type plannedBrand struct {
	name string
	slug string
}

func newRunState() *runState {
	return &runState{seen: map[string]int{}, names: map[string]plannedBrand{}}
}

// record marks a row as handled so later rows see its slug and name.
func (st *runState) record(row int, fields brand.Fields, outcome Outcome) {
	st.seen[fields.Slug] = row
	if outcome == OutcomeCreated || outcome == OutcomeUpdated {
		st.names[textnorm.Fold(fields.Name)] = plannedBrand{name: fields.Name, slug: fields.Slug}
	}
}

// Run imports the rows of t in order. It returns an error only when the
// run cannot start: the header does not map or the reference index cannot
// be loaded. Every row-level problem ends up in the report.
func (s *ImportService) Run(ctx context.Context, t *spreadsheet.Table, opts ImportOptions) (*Report, error) {
	if t == nil {
		return nil, errors.New("nil table")
	}
	report := &Report{
		RunID:     uuid.New(),
		Source:    opts.Source,
		Sheet:     t.Sheet,
		DryRun:    opts.DryRun,
		StartedAt: s.now(),
		Results:   make([]RowResult, 0, len(t.Rows)),
	}
	log := s.logger.WithFields(logrus.Fields{
		"run_id":  report.RunID.String(),
		"source":  opts.Source,
		"dry_run": opts.DryRun,
	})

	cols, err := NewColumnMap(t.Header, s.aliases)
	if err != nil {
		return nil, err
	}
	report.UnknownColumns = cols.Unknown
	for _, h := range cols.Unknown {
		log.WithField("column", h).Warn("ignoring unknown column")
	}

	ix, err := reference.BuildIndex(ctx, s.refs)
	if err != nil {
		return nil, fmt.Errorf("build reference index: %w", err)
	}
	log.WithFields(logrus.Fields{
		"regions":    ix.Len(reference.KindRegion),
		"sectors":    ix.Len(reference.KindSector),
		"categories": ix.Len(reference.KindCategory),
	}).Debug("reference index loaded")
	log.WithField("columns", cols.Mapped()).Debug("header mapped")

	st := newRunState()
	for _, row := range t.Rows {
		res := s.processRow(ctx, st, cols, ix, row, opts.DryRun)
		report.add(res)

		entry := log.WithFields(logrus.Fields{
			"row":     res.Row,
			"line":    res.Line,
			"outcome": res.Outcome,
			"slug":    res.Slug,
		})
		if res.Outcome == OutcomeFailed {
			entry.WithField("reason", res.Reason).Info("row failed")
		} else {
			entry.Debug("row processed")
		}
	}

	report.FinishedAt = s.now()
	log.WithFields(logrus.Fields{
		"created":  report.Counts.Created,
		"updated":  report.Counts.Updated,
		"skipped":  report.Counts.Skipped,
		"failed":   report.Counts.Failed,
		"duration": report.Duration().String(),
	}).Info("import finished")
	return report, nil
}

func (s *ImportService) processRow(
	ctx context.Context,
	st *runState,
	cols *ColumnMap,
	ix *reference.Index,
	row spreadsheet.Row,
	dryRun bool,
) RowResult {
	res := RowResult{Row: row.Row, Line: row.Line}
	fail := func(err error) RowResult {
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		var re *RowError
		if errors.As(err, &re) {
			res.Field = re.Field
		}
		return res
	}

	if st.unavailable != nil {
		return fail(st.unavailable)
	}
	if err := ctx.Err(); err != nil {
		st.unavailable = fmt.Errorf("%w: %v", brand.ErrUnavailable, err)
		return fail(st.unavailable)
	}

	in, err := NormalizeRow(cols, row, s.now())
	if err != nil {
		return fail(err)
	}
	res.Name, res.Slug = in.Name, in.Slug

	fields, err := ResolveReferences(in, ix)
	if err != nil {
		return fail(err)
	}

	if first, dup := st.seen[fields.Slug]; dup {
		res.Outcome = OutcomeSkipped
		res.Reason = fmt.Sprintf("duplicate of row %d (slug %q)", first, fields.Slug)
		return res
	}

	var outcome Outcome
	var changed []string
	upsert := func(ctx context.Context) error {
		var err error
		outcome, changed, err = s.upsert(ctx, st, fields, !dryRun)
		return err
	}
	if dryRun {
		err = upsert(ctx)
	} else {
		err = s.inTx(ctx, upsert)
	}
	if err != nil {
		if errors.Is(err, brand.ErrUnavailable) {
			st.unavailable = err
		}
		return fail(err)
	}
	st.record(row.Row, fields, outcome)

	res.Outcome = outcome
	res.Changed = changed
	if outcome == OutcomeSkipped {
		res.Reason = "unchanged"
	}
	return res
}

// upsert is the read-then-branch step: find by slug, then update or
// insert. With write false it only reports what would happen.
func (s *ImportService) upsert(ctx context.Context, st *runState, fields brand.Fields, write bool) (Outcome, []string, error) {
	existing, err := s.brands.GetBySlug(ctx, fields.Slug)
	switch {
	case errors.Is(err, brand.ErrNotFound):
		return s.create(ctx, st, fields, write)
	case err != nil:
		return "", nil, err
	}

	changed, err := brand.Diff(existing.Fields(), fields)
	if err != nil {
		return "", nil, err
	}
	if len(changed) == 0 {
		return OutcomeSkipped, nil, nil
	}
	if write {
		if _, err := s.brands.Update(ctx, existing.Apply(fields)); err != nil {
			return "", nil, err
		}
	}
	return OutcomeUpdated, changed, nil
}

// create checks the name against earlier rows of the run before the
// store, so a dry run reports the conflict a real run would hit.
func (s *ImportService) create(ctx context.Context, st *runState, fields brand.Fields, write bool) (Outcome, []string, error) {
	if p, ok := st.names[textnorm.Fold(fields.Name)]; ok && p.slug != fields.Slug {
		return "", nil, nameConflict(p.name, p.slug)
	}
	other, err := s.brands.GetByName(ctx, fields.Name)
	switch {
	case err == nil:
		return "", nil, nameConflict(other.Name(), other.Slug())
	case !errors.Is(err, brand.ErrNotFound):
		return "", nil, err
	}
	if write {
		if _, err := s.brands.Create(ctx, brand.New(fields)); err != nil {
			return "", nil, err
		}
	}
	return OutcomeCreated, nil, nil
}

func nameConflict(name, slug string) error {
	return rowErr(string(FieldName),
		"duplicate name conflict: brand %q already exists with slug %q, needs manual review", name, slug)
}

// CountBrands exposes the brand total, used to check that a dry run left
// the table untouched.
func (s *ImportService) CountBrands(ctx context.Context) (int64, error) {
	return s.brands.Count(ctx)
}
