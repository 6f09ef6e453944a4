package reference

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

var ErrAmbiguous = errors.New("ambiguous reference")

// Index resolves free-text values to references. Both the display name and
// the slug of every reference are indexed under their folded form. An Index
// is immutable once built and safe to share.
type Index struct {
	keys map[Kind]map[string]Reference
	refs map[Kind][]Reference
}

// NewIndex fails with ErrAmbiguous when two different references of the
// same kind fold to the same key.
func NewIndex(refs []Reference) (*Index, error) {
	ix := &Index{
		keys: map[Kind]map[string]Reference{},
		refs: map[Kind][]Reference{},
	}
	for _, k := range Kinds {
		ix.keys[k] = map[string]Reference{}
	}
	for _, ref := range refs {
		keys, ok := ix.keys[ref.Kind]
		if !ok {
			return nil, fmt.Errorf("reference %q: unknown kind %q", ref.Name, ref.Kind)
		}
		for _, raw := range []string{ref.Name, ref.Slug} {
			key := textnorm.Fold(raw)
			if key == "" {
				continue
			}
			if prev, dup := keys[key]; dup && prev.ID != ref.ID {
				return nil, fmt.Errorf("%w: %s %q and %q both match %q", ErrAmbiguous, ref.Kind, prev.Name, ref.Name, key)
			}
			keys[key] = ref
		}
		ix.refs[ref.Kind] = append(ix.refs[ref.Kind], ref)
	}
	for _, list := range ix.refs {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return ix, nil
}

// BuildIndex loads every kind from repo.
func BuildIndex(ctx context.Context, repo Repository) (*Index, error) {
	var all []Reference
	for _, k := range Kinds {
		refs, err := repo.List(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("load %s references: %w", k, err)
		}
		for i := range refs {
			refs[i].Kind = k
		}
		all = append(all, refs...)
	}
	return NewIndex(all)
}

// Resolve is an exact lookup after folding. There is no partial matching.
func (ix *Index) Resolve(kind Kind, value string) (Reference, bool) {
	key := textnorm.Fold(value)
	if key == "" {
		return Reference{}, false
	}
	ref, ok := ix.keys[kind][key]
	return ref, ok
}

// List returns the references of kind sorted by name.
func (ix *Index) List(kind Kind) []Reference {
	out := make([]Reference, len(ix.refs[kind]))
	copy(out, ix.refs[kind])
	return out
}

func (ix *Index) Len(kind Kind) int { return len(ix.refs[kind]) }

// Suggest returns up to limit reference names close to value, nearest
// first. It only feeds hints in failure messages.
func (ix *Index) Suggest(kind Kind, value string, limit int) []string {
	q := textnorm.Fold(value)
	refs := ix.refs[kind]
	if q == "" || len(refs) == 0 || limit <= 0 {
		return nil
	}

	folded := make([]string, len(refs))
	for i, r := range refs {
		folded[i] = textnorm.Fold(r.Name)
	}

	type candidate struct {
		name     string
		distance int
	}
	seen := map[int]bool{}
	var cands []candidate
	for _, rank := range fuzzy.RankFindNormalizedFold(q, folded) {
		seen[rank.OriginalIndex] = true
		cands = append(cands, candidate{refs[rank.OriginalIndex].Name, rank.Distance})
	}
	maxDist := max(2, len(q)/3)
	for i, f := range folded {
		if seen[i] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(q, f); d <= maxDist {
			cands = append(cands, candidate{refs[i].Name, d})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].distance != cands[j].distance {
			return cands[i].distance < cands[j].distance
		}
		return strings.Compare(cands[i].name, cands[j].name) < 0
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.name
	}
	return out
}
