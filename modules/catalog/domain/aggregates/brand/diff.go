package brand

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"
)

// Diff lists the top-level json fields that differ between two field sets,
// sorted. An empty result means an update would be a no-op.
func Diff(from, to Fields) ([]string, error) {
	patch, err := jsondiff.Compare(from.Normalize(), to.Normalize())
	if err != nil {
		return nil, errors.Wrap(err, "compare brand fields")
	}
	changed := make([]string, 0, len(patch))
	for _, op := range patch {
		path := strings.TrimPrefix(string(op.Path), "/")
		if i := strings.IndexByte(path, '/'); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			path = "*"
		}
		changed = append(changed, path)
	}
	slices.Sort(changed)
	return slices.Compact(changed), nil
}
