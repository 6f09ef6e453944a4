package brand

import (
	"fmt"

	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/textnorm"
)

// MadeInFranceLevel is how much of a brand's production happens in France.
type MadeInFranceLevel string

const (
	LevelFull     MadeInFranceLevel = "FULL"
	LevelMajority MadeInFranceLevel = "MAJORITY"
	LevelPartial  MadeInFranceLevel = "PARTIAL"
	LevelDesigned MadeInFranceLevel = "DESIGNED"
)

var Levels = []MadeInFranceLevel{LevelFull, LevelMajority, LevelPartial, LevelDesigned}

// levelAliases is keyed by folded spelling.
var levelAliases = map[string]MadeInFranceLevel{
	"full":               LevelFull,
	"total":              LevelFull,
	"totale":             LevelFull,
	"complet":            LevelFull,
	"100":                LevelFull,
	"fabrique en france": LevelFull,
	"majority":           LevelMajority,
	"majoritaire":        LevelMajority,
	"majoritairement":    LevelMajority,
	"partial":            LevelPartial,
	"partiel":            LevelPartial,
	"partielle":          LevelPartial,
	"designed":           LevelDesigned,
	"design":             LevelDesigned,
	"concu en france":    LevelDesigned,
	"designed in france": LevelDesigned,
	"dessine en france":  LevelDesigned,
	"made in france":     LevelFull,
	"assemble en france": LevelPartial,
	"majoritairement fr": LevelMajority,
}

// ParseLevel accepts the enum value or one of its French/English spellings,
// ignoring case and accents. An empty value yields "" and no error.
func ParseLevel(v string) (MadeInFranceLevel, error) {
	key := textnorm.Fold(v)
	if key == "" {
		return "", nil
	}
	if l, ok := levelAliases[key]; ok {
		return l, nil
	}
	return "", fmt.Errorf("unknown made in France level %q", v)
}

func (l MadeInFranceLevel) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}
