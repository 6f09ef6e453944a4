package reference

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Kind names a reference table a brand points into.
type Kind string

const (
	KindRegion   Kind = "region"
	KindSector   Kind = "sector"
	KindCategory Kind = "category"
)

var Kinds = []Kind{KindRegion, KindSector, KindCategory}

func ParseKind(v string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown reference kind %q (expected region, sector or category)", v)
}

type Reference struct {
	ID   uuid.UUID `json:"id"`
	Kind Kind      `json:"kind"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type Repository interface {
	List(ctx context.Context, kind Kind) ([]Reference, error)
}
