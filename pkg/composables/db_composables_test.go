package composables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUseTxWithoutPool(t *testing.T) {
	ctx := context.Background()

	_, err := UseTx(ctx)
	require.ErrorIs(t, err, ErrNoPool)
	require.False(t, InTransaction(ctx))

	err = InTx(ctx, func(context.Context) error {
		t.Fatal("fn must not run without a pool")
		return nil
	})
	require.ErrorIs(t, err, ErrNoPool)
}
