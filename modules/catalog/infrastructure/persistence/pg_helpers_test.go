package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/composables"
)

func TestIsConnectionError(t *testing.T) {
	connection := []error{
		context.Canceled,
		fmt.Errorf("query: %w", context.DeadlineExceeded),
		io.ErrUnexpectedEOF,
		pgx.ErrTxClosed,
		composables.ErrNoPool,
		&pgconn.PgError{Code: "08006", Message: "connection failure"},
		&pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"},
		errors.New("closed pool"),
	}
	for _, err := range connection {
		assert.True(t, isConnectionError(err), err.Error())
	}

	statement := []error{
		nil,
		pgx.ErrNoRows,
		&pgconn.PgError{Code: "23505", Message: "duplicate key value"},
		&pgconn.PgError{Code: "23514", Message: "check constraint"},
		errors.New("syntax error"),
	}
	for _, err := range statement {
		assert.False(t, isConnectionError(err), fmt.Sprint(err))
	}
}

func TestMapError(t *testing.T) {
	require.NoError(t, mapError("op", nil))
	require.ErrorIs(t, mapError("op", pgx.ErrNoRows), brand.ErrNotFound)

	err := mapError("create brand", &pgconn.PgError{Code: "23505", Detail: "Key (slug)=(opinel) already exists."})
	require.ErrorIs(t, err, brand.ErrSlugTaken)
	assert.Contains(t, err.Error(), "opinel")

	err = mapError("create brand", io.EOF)
	require.ErrorIs(t, err, brand.ErrUnavailable)
	require.ErrorIs(t, err, io.EOF)

	err = mapError("create brand", &pgconn.PgError{Code: "23514", Message: "violates check constraint"})
	require.NotErrorIs(t, err, brand.ErrUnavailable)
	assert.Contains(t, err.Error(), "create brand")
}

func TestInTxWithoutPoolIsUnavailable(t *testing.T) {
	err := InTx(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, brand.ErrUnavailable)
}

func TestLevelFromDB(t *testing.T) {
	l, err := levelFromDB(pgtype.Text{})
	require.NoError(t, err)
	assert.Empty(t, l)

	l, err = levelFromDB(pgtype.Text{String: "", Valid: true})
	require.NoError(t, err)
	assert.Empty(t, l)

	for _, want := range brand.Levels {
		l, err = levelFromDB(pgtype.Text{String: string(want), Valid: true})
		require.NoError(t, err)
		assert.Equal(t, want, l)
	}

	_, err = levelFromDB(pgtype.Text{String: "ALMOST", Valid: true})
	require.Error(t, err)
}
