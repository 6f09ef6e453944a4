package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/composables"
)

func pgUUIDFromUUID(id [16]byte) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: true,
	}
}

func pgUUIDFromPtr(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgUUIDFromUUID(*id)
}

func uuidPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func pgInt4FromPtr(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func intPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

// levelFromDB reads made_in_france_level. NULL and '' are no level.
func levelFromDB(v pgtype.Text) (brand.MadeInFranceLevel, error) {
	if !v.Valid || v.String == "" {
		return "", nil
	}
	l := brand.MadeInFranceLevel(v.String)
	if !l.Valid() {
		return "", fmt.Errorf("stored made_in_france_level %q is not a known level", v.String)
	}
	return l, nil
}

// isConnectionError tells statement failures apart from failures of the
// connection itself. Only the latter make the store unavailable.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception; 57P01-57P03: admin/crash shutdown, cannot connect now
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03"
	}
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, pgx.ErrTxClosed),
		errors.Is(err, composables.ErrNoPool):
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "closed pool") || strings.Contains(msg, "conn closed")
}

// mapError converts driver errors into the brand domain errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, brand.ErrUnavailable) {
		return err
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %s: %w", brand.ErrUnavailable, op, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return brand.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		detail := pgErr.Detail
		if detail == "" {
			detail = pgErr.Message
		}
		return fmt.Errorf("%w: %s", brand.ErrSlugTaken, detail)
	}
	return gerrors.Wrap(err, op)
}

// InTx runs fn in a transaction taken from the pool in ctx. Failing to
// begin or commit because the connection is gone yields ErrUnavailable.
func InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := composables.InTx(ctx, fn)
	if err == nil || errors.Is(err, brand.ErrUnavailable) {
		return err
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", brand.ErrUnavailable, err)
	}
	return err
}
