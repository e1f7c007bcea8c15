package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

// Sentinel errors shared by both record store backends.
var (
	// ErrNoBackend means neither the local bookings file nor the
	// remote sheet is configured. Fatal at first use, never retried.
	ErrNoBackend = errors.New("no bookings backend available: provide GOOGLE_SHEET_ID or the local bookings file")

	// ErrNoHeader means row 1 of the bookings sheet is empty.
	ErrNoHeader = errors.New("bookings sheet has no header row")
)

// NotFoundError reports a row position with no corresponding data row.
type NotFoundError struct {
	Position int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("row %d not found", e.Position)
}

// Row pairs a booking record with its 1-based sheet position. Row 1 is
// the header, so the first data row has Position 2. Positions are
// stable only for the lifetime of the backing collection state.
type Row struct {
	Position int
	Record   entity.BookingRecord
}

// RecordStore abstracts the bookings collection over its two
// interchangeable backends. The store exclusively owns all reads and
// writes of the backing sheet; callers never touch the backend
// directly.
type RecordStore interface {
	// Headers returns row 1 in spreadsheet column order.
	Headers(ctx context.Context) ([]string, error)

	// List returns every data row with its position.
	List(ctx context.Context) ([]Row, error)

	// Read returns the record at the given position, or a
	// NotFoundError.
	Read(ctx context.Context, position int) (entity.BookingRecord, error)

	// Append writes a new row. Header columns absent from data are
	// left blank; keys outside the header are dropped.
	Append(ctx context.Context, data map[string]string) error

	// Update overwrites only the header columns present in data,
	// leaving every other column unchanged.
	Update(ctx context.Context, position int, data map[string]string) error
}
