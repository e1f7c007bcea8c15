package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/metrics"
	"github.com/navellino/concierge-backend/pkg/normalize"
)

// AmbiguousMatchError reports a lookup that matched more than one
// booking. Ambiguity is an expected outcome: callers branch on the
// count and ask the guest to disambiguate.
type AmbiguousMatchError struct {
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d bookings match, disambiguation required", e.Count)
}

// BookingMatcher resolves guest identity to booking rows through the
// record store.
type BookingMatcher struct {
	store   repository.RecordStore
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewBookingMatcher creates a matcher over the given store.
func NewBookingMatcher(store repository.RecordStore, log logger.Logger, m *metrics.Metrics) *BookingMatcher {
	return &BookingMatcher{store: store, logger: log, metrics: m}
}

// ReadRow returns the live record at position.
func (m *BookingMatcher) ReadRow(ctx context.Context, position int) (entity.BookingRecord, error) {
	return m.store.Read(ctx, position)
}

// FindBooking scans all rows for an exact checkin date and surname
// match, case and format insensitive. First name and property only
// filter when the caller supplied them. Exactly one hit returns
// (position, record, 1); zero hits (0, nil, 0); N>1 hits (0, nil, N)
// with position and record deliberately withheld so the caller must
// re-query with more detail.
func (m *BookingMatcher) FindBooking(ctx context.Context, arrivalDate, lastName, firstName, propertyID string) (int, *entity.BookingRecord, int, error) {
	rows, err := m.store.List(ctx)
	if err != nil {
		return 0, nil, 0, err
	}

	wantDate := normalize.Date(arrivalDate)
	wantLN := normalize.Name(lastName)
	wantFN := normalize.Name(firstName)
	wantPID := strings.TrimSpace(propertyID)

	var hits []repository.Row
	for _, row := range rows {
		rec := row.Record
		if normalize.Date(rec.CheckinDate) != wantDate {
			continue
		}
		if normalize.Name(rec.GuestLastName) != wantLN {
			continue
		}
		if firstName != "" && normalize.Name(rec.GuestFirstName) != wantFN {
			continue
		}
		if propertyID != "" && strings.TrimSpace(rec.PropertyID) != wantPID {
			continue
		}
		hits = append(hits, row)
	}

	switch len(hits) {
	case 1:
		rec := hits[0].Record
		return hits[0].Position, &rec, 1, nil
	case 0:
		return 0, nil, 0, nil
	default:
		return 0, nil, len(hits), nil
	}
}

// FindBookingByDates matches on the arrival+departure date pair
// instead of a name. With requireMissingDetails only rows still
// missing first name, last name or email qualify, which is how
// self-registration candidates are detected.
func (m *BookingMatcher) FindBookingByDates(ctx context.Context, arrivalDate, departureDate, propertyID string, requireMissingDetails bool) (int, *entity.BookingRecord, int, error) {
	rows, err := m.store.List(ctx)
	if err != nil {
		return 0, nil, 0, err
	}

	wantArrival := normalize.Date(arrivalDate)
	wantDeparture := normalize.Date(departureDate)
	wantPID := strings.TrimSpace(propertyID)

	var hits []repository.Row
	for _, row := range rows {
		rec := row.Record
		if propertyID != "" && strings.TrimSpace(rec.PropertyID) != wantPID {
			continue
		}
		if normalize.Date(rec.CheckinDate) != wantArrival {
			continue
		}
		if departureDate != "" && normalize.Date(rec.CheckoutDate) != wantDeparture {
			continue
		}
		if requireMissingDetails && !rec.MissingGuestDetails() {
			continue
		}
		hits = append(hits, row)
	}

	if len(hits) == 1 {
		rec := hits[0].Record
		return hits[0].Position, &rec, 1, nil
	}
	return 0, nil, len(hits), nil
}

// ListIncompleteBookings returns the rows, optionally scoped to a
// property, still missing any guest identity field.
func (m *BookingMatcher) ListIncompleteBookings(ctx context.Context, propertyID string) ([]entity.BookingRecord, error) {
	rows, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	wantPID := strings.TrimSpace(propertyID)

	var out []entity.BookingRecord
	for _, row := range rows {
		rec := row.Record
		if propertyID != "" && strings.TrimSpace(rec.PropertyID) != wantPID {
			continue
		}
		if rec.MissingGuestDetails() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// UpsertResult reports what UpsertBooking did.
type UpsertResult struct {
	Action   string // "updated" or "inserted"
	Position int    // 0 for inserts
	Record   entity.BookingRecord
}

// UpsertBooking updates the single matching row or appends a new one.
// More than one match is surfaced as an AmbiguousMatchError instead of
// silently inserting a duplicate.
func (m *BookingMatcher) UpsertBooking(ctx context.Context, arrivalDate, lastName, firstName string, payload map[string]string) (UpsertResult, error) {
	pos, _, count, err := m.FindBooking(ctx, arrivalDate, lastName, firstName, "")
	if err != nil {
		return UpsertResult{}, err
	}
	if count > 1 {
		return UpsertResult{}, &AmbiguousMatchError{Count: count}
	}

	if count == 1 {
		if err := m.store.Update(ctx, pos, payload); err != nil {
			return UpsertResult{}, err
		}
		m.metrics.RowsWritten.Inc()
		rec, err := m.store.Read(ctx, pos)
		if err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{Action: "updated", Position: pos, Record: rec}, nil
	}

	if err := m.store.Append(ctx, payload); err != nil {
		return UpsertResult{}, err
	}
	m.metrics.RowsWritten.Inc()
	return UpsertResult{Action: "inserted", Record: entity.RecordFromMap(payload)}, nil
}

// Authorization outcome statuses.
const (
	AuthorizeOK        = "ok"
	AuthorizeNotFound  = "not_found"
	AuthorizeAmbiguous = "ambiguous"
)

// AuthorizeResult reports the outcome of AuthorizeGuest.
type AuthorizeResult struct {
	Status   string
	Message  string
	Position int
	Record   entity.BookingRecord
}

// AuthorizeGuest marks the matching booking as authorized and ready,
// writing the door code and wifi coupon. Existing notes are preserved
// when none are supplied.
func (m *BookingMatcher) AuthorizeGuest(ctx context.Context, arrivalDate, lastName, firstName, checkinCode, wifiCoupon, notes string) (AuthorizeResult, error) {
	pos, rec, count, err := m.FindBooking(ctx, arrivalDate, lastName, firstName, "")
	if err != nil {
		return AuthorizeResult{}, err
	}
	if count == 0 {
		return AuthorizeResult{Status: AuthorizeNotFound, Message: "Prenotazione non trovata."}, nil
	}
	if count > 1 {
		return AuthorizeResult{Status: AuthorizeAmbiguous, Message: "Più prenotazioni trovate, specifica meglio."}, nil
	}

	if notes == "" && rec != nil {
		notes = rec.Notes
	}
	payload := map[string]string{
		entity.ColAuthorized:  "yes",
		entity.ColCheckinCode: checkinCode,
		entity.ColWifiCoupon:  wifiCoupon,
		entity.ColStatus:      entity.StatusReady,
		entity.ColNotes:       notes,
	}
	if err := m.store.Update(ctx, pos, payload); err != nil {
		return AuthorizeResult{}, err
	}
	m.metrics.RowsWritten.Inc()

	live, err := m.store.Read(ctx, pos)
	if err != nil {
		return AuthorizeResult{}, err
	}
	m.logger.Info("Guest authorized", "position", pos, "lastName", lastName)
	return AuthorizeResult{Status: AuthorizeOK, Position: pos, Record: live}, nil
}
