package usecase

import (
	"context"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/metrics"
)

// Shared across the package's tests: promauto registers globally, so
// the metrics set must be created exactly once per test binary.
var testMetrics = metrics.NewMetrics("concierge_test")

func testLogger() logger.Logger {
	return logger.NewLogger()
}

var testHeaders = []string{
	entity.ColPropertyID,
	entity.ColCheckinDate,
	entity.ColCheckinTime,
	entity.ColCheckoutDate,
	entity.ColGuestFirstName,
	entity.ColGuestLastName,
	entity.ColGuestEmail,
	entity.ColGuestPhone,
	entity.ColLocale,
	entity.ColStatus,
	entity.ColAuthorized,
	entity.ColWifiCoupon,
	entity.ColCheckinCode,
	entity.ColNotes,
	entity.ColAICalls,
}

// fakeStore is an in-memory RecordStore for usecase tests.
type fakeStore struct {
	headers []string
	rows    []map[string]string // index 0 holds position 2
}

var _ repository.RecordStore = (*fakeStore)(nil)

func newFakeStore(rows ...map[string]string) *fakeStore {
	s := &fakeStore{headers: testHeaders}
	for _, r := range rows {
		s.rows = append(s.rows, s.project(r))
	}
	return s
}

// project keeps only header columns, blanking the absent ones.
func (s *fakeStore) project(data map[string]string) map[string]string {
	row := make(map[string]string, len(s.headers))
	for _, h := range s.headers {
		row[h] = data[h]
	}
	return row
}

func (s *fakeStore) Headers(ctx context.Context) ([]string, error) {
	return s.headers, nil
}

func (s *fakeStore) List(ctx context.Context) ([]repository.Row, error) {
	out := make([]repository.Row, 0, len(s.rows))
	for i, r := range s.rows {
		out = append(out, repository.Row{Position: i + 2, Record: entity.RecordFromMap(r)})
	}
	return out, nil
}

func (s *fakeStore) Read(ctx context.Context, position int) (entity.BookingRecord, error) {
	i := position - 2
	if i < 0 || i >= len(s.rows) {
		return entity.BookingRecord{}, &repository.NotFoundError{Position: position}
	}
	return entity.RecordFromMap(s.rows[i]), nil
}

func (s *fakeStore) Append(ctx context.Context, data map[string]string) error {
	s.rows = append(s.rows, s.project(data))
	return nil
}

func (s *fakeStore) Update(ctx context.Context, position int, data map[string]string) error {
	i := position - 2
	if i < 0 || i >= len(s.rows) {
		return &repository.NotFoundError{Position: position}
	}
	for _, h := range s.headers {
		if v, ok := data[h]; ok {
			s.rows[i][h] = v
		}
	}
	return nil
}
