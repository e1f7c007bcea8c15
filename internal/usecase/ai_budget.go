package usecase

import (
	"context"
	"strconv"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

// MaxAICalls caps the AI generation calls spent on one booking.
const MaxAICalls = 8

// CanUseAI reports whether the booking still has AI budget left. An
// unparsable counter reads as zero.
func CanUseAI(rec entity.BookingRecord) bool {
	return aiCalls(rec) < MaxAICalls
}

// IncrementAICalls bumps the ai_calls counter on the booking row.
func (m *BookingMatcher) IncrementAICalls(ctx context.Context, position int, rec entity.BookingRecord) error {
	next := aiCalls(rec) + 1
	return m.store.Update(ctx, position, map[string]string{
		entity.ColAICalls: strconv.Itoa(next),
	})
}

func aiCalls(rec entity.BookingRecord) int {
	n, err := strconv.Atoi(rec.AICalls)
	if err != nil {
		return 0
	}
	return n
}
