package repository

import (
	"context"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

// ResponderContext carries the grounding material for one generation.
type ResponderContext struct {
	Snippets   []string
	Booking    entity.BookingRecord
	HasBooking bool
	PropertyID string
	Locale     string
	Season     string
	Daypart    string
}

// Responder is the AI text-generation collaborator. Implementations
// must fail soft: when unconfigured or failing they return a fixed
// fallback message, never an error the guest would see.
type Responder interface {
	Generate(ctx context.Context, userMsg string, rc ResponderContext) (string, error)
}
