package repository

import (
	"context"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

// ChatLogRepository persists chat exchanges. Callers treat persistence
// as best effort; a failed save must never abort the chat response.
type ChatLogRepository interface {
	Save(ctx context.Context, log *entity.ChatLog) error
}
