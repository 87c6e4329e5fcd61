package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
)

func newPasswordChangedEvent(userID, changedBy string, at time.Time) domain.PasswordChangedEvent {
	return domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		ChangedBy: changedBy,
		ChangedAt: at,
	}
}
