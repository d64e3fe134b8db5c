package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// GenerateSlotsRequest параметры поиска свободных слотов.
// RangeStart/RangeEnd в UTC, TeamMemberID = nil - все активные сотрудники.
type GenerateSlotsRequest struct {
	AccountID       int64
	RangeStart      time.Time
	RangeEnd        time.Time
	DurationMinutes int
	TeamMemberID    *int64
}

// SlotsResult найденные слоты, отсортированные по (StartsAt, TeamMemberID)
type SlotsResult struct {
	Timezone string
	Slots    []domain.Slot
}
