package domain

import "time"

// Slot свободный интервал [StartsAt, EndsAt) фиксированной длительности у одного сотрудника
type Slot struct {
	TeamMemberID int64
	StartsAt     time.Time
	EndsAt       time.Time
}

// DurationMinutes длительность слота в минутах
func (s *Slot) DurationMinutes() int {
	return int(s.EndsAt.Sub(s.StartsAt) / time.Minute)
}
