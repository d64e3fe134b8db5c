package domain

import (
	"strings"
	"time"
)

var localLayouts = []string{
	LocalDateTime,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseLocalDateTime разбирает настенное время в часовом поясе loc.
// Значение со смещением (RFC3339) считается абсолютным.
func ParseLocalDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDateTime
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

// SameLocalDate start и end приходятся на одну дату в loc.
// Конец ровно в полночь следующего дня считается тем же днем.
func SameLocalDate(start, end time.Time, loc *time.Location) bool {
	s := start.In(loc)
	e := end.In(loc)
	if e.Hour() == 0 && e.Minute() == 0 && e.Second() == 0 && e.After(s) {
		e = e.Add(-time.Nanosecond)
	}
	y1, m1, d1 := s.Date()
	y2, m2, d2 := e.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
