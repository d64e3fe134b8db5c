// Package interval содержит чистые функции для работы с полуоткрытыми интервалами времени [Start, End).
package interval

import (
	"sort"
	"time"
)

// Interval полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// New создает интервал
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// IsEmpty возвращает true для интервалов нулевой или отрицательной длины
func (i Interval) IsEmpty() bool {
	return !i.End.After(i.Start)
}

// Duration длительность интервала
func (i Interval) Duration() time.Duration {
	if i.IsEmpty() {
		return 0
	}
	return i.End.Sub(i.Start)
}

// Contains проверяет, что other целиком лежит внутри интервала
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Pad расширяет интервал на d в обе стороны
func (i Interval) Pad(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

// Overlaps строгая проверка пересечения полуоткрытых интервалов.
// Интервалы, которые только соприкасаются границами, не пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Normalize сортирует интервалы и сливает пересекающиеся и смежные.
// Пустые интервалы отбрасываются. Входной слайс не изменяется.
func Normalize(intervals []Interval) []Interval {
	sorted := make([]Interval, 0, len(intervals))
	for _, in := range intervals {
		if !in.IsEmpty() {
			sorted = append(sorted, in)
		}
	}
	if len(sorted) == 0 {
		return []Interval{}
	}

	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].Start.Equal(sorted[b].Start) {
			return sorted[a].End.Before(sorted[b].End)
		}
		return sorted[a].Start.Before(sorted[b].Start)
	})

	result := []Interval{sorted[0]}
	for _, next := range sorted[1:] {
		last := &result[len(result)-1]
		if !next.Start.After(last.End) {
			if next.End.After(last.End) {
				last.End = next.End
			}
			continue
		}
		result = append(result, next)
	}

	return result
}

// Subtract вырезает блокирующий интервал из каждого интервала набора.
// Каждый интервал превращается в ноль, один или два остатка.
func Subtract(intervals []Interval, block Interval) []Interval {
	result := make([]Interval, 0, len(intervals))
	if block.IsEmpty() {
		return append(result, intervals...)
	}

	for _, in := range intervals {
		if !Overlaps(in.Start, in.End, block.Start, block.End) {
			result = append(result, in)
			continue
		}
		if in.Start.Before(block.Start) {
			result = append(result, Interval{Start: in.Start, End: block.Start})
		}
		if in.End.After(block.End) {
			result = append(result, Interval{Start: block.End, End: in.End})
		}
	}

	return result
}

// SubtractAll последовательно вычитает все блокирующие интервалы
func SubtractAll(intervals []Interval, blocks []Interval) []Interval {
	result := intervals
	for _, block := range blocks {
		result = Subtract(result, block)
	}
	return result
}

// Covers проверяет, что candidate целиком помещается в один из интервалов набора
func Covers(intervals []Interval, candidate Interval) bool {
	for _, in := range intervals {
		if in.Contains(candidate) {
			return true
		}
	}
	return false
}
