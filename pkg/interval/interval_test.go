package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 10, 13, hour, minute, 0, 0, time.UTC)
}

func iv(h1, m1, h2, m2 int) Interval {
	return New(at(h1, m1), at(h2, m2))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input []Interval
		want  []Interval
	}{
		{
			name:  "empty input",
			input: nil,
			want:  []Interval{},
		},
		{
			name:  "unsorted overlapping",
			input: []Interval{iv(13, 0, 17, 0), iv(9, 0, 12, 0), iv(11, 0, 14, 0)},
			want:  []Interval{iv(9, 0, 17, 0)},
		},
		{
			name:  "adjacent intervals merge",
			input: []Interval{iv(9, 0, 12, 0), iv(12, 0, 13, 0)},
			want:  []Interval{iv(9, 0, 13, 0)},
		},
		{
			name:  "split shift stays split",
			input: []Interval{iv(14, 0, 18, 0), iv(9, 0, 12, 0)},
			want:  []Interval{iv(9, 0, 12, 0), iv(14, 0, 18, 0)},
		},
		{
			name:  "empty intervals dropped",
			input: []Interval{iv(10, 0, 10, 0), iv(12, 0, 11, 0), iv(9, 0, 9, 30)},
			want:  []Interval{iv(9, 0, 9, 30)},
		},
		{
			name:  "nested interval absorbed",
			input: []Interval{iv(9, 0, 17, 0), iv(10, 0, 11, 0)},
			want:  []Interval{iv(9, 0, 17, 0)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name  string
		input []Interval
		block Interval
		want  []Interval
	}{
		{
			name:  "block in the middle splits in two",
			input: []Interval{iv(9, 0, 17, 0)},
			block: iv(12, 0, 13, 0),
			want:  []Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)},
		},
		{
			name:  "block covers everything",
			input: []Interval{iv(9, 0, 17, 0)},
			block: iv(8, 0, 18, 0),
			want:  []Interval{},
		},
		{
			name:  "block trims the start",
			input: []Interval{iv(9, 0, 17, 0)},
			block: iv(8, 0, 10, 0),
			want:  []Interval{iv(10, 0, 17, 0)},
		},
		{
			name:  "touching block leaves interval intact",
			input: []Interval{iv(9, 0, 12, 0)},
			block: iv(12, 0, 13, 0),
			want:  []Interval{iv(9, 0, 12, 0)},
		},
		{
			name:  "empty block is a no-op",
			input: []Interval{iv(9, 0, 12, 0)},
			block: iv(10, 0, 10, 0),
			want:  []Interval{iv(9, 0, 12, 0)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Subtract(tc.input, tc.block))
		})
	}
}

func TestSubtract_FixedPoint(t *testing.T) {
	a := []Interval{iv(9, 0, 12, 0), iv(8, 0, 10, 0)}
	b := []Interval{iv(11, 30, 17, 0)}
	block := iv(13, 0, 14, 15)

	once := Normalize(Subtract(Normalize(append(a, b...)), block))
	twice := Normalize(Subtract(once, block))

	assert.Equal(t, once, twice)
	assert.Equal(t, []Interval{iv(8, 0, 13, 0), iv(14, 15, 17, 0)}, once)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(at(10, 0), at(11, 0), at(10, 30), at(12, 0)))
	assert.False(t, Overlaps(at(10, 0), at(11, 0), at(11, 0), at(12, 0)))
	assert.False(t, Overlaps(at(11, 0), at(12, 0), at(10, 0), at(11, 0)))
	assert.True(t, Overlaps(at(9, 0), at(17, 0), at(10, 0), at(10, 15)))
}

func TestCovers(t *testing.T) {
	day := []Interval{iv(9, 0, 12, 0), iv(13, 0, 17, 0)}

	assert.True(t, Covers(day, iv(9, 0, 10, 0)))
	assert.True(t, Covers(day, iv(16, 0, 17, 0)))
	assert.False(t, Covers(day, iv(11, 30, 13, 30)))
	assert.False(t, Covers(nil, iv(9, 0, 10, 0)))
}
