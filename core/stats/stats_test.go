package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngkatanBuckets(t *testing.T) {
	got := angkatanBuckets(map[int]int{2023: 4, 0: 2, 2021: 1, 2022: 3})
	assert.Equal(t, []Bucket{
		{"2021", 1},
		{"2022", 3},
		{"2023", 4},
		{"Unknown", 2},
	}, got)

	assert.Empty(t, angkatanBuckets(nil))
}

func TestDayBuckets(t *testing.T) {
	got := dayBuckets(map[string]int{
		"SABTU":   1,
		"senin":   2,
		"SENIN ":  1,
		"RABU":    5,
		"":        1,
		"Minggu":  1,
		"JUMAT":   2,
		"selasa ": 3,
	})
	assert.Equal(t, []Bucket{
		{"Senin", 3},
		{"Selasa", 3},
		{"Rabu", 5},
		{"Jumat", 2},
		{"Sabtu", 1},
		{"Minggu", 1},
		{"Unknown", 1},
	}, got)
}
