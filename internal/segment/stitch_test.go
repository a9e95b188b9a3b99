package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStitch(t *testing.T) {
	tests := []struct {
		name    string
		peaks   []int
		valleys []int
		want    []Cycle
	}{
		{
			name:    "three cycles",
			peaks:   []int{173, 519, 865, 1211, 1557, 1903},
			valleys: []int{0, 346, 692, 1038, 1384, 1730, 2076},
			want: []Cycle{
				{0, 173, 346, 519, 692},
				{692, 865, 1038, 1211, 1384},
				{1384, 1557, 1730, 1903, 2076},
			},
		},
		{
			name:    "trailing half cycle ignored",
			peaks:   []int{10, 30, 50},
			valleys: []int{0, 20, 40, 60},
			want:    []Cycle{{0, 10, 20, 30, 40}},
		},
		{
			name:    "extra valley skipped",
			peaks:   []int{10, 40},
			valleys: []int{0, 20, 25, 50},
			want:    []Cycle{{0, 10, 20, 40, 50}},
		},
		{
			name:    "extra peak skipped",
			peaks:   []int{10, 15, 30},
			valleys: []int{0, 20, 40},
			want:    []Cycle{{0, 10, 20, 30, 40}},
		},
		{
			name:    "peaks before valleys",
			peaks:   []int{1, 2, 3},
			valleys: []int{10, 20, 30},
			want:    nil,
		},
		{
			name:    "too few valleys",
			peaks:   []int{10, 30},
			valleys: []int{0, 20},
			want:    nil,
		},
		{
			name:    "too few peaks",
			peaks:   []int{10},
			valleys: []int{0, 20, 40},
			want:    nil,
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stitch(tt.peaks, tt.valleys)
			assert.Equal(t, tt.want, got)
			for i, c := range got {
				assert.True(t, c.Ordered(), "cycle %d out of order: %+v", i, c)
				if i > 0 {
					assert.GreaterOrEqual(t, c.Valley1, got[i-1].Valley1)
				}
			}
		})
	}
}

func TestCycleOrdered(t *testing.T) {
	assert.True(t, Cycle{1, 2, 3, 4, 5}.Ordered())
	assert.False(t, Cycle{1, 2, 2, 4, 5}.Ordered())
	assert.False(t, Cycle{}.Ordered())
}
