package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		page, size       int
		wantOff, wantLim int
	}{
		{name: "defaults", page: 0, size: 0, wantOff: 0, wantLim: DefaultPageSize},
		{name: "second page", page: 2, size: 5, wantOff: 5, wantLim: 5},
		{name: "too large", page: 1, size: 1000, wantOff: 0, wantLim: DefaultPageSize},
		{name: "last page in window", page: 100, size: 100, wantOff: 9900, wantLim: 100},
		{name: "huge page is capped", page: 1_000_000_000_000_000_000, size: 10, wantOff: MaxOffset - 10, wantLim: 10},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOff, off)
			assert.Equal(t, tt.wantLim, lim)
		})
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Window(items, 2, 2))
	assert.Equal(t, []int{5}, Window(items, 4, 10))
	assert.Equal(t, []int{}, Window(items, 5, 10))
	assert.Equal(t, []int{}, Window(items, -3, 2))
	assert.Equal(t, []int{4, 5}, Window(items, 3, int(^uint(0)>>1)))
}
