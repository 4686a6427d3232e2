package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDisplayScore 内部[0,1]分值换算到0-100展示刻度，历史0-100裸分值原样保留
func TestDisplayScore(t *testing.T) {
	cases := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"zero", 0, 0},
		{"internal_scale", 0.7234, 72.3},
		{"internal_full", 1.0, 100},
		{"internal_rounding", 0.666, 66.6},
		{"legacy_scale_passthrough", 72.5, 72.5},
		{"legacy_scale_rounding", 88.44, 88.4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, displayScore(tc.in), 1e-9)
		})
	}
}
