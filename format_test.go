package navigo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float32
		want    string
	}{
		{0, "0:00:00"},
		{0.9, "0:00:00"},
		{59.99, "0:00:59"},
		{60, "0:01:00"},
		{3661, "1:01:01"},
		{36000, "10:00:00"},
		{-5, "0:00:00"},
		{float32(math.NaN()), "0:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%v", tt.seconds)
	}
}
