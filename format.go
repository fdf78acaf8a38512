package navigo

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as h:mm:ss, truncating fractions.
// Negative and NaN inputs render as 0:00:00.
func FormatDuration(seconds float32) string {
	if !(seconds > 0) {
		return "0:00:00"
	}
	total := int64(math.Floor(float64(seconds)))
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
