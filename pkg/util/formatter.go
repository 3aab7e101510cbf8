// Package util holds small display helpers shared by the command-line
// entrypoints, adapted from the teacher's pkg/util/formatter.go (the
// engineering-notation value formatter cmd/main.go used for every
// printed quantity). The AC-only magnitude/phase/frequency formatters
// are dropped: this module never produces a frequency sweep (see
// DESIGN.md).
package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders value with unit, picking the SI prefix
// (m, u, n, p) that keeps the mantissa in [1, 1000) for magnitudes in
// [1e-12, 1). Magnitudes of 1 or more are printed with no prefix (no k, M,
// ...), and magnitudes below 1e-12 in %e notation.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}
