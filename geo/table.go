package geo

import "math"

const (
	// DefaultTableMax is the largest √a covered by the default table.
	// √0.005 spans roughly 900 km, which covers any single-country graph.
	DefaultTableMax = 0.07071067811865475 // math.Sqrt(0.005)

	// DefaultTablePrecision is the number of table slots per unit of √a.
	DefaultTablePrecision = 1e7
)

// Table is a precomputed lookup table for the central-angle step of the
// haversine formula, indexed by √a. Lookups outside the table fall back to
// the exact computation.
//
// A Table is immutable after construction and safe for concurrent use.
type Table struct {
	lut  []float32
	prec float64
}

// NewTable builds a table with the default range and precision
// (about 700k entries, 2.8 MB).
func NewTable() *Table {
	return NewTableWithRange(DefaultTableMax, DefaultTablePrecision)
}

// NewTableWithRange builds a table covering √a in [0, maxSqrtA) with prec
// slots per unit. It panics if either argument is not positive.
func NewTableWithRange(maxSqrtA, prec float64) *Table {
	if maxSqrtA <= 0 || prec <= 0 {
		panic("geo: table range and precision must be positive")
	}

	lut := make([]float32, int(maxSqrtA*prec))
	for i := range lut {
		s := float64(i) / prec
		lut[i] = float32(EarthRadius * centralAngle(s*s))
	}

	return &Table{lut: lut, prec: prec}
}

// Len returns the number of table entries.
func (t *Table) Len() int { return len(t.lut) }

// Distance returns the table-approximated great-circle distance in meters.
// It satisfies DistanceFunc as a method value: geo.DistanceFunc(t.Distance).
func (t *Table) Distance(lat1, lon1, lat2, lon2 float32) float32 {
	a := haversineTerm(lat1, lon1, lat2, lon2)
	idx := math.Sqrt(a) * t.prec
	if idx >= 0 && idx < float64(len(t.lut)) {
		return t.lut[int(idx)]
	}
	return float32(EarthRadius * centralAngle(a))
}
