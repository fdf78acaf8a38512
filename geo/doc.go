// Package geo provides great-circle distance functions for road graph
// coordinates.
//
// All functions share the DistanceFunc signature, so callers can swap the
// exact haversine for the precomputed-table variant without other changes:
//
//	d := geo.Haversine(48.78, 9.18, 48.74, 9.10)
//
//	t := geo.NewTable()
//	d = t.Distance(48.78, 9.18, 48.74, 9.10)
//
// Distances are in meters. Coordinates are float32 degrees; intermediate
// math runs in float64 and the result is narrowed to float32.
package geo
