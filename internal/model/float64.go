//go:build !float32

package model

// Float is the sample width the outer layers evaluate at. Build with the
// float32 tag to halve memory for long series.
type Float = float64

// Tolerance is the relative difference under which two evaluations of the
// same indicator are considered equal.
const Tolerance = 1e-9
