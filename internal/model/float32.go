//go:build float32

package model

// Float is the sample width the outer layers evaluate at.
type Float = float32

const Tolerance = 1e-4
