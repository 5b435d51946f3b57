package indicator

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Float is the sample width an indicator is evaluated in.
type Float interface {
	constraints.Float
}

func nan[F Float]() F { return F(math.NaN()) }

func finite[F Float](x F) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func abs[F Float](x F) F {
	if x < 0 {
		return -x
	}
	return x
}

func maxOf[F Float](a, b F) F {
	if a > b {
		return a
	}
	return b
}

func minOf[F Float](a, b F) F {
	if a < b {
		return a
	}
	return b
}

// toF converts a count to F. float32 loses integers above 2^24, which would
// silently skew every divisor derived from the count.
func toF[F Float](n int) (F, error) {
	f := F(n)
	if float64(f) != float64(n) {
		return 0, errorf(ErrConversion, "toF", "%d is not representable at this width", n)
	}
	return f, nil
}

func fill[F Float](dst []F, v F) {
	for i := range dst {
		dst[i] = v
	}
}
