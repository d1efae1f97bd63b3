package vector

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// MaxCosineDistance is the upper bound of 1 - cos(a, b).
const MaxCosineDistance = 2.0

// CosineDistance returns 1 - cos(a, b) in [0, 2].
// ok is false when lengths differ or either vector has zero norm: such pairs never match.
func CosineDistance(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	d := 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	// float rounding can push identical vectors slightly below zero
	return math.Min(math.Max(d, 0), MaxCosineDistance), true
}

// IsZero reports a vector with zero norm (or no components).
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// CheckDimensions validates vector length against the deployment dimension.
func CheckDimensions(v []float32, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrVectorDimMismatch, want, len(v))
	}
	return nil
}
