package search

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/synapse/internal/domain"
)

// norm returns the L2 norm of v, accumulated in float64.
func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// cosine returns dot(a, b) / (aNorm * bNorm). Both norms must be non-zero.
func cosine(a, b []float32, aNorm, bNorm float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: query has %d dimensions, candidate has %d",
			domain.ErrVectorDimMismatch, len(a), len(b))
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm), nil
}
