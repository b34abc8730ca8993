package index

import "math"

// Cosine computes cosine similarity between two vectors of equal length.
// A zero vector has similarity 0 with everything. Identical non-zero vectors
// score exactly 1.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLengthMismatch
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na * nb)
	if den == 0 {
		return 0, nil
	}
	return max(-1, min(1, dot/den)), nil
}

// NormalizeL2 returns a new vector scaled to unit L2 norm.
// A zero vector is returned as a zero copy.
func NormalizeL2(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
