// Package vecmath holds the vector similarity functions shared by the
// ranking stages.
package vecmath

import "math"

// Epsilon is added to cosine denominators so zero vectors score 0 instead
// of dividing by zero.
const Epsilon = 1e-8

// Dot returns the inner product of a and b. Vectors of different length
// return 0; callers validate dimensions at load time.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns dot(a,b) / (|a|*|b| + Epsilon).
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return Dot(a, b) / (Norm(a)*Norm(b) + Epsilon)
}

// MeanCosine returns the mean cosine similarity between v and every vector
// in group. An empty group returns 0.
func MeanCosine(v []float64, group [][]float64) float64 {
	if len(group) == 0 {
		return 0
	}
	nv := Norm(v)
	var sum float64
	for _, g := range group {
		if len(g) != len(v) {
			continue
		}
		sum += Dot(v, g) / (nv*Norm(g) + Epsilon)
	}
	return sum / float64(len(group))
}

// Normalize returns v scaled to unit length. A zero vector is returned as a
// zero vector of the same length.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	n := Norm(v)
	if n == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / n
	}
	return out
}
