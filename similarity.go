package textcompare

import "math"

// SimilarityFunc scores two embedding vectors. Higher means more similar.
type SimilarityFunc func(a, b []float32) float64

// Cosine calculates cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// Zero vectors and mismatched dimensions score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0.0
	}
	return dot / denom
}

// Dot calculates the dot product between two vectors.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Euclidean calculates negative Euclidean distance for similarity ranking.
// Returns negative distance so higher values indicate more similarity.
func Euclidean(a, b []float32) float64 {
	if len(a) != len(b) {
		return -math.Inf(1)
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return -math.Sqrt(sum)
}

// Angular converts cosine similarity to angular similarity in [0, 1].
// Angular similarity discriminates better than cosine for vectors that
// are already close together.
func Angular(a, b []float32) float64 {
	cos := Cosine(a, b)
	// Guard against rounding pushing the cosine outside Acos's domain.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - math.Acos(cos)/math.Pi
}

// clamp01 clips a score into the [0, 1] range.
func clamp01(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
