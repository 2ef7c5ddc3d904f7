package vectorstore

// equalDistanceScore is used when min-max scaling is degenerate: a single
// result, or all neighbors at the same distance.
const equalDistanceScore = 85.0

// NormalizeRetrievalScores converts the cosine distances of one query's
// result set into 0-100 relevance scores. Scores are min-max scaled across
// the returned set so the closest neighbor lands at 95 and the farthest at
// 35, clamped to [0, 100].
func NormalizeRetrievalScores(distances []float64) []float64 {
	if len(distances) == 0 {
		return nil
	}

	minD, maxD := distances[0], distances[0]
	for _, d := range distances[1:] {
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
	}

	scores := make([]float64, len(distances))
	if maxD == minD {
		for i := range scores {
			scores[i] = equalDistanceScore
		}
		return scores
	}

	spread := maxD - minD
	for i, d := range distances {
		score := 35 + 60*(1-(d-minD)/spread)
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		scores[i] = score
	}
	return scores
}
