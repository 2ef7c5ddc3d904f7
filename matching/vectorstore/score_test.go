package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRetrievalScoresSpreadsMinMax(t *testing.T) {
	scores := NormalizeRetrievalScores([]float64{0.2, 0.5, 0.8})
	require.Len(t, scores, 3)
	assert.InDelta(t, 95, scores[0], 1e-9)
	assert.InDelta(t, 65, scores[1], 1e-9)
	assert.InDelta(t, 35, scores[2], 1e-9)
}

func TestNormalizeRetrievalScoresSingleResult(t *testing.T) {
	scores := NormalizeRetrievalScores([]float64{0.42})
	assert.Equal(t, []float64{85}, scores)
}

func TestNormalizeRetrievalScoresEqualDistances(t *testing.T) {
	scores := NormalizeRetrievalScores([]float64{0.3, 0.3, 0.3})
	assert.Equal(t, []float64{85, 85, 85}, scores)
}

func TestNormalizeRetrievalScoresEmpty(t *testing.T) {
	assert.Nil(t, NormalizeRetrievalScores(nil))
}

func TestListRoundTrip(t *testing.T) {
	assert.Equal(t, "go,python", JoinList([]string{"go", "python"}))
	assert.Equal(t, []string{"go", "python"}, SplitList("go, python"))
	assert.Nil(t, SplitList(""))
}
