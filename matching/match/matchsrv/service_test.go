package matchsrv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleRecs(now time.Time) []Recommendation {
	return []Recommendation{
		{PostingID: "a", Title: "Backend Intern", Location: "Bangalore, India", Score: 91,
			RequiredSkills: []string{"Go", "PostgreSQL", "Docker"},
			MinExperience:  0, PostedAt: now.Add(-2 * 24 * time.Hour).Format(time.RFC3339)},
		{PostingID: "b", Title: "Data Intern", Location: "Remote", Score: 72,
			RequiredSkills: []string{"Python", "Spark"},
			MinExperience:  2, MissingSkills: []string{"Spark"},
			PostedAt: now.Add(-40 * 24 * time.Hour).Format(time.RFC3339)},
		{PostingID: "c", Title: "Android Intern", Location: "Bangalore", Score: 55,
			RequiredSkills: []string{"Kotlin"},
			MinExperience:  0.5, PostedAt: now.Add(-5 * 24 * time.Hour).Format(time.RFC3339)},
	}
}

func TestApplyFilterScoreBand(t *testing.T) {
	now := time.Now().UTC()
	out := ApplyFilter(sampleRecs(now), RecommendFilter{MinScore: 60, MaxScore: 80}, now)
	assert.Len(t, out, 1)
	assert.Equal(t, "Data Intern", out[0].Title)
}

func TestApplyFilterQualifiedOnly(t *testing.T) {
	now := time.Now().UTC()
	out := ApplyFilter(sampleRecs(now), RecommendFilter{QualifiedOnly: true}, now)
	for _, r := range out {
		assert.Empty(t, r.MissingSkills)
	}
	assert.Len(t, out, 2)
}

func TestApplyFilterSkillsSuperset(t *testing.T) {
	now := time.Now().UTC()

	// Every requested skill must be part of the posting's requirements.
	out := ApplyFilter(sampleRecs(now), RecommendFilter{Skills: []string{"go", "docker"}}, now)
	assert.Len(t, out, 1)
	assert.Equal(t, "Backend Intern", out[0].Title)

	out = ApplyFilter(sampleRecs(now), RecommendFilter{Skills: []string{"Go", "Spark"}}, now)
	assert.Empty(t, out)
}

func TestApplyFilterLocationSubstring(t *testing.T) {
	now := time.Now().UTC()
	out := ApplyFilter(sampleRecs(now), RecommendFilter{Location: "bangalore"}, now)
	assert.Len(t, out, 2)
}

func TestApplyFilterPostedWithinDays(t *testing.T) {
	now := time.Now().UTC()
	out := ApplyFilter(sampleRecs(now), RecommendFilter{PostedWithinDays: 7}, now)
	assert.Len(t, out, 2)
	for _, r := range out {
		assert.NotEqual(t, "Data Intern", r.Title)
	}
}

func TestApplyFilterExperienceLevel(t *testing.T) {
	now := time.Now().UTC()
	out := ApplyFilter(sampleRecs(now), RecommendFilter{ExperienceLevel: LevelMid}, now)
	assert.Len(t, out, 1)
	assert.Equal(t, "Data Intern", out[0].Title)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelEntry, LevelFor(0))
	assert.Equal(t, LevelJunior, LevelFor(1))
	assert.Equal(t, LevelMid, LevelFor(2.5))
	assert.Equal(t, LevelSenior, LevelFor(4))
}

func TestSortRecommendations(t *testing.T) {
	now := time.Now().UTC()

	recs := sampleRecs(now)
	SortRecommendations(recs, SortByScore, "")
	assert.Equal(t, []float64{91, 72, 55}, []float64{recs[0].Score, recs[1].Score, recs[2].Score})

	SortRecommendations(recs, SortByTitle, "")
	assert.Equal(t, "Android Intern", recs[0].Title)
	assert.Equal(t, "Backend Intern", recs[1].Title)

	SortRecommendations(recs, SortByPostedAt, "")
	assert.Equal(t, "Backend Intern", recs[0].Title)

	SortRecommendations(recs, SortByScore, OrderAsc)
	assert.Equal(t, []float64{55, 72, 91}, []float64{recs[0].Score, recs[1].Score, recs[2].Score})
}
