package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVec(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestScoreExactFit(t *testing.T) {
	engine := NewEngine()

	candidate := CandidateProfile{
		Skills:          []string{"Python", "FastAPI", "Docker"},
		ExperienceYears: 2,
		Degrees:         []string{"Bachelor of Technology"},
	}
	posting := PostingRequirements{
		RequiredSkills:    []string{"Python", "FastAPI"},
		MinExperience:     1,
		MaxExperience:     3,
		RequiredEducation: "Bachelor",
	}

	emb := unitVec(8, 0)
	result, err := engine.Score(candidate, posting, emb, emb)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.OverallScore, 90.0)
	assert.ElementsMatch(t, []string{"Python", "FastAPI"}, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, 1.0, result.ExperienceGap)
	assert.Equal(t, 100.0, result.Components.SkillsMatch)
	assert.Equal(t, 100.0, result.Components.ExperienceMatch)
}

func TestExperienceMatchBandEdges(t *testing.T) {
	score, gap := ExperienceMatch(1, 1, 3)
	assert.Equal(t, 100.0, score)
	assert.Equal(t, 0.0, gap)

	score, _ = ExperienceMatch(3, 1, 3)
	assert.Equal(t, 100.0, score)

	score, gap = ExperienceMatch(0.5, 1, 3)
	assert.Equal(t, 90.0, score)
	assert.Equal(t, -0.5, gap)

	score, gap = ExperienceMatch(0.8, 1, 3)
	assert.Equal(t, 90.0, score)
	assert.InDelta(t, -0.2, gap, 1e-9)
}

func TestExperienceMatchUnderqualified(t *testing.T) {
	// Deficit of 1.2 years lands in the (1, 2] bucket.
	score, gap := ExperienceMatch(0.8, 2, 4)
	assert.Equal(t, 50.0, score)
	assert.InDelta(t, -1.2, gap, 1e-9)

	score, _ = ExperienceMatch(0, 3, 5)
	assert.Equal(t, 30.0, score)
}

func TestExperienceMatchOverqualified(t *testing.T) {
	score, gap := ExperienceMatch(12, 1, 3)
	assert.Equal(t, 85.0, score)
	assert.Equal(t, 11.0, gap)
}

func TestSkillsMatchSubstring(t *testing.T) {
	breakdown := SkillsMatch([]string{"Node"}, []string{"Node.js"}, nil)
	assert.Equal(t, 100.0, breakdown.Score)
	assert.Equal(t, []string{"Node.js"}, breakdown.Matched)
	assert.Empty(t, breakdown.Missing)
}

func TestSkillsMatchSubstringFalsePositive(t *testing.T) {
	// Substring matching is deliberate and has known false positives:
	// Java matches JavaScript. Documented behavior, not a bug.
	breakdown := SkillsMatch([]string{"JavaScript"}, []string{"Java"}, nil)
	assert.Equal(t, 100.0, breakdown.Score)
	assert.Equal(t, []string{"Java"}, breakdown.Matched)
}

func TestSkillsMatchRequiredAndPreferred(t *testing.T) {
	breakdown := SkillsMatch(
		[]string{"python", "docker"},
		[]string{"Python", "Kubernetes"},
		[]string{"Docker", "Terraform"},
	)
	// 70 * 1/2 + 30 * 1/2
	assert.Equal(t, 50.0, breakdown.Score)
	assert.ElementsMatch(t, []string{"Python", "Docker"}, breakdown.Matched)
	assert.Equal(t, []string{"Kubernetes"}, breakdown.Missing)
}

func TestSkillsMatchEmptyRequired(t *testing.T) {
	breakdown := SkillsMatch([]string{"Go"}, nil, []string{"Go"})
	assert.Equal(t, 100.0, breakdown.Score)
	assert.Equal(t, []string{"Go"}, breakdown.Matched)
}

func TestSkillsMatchMonotoneInCandidateSkills(t *testing.T) {
	required := []string{"Python", "Go", "SQL"}
	smaller := SkillsMatch([]string{"Python"}, required, nil)
	larger := SkillsMatch([]string{"Python", "Go"}, required, nil)
	assert.GreaterOrEqual(t, larger.Score, smaller.Score)
}

func TestEducationMatch(t *testing.T) {
	assert.Equal(t, 70.0, EducationMatch([]string{"Bachelor of Science"}, ""))
	assert.Equal(t, 70.0, EducationMatch(nil, "Bachelor"))
	assert.Equal(t, 100.0, EducationMatch([]string{"Master of Science"}, "Bachelor"))
	assert.Equal(t, 100.0, EducationMatch([]string{"Bachelor of Engineering"}, "bachelor"))
	assert.Equal(t, 80.0, EducationMatch([]string{"Diploma in CS"}, "Bachelor"))
	assert.Equal(t, 50.0, EducationMatch([]string{"Certificate Course"}, "Master"))
	assert.Equal(t, 100.0, EducationMatch([]string{"PhD in Physics"}, "doctorate"))
}

func TestProjectsCertsScore(t *testing.T) {
	assert.Equal(t, 0.0, ProjectsCertsScore(0, 0))
	assert.Equal(t, 34.0, ProjectsCertsScore(2, 1))
	// Saturates at 5 projects and 4 certifications.
	assert.Equal(t, 100.0, ProjectsCertsScore(5, 4))
	assert.Equal(t, 100.0, ProjectsCertsScore(50, 40))
}

func TestSemanticSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	score, err := SemanticSimilarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 100, score, 1e-9)

	orthogonal := []float32{0, 1, 0}
	score, err = SemanticSimilarity(a, orthogonal)
	require.NoError(t, err)
	assert.InDelta(t, 0, score, 1e-9)

	// Opposite vectors floor at zero rather than going negative.
	opposite := []float32{-1, 0, 0}
	score, err = SemanticSimilarity(a, opposite)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestSemanticSimilarityMissingVector(t *testing.T) {
	_, err := SemanticSimilarity(nil, []float32{1})
	assert.Error(t, err)

	_, err = SemanticSimilarity([]float32{0, 0}, []float32{1, 1})
	assert.Error(t, err)
}

func TestTemplateExplanationTiers(t *testing.T) {
	strong := TemplateExplanation(&Result{OverallScore: 85, MatchedSkills: []string{"Go", "SQL", "Docker", "K8s"}})
	assert.Contains(t, strong, "Strong")
	assert.Contains(t, strong, "Go, SQL, Docker")
	assert.NotContains(t, strong, "K8s")

	moderate := TemplateExplanation(&Result{OverallScore: 65})
	assert.Contains(t, moderate, "Moderate")

	weak := TemplateExplanation(&Result{OverallScore: 40, MissingSkills: []string{"Rust"}})
	assert.Contains(t, weak, "Weak")
	assert.Contains(t, weak, "Rust")
}
