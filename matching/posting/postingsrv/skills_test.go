package postingsrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordExtractSkillsSections(t *testing.T) {
	description := `Backend Intern

Required qualifications:
- Python and Django experience
- PostgreSQL

Nice to have:
- Docker
- AWS`

	out := KeywordExtractSkills(description)

	assert.ElementsMatch(t, []string{"Python", "Django", "PostgreSQL"}, out.RequiredSkills)
	assert.ElementsMatch(t, []string{"Docker", "AWS"}, out.PreferredSkills)
}

func TestKeywordExtractSkillsDefaultsToRequired(t *testing.T) {
	out := KeywordExtractSkills("We use React and TypeScript every day.")

	assert.ElementsMatch(t, []string{"React", "TypeScript"}, out.RequiredSkills)
	assert.Empty(t, out.PreferredSkills)
}

func TestKeywordExtractSkillsSectionFlipsBack(t *testing.T) {
	description := `Preferred:
- Kubernetes

Required:
- Go`

	out := KeywordExtractSkills(description)

	assert.ElementsMatch(t, []string{"Go"}, out.RequiredSkills)
	assert.ElementsMatch(t, []string{"Kubernetes"}, out.PreferredSkills)
}

func TestDedupeAcrossRequiredWins(t *testing.T) {
	required, preferred := dedupeAcross(
		[]string{"python", "Python", "react.js"},
		[]string{"PYTHON", "Docker", "docker"},
	)

	assert.Equal(t, []string{"Python", "React"}, required)
	assert.Equal(t, []string{"Docker"}, preferred)
}
