package posting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	p := Posting{MinExperience: -1}
	p.Normalize()
	assert.Equal(t, DefaultMinExperience, p.MinExperience)
	assert.Equal(t, DefaultMaxExperience, p.MaxExperience)
}

func TestNormalizeKeepsBandOrdered(t *testing.T) {
	p := Posting{MinExperience: 5, MaxExperience: 2}
	p.Normalize()
	assert.Equal(t, 5.0, p.MinExperience)
	assert.Equal(t, 5.0, p.MaxExperience)
}

func TestNormalizeTrimsSkills(t *testing.T) {
	p := Posting{
		MaxExperience:   3,
		RequiredSkills:  []string{" Go ", "", "SQL"},
		PreferredSkills: []string{"  "},
	}
	p.Normalize()
	assert.Equal(t, []string{"Go", "SQL"}, p.RequiredSkills)
	assert.Empty(t, p.PreferredSkills)
}
