package resumesrv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
)

func TestTotalExperienceMonthsMergesOverlaps(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []resume.Experience{
		{StartDate: "2022-01", EndDate: "2023-01"},
		{StartDate: "2022-06", EndDate: "2023-06"},
	}
	// Jan 2022 through Jun 2023 inclusive.
	assert.Equal(t, 18, TotalExperienceMonths(entries, now))
}

func TestTotalExperienceMonthsDisjointSpans(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []resume.Experience{
		{StartDate: "2020-01", EndDate: "2020-06"},
		{StartDate: "2021-01", EndDate: "2021-03"},
	}
	assert.Equal(t, 6+3, TotalExperienceMonths(entries, now))
}

func TestTotalExperienceMonthsPresent(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []resume.Experience{
		{StartDate: "2026-01", EndDate: "Present"},
	}
	assert.Equal(t, 8, TotalExperienceMonths(entries, now))

	entries[0].EndDate = "current"
	assert.Equal(t, 8, TotalExperienceMonths(entries, now))
}

func TestTotalExperienceMonthsYearOnly(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []resume.Experience{
		{StartDate: "2022", EndDate: "2022"},
	}
	// January through December.
	assert.Equal(t, 12, TotalExperienceMonths(entries, now))
}

func TestTotalExperienceMonthsSkipsUnparseable(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []resume.Experience{
		{StartDate: "sometime", EndDate: "2023-01"},
		{StartDate: "2023-05", EndDate: "2023-02"},
		{StartDate: "2024-01", EndDate: "2024-03"},
	}
	assert.Equal(t, 3, TotalExperienceMonths(entries, now))
}

func TestDedupeSkills(t *testing.T) {
	out := DedupeSkills([]string{"Python", "python", " React ", "react", "", "Go"})
	assert.Equal(t, []string{"Python", "React", "Go"}, out)
}

func TestDeriveFieldsUnionsProjectTechnologies(t *testing.T) {
	data := &resume.ParsedData{
		Skills: resume.SkillGroups{
			Technical: []string{"Python", "Django"},
			Soft:      []string{"Communication"},
		},
		Projects: []resume.Project{
			{Name: "api", Technologies: []string{"python", "PostgreSQL"}},
		},
		Experience: []resume.Experience{
			{StartDate: "2023-01", EndDate: "2024-06"},
		},
	}
	DeriveFields(data, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, []string{"Python", "Django", "Communication", "PostgreSQL"}, data.AllSkills)
	assert.Equal(t, 18, data.TotalExperienceMonths)
	assert.InDelta(t, 1.5, data.TotalExperienceYears, 0.001)
}

func TestFallbackExtract(t *testing.T) {
	text := "Jane Doe\njane.doe@example.com\n555-867-5309\nWorked with Python, Docker and PostgreSQL."
	data := FallbackExtract(text)
	require.NotNil(t, data)

	assert.Equal(t, "jane.doe@example.com", data.PersonalInfo.Email)
	assert.Equal(t, "555-867-5309", data.PersonalInfo.Phone)
	assert.Contains(t, data.Skills.Technical, "Python")
	assert.Contains(t, data.Skills.Technical, "Docker")
	assert.Contains(t, data.Skills.Technical, "PostgreSQL")
	assert.Equal(t, "Resume parsing failed. Manual review required.", data.Summary)
	assert.Empty(t, data.Experience)
}
