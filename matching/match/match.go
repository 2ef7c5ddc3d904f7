package match

import (
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Match is one materialized candidate-posting score row, refreshed by the
// pre-computer whenever either side changes.
type Match struct {
	ID          kernel.MatchID   `json:"id"`
	CandidateID kernel.AccountID `json:"candidate_id"`
	PostingID   kernel.PostingID `json:"posting_id"`
	ResumeID    kernel.ResumeID  `json:"resume_id"`

	CompositeScore  float64 `json:"composite_score"`
	SemanticScore   float64 `json:"semantic_score"`
	SkillsScore     float64 `json:"skills_score"`
	ExperienceScore float64 `json:"experience_score"`

	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`

	LastComputed time.Time `json:"last_computed"`
}

// CandidateView is a match row joined with its posting, shown to students.
type CandidateView struct {
	Match
	PostingTitle   string   `json:"posting_title"`
	CompanyName    string   `json:"company_name"`
	Location       string   `json:"location,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	MinExperience  float64  `json:"min_experience"`
	PostedAt       string   `json:"posted_at"`
}

// PostingView is a match row joined with its candidate, shown to companies.
type PostingView struct {
	Match
	CandidateName   string  `json:"candidate_name"`
	CandidateEmail  string  `json:"candidate_email"`
	ExperienceYears float64 `json:"experience_years"`
}
