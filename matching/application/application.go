package application

import (
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application is one student's submission to one posting. A candidate can
// apply to a posting at most once.
type Application struct {
	ID          kernel.ApplicationID `json:"id"`
	CandidateID kernel.AccountID     `json:"candidate_id"`
	PostingID   kernel.PostingID     `json:"posting_id"`
	ResumeID    kernel.ResumeID      `json:"resume_id"`

	Status Status `json:"status"`

	// MatchScore is the stored score: the submitted resume's score, or the
	// precomputed baseline when scoring produced nothing. Ranking blends
	// tailored submissions with the baseline on read.
	MatchScore int `json:"match_score"`

	// ApplicationSimilarityScore is the raw score of the resume actually
	// submitted.
	ApplicationSimilarityScore int `json:"application_similarity_score"`

	UsedTailoredResume bool   `json:"used_tailored_resume"`
	CoverLetter        string `json:"cover_letter,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyView is an application joined with its candidate, shown to the
// posting's company.
type CompanyView struct {
	Application
	CandidateName   string   `json:"candidate_name"`
	CandidateEmail  string   `json:"candidate_email"`
	CandidatePhone  string   `json:"candidate_phone,omitempty"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
}

// StudentView is an application joined with its posting, shown to the
// applying student.
type StudentView struct {
	Application
	PostingTitle string `json:"posting_title"`
	CompanyName  string `json:"company_name"`
}
