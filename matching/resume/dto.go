package resume

import "github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"

// UploadRequest carries one resume upload through the processing pipeline.
type UploadRequest struct {
	CandidateID kernel.AccountID
	FileName    string
	Data        []byte

	// DeactivateOthers is true for base uploads; tailored uploads leave the
	// candidate's base untouched.
	DeactivateOthers     bool
	Kind                 Kind
	TailoredForPostingID kernel.PostingID
	BaseResumeID         kernel.ResumeID
}

// UploadResponse is returned to the uploader once processing finishes.
type UploadResponse struct {
	ResumeID        kernel.ResumeID `json:"resume_id"`
	StorageKey      string          `json:"storage_key"`
	StructuredData  *ParsedData     `json:"structured_data"`
	SkillCount      int             `json:"skill_count"`
	ExperienceCount int             `json:"experience_count"`
	ProjectCount    int             `json:"project_count"`
	Reused          bool            `json:"reused"`
}

// SummaryResponse is the LLM-written candidate summary with its evidence.
type SummaryResponse struct {
	ResumeID kernel.ResumeID `json:"resume_id"`
	Summary  string          `json:"summary"`
}

// AchievementsResponse lists key achievements extracted from the resume.
type AchievementsResponse struct {
	ResumeID     kernel.ResumeID `json:"resume_id"`
	Achievements []string        `json:"achievements"`
}
