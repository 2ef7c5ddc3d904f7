package application

import "github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"

// ApplyRequest is the JSON body for applying to a posting.
type ApplyRequest struct {
	PostingID kernel.PostingID `json:"posting_id"`

	// TailoredResumeID submits a posting-specific resume instead of the
	// active base resume.
	TailoredResumeID kernel.ResumeID `json:"tailored_resume_id,omitempty"`

	CoverLetter string `json:"cover_letter,omitempty"`
}

// UpdateStatusRequest moves an application to accepted or rejected.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}
