package resume

import (
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Kind distinguishes a candidate's primary resume from per-application
// tailored uploads.
type Kind string

const (
	KindBase     Kind = "base"
	KindTailored Kind = "tailored"
)

// Resume is one uploaded document plus everything derived from it.
type Resume struct {
	ID          kernel.ResumeID  `json:"id"`
	CandidateID kernel.AccountID `json:"candidate_id"`

	FileName   string `json:"file_name"`
	StorageKey string `json:"storage_key,omitempty"`
	LocalPath  string `json:"local_path,omitempty"`

	ParsedText      string      `json:"-"`
	ParsedData      *ParsedData `json:"parsed_data,omitempty"`
	ExtractedSkills []string    `json:"extracted_skills"`
	ContentHash     string      `json:"content_hash"`
	EmbeddingRef    string      `json:"embedding_ref,omitempty"`

	Kind                 Kind             `json:"kind"`
	TailoredForPostingID kernel.PostingID `json:"tailored_for_posting_id,omitempty"`
	BaseResumeID         kernel.ResumeID  `json:"base_resume_id,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParsedData is the structured extraction of a resume. Every field is always
// present in the JSON blob; values may be empty.
type ParsedData struct {
	PersonalInfo          PersonalInfo    `json:"personal_info"`
	Skills                SkillGroups     `json:"skills"`
	AllSkills             []string        `json:"all_skills"`
	Experience            []Experience    `json:"experience"`
	Education             []Education     `json:"education"`
	Projects              []Project       `json:"projects"`
	Certifications        []Certification `json:"certifications"`
	TotalExperienceMonths int             `json:"total_experience_months"`
	TotalExperienceYears  float64         `json:"total_experience_years"`
	Summary               string          `json:"summary"`
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

type SkillGroups struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

type Experience struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	StartDate    string   `json:"start_date"` // YYYY-MM or YYYY
	EndDate      string   `json:"end_date"`   // YYYY-MM, YYYY or "Present"
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type Education struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Grade       string `json:"grade,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date,omitempty"`
}

// IsBase reports whether this is the candidate's primary resume kind.
func (r *Resume) IsBase() bool { return r.Kind == KindBase }

// HasEmbedding reports whether a vector exists for this resume.
func (r *Resume) HasEmbedding() bool { return r.EmbeddingRef != "" }

// EmbeddingText is the canonical text embedded for this resume: the full
// parsed text plus a skills tail so skill terms weigh into the vector.
func (r *Resume) EmbeddingText() string {
	if len(r.ExtractedSkills) == 0 {
		return r.ParsedText
	}
	return r.ParsedText + "\n\nSkills: " + strings.Join(r.ExtractedSkills, ", ")
}

// Degrees lists the degree strings from the extraction.
func (d *ParsedData) Degrees() []string {
	degrees := make([]string, 0, len(d.Education))
	for _, e := range d.Education {
		if e.Degree != "" {
			degrees = append(degrees, e.Degree)
		}
	}
	return degrees
}

// ToProfile projects the extraction into the scoring engine's input.
func (r *Resume) ToProfile() scoring.CandidateProfile {
	profile := scoring.CandidateProfile{
		Skills: r.ExtractedSkills,
	}
	if r.ParsedData != nil {
		profile.ExperienceYears = r.ParsedData.TotalExperienceYears
		profile.Degrees = r.ParsedData.Degrees()
		profile.ProjectCount = len(r.ParsedData.Projects)
		profile.CertificationCount = len(r.ParsedData.Certifications)
	}
	return profile
}
