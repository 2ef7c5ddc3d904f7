package posting

import (
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

const (
	DefaultMinExperience = 0.0
	DefaultMaxExperience = 10.0
)

// Posting is one internship listing published by a company.
type Posting struct {
	ID        kernel.PostingID `json:"id"`
	CompanyID kernel.AccountID `json:"company_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`

	MinExperience     float64 `json:"min_experience"`
	MaxExperience     float64 `json:"max_experience"`
	RequiredEducation string  `json:"required_education,omitempty"`

	Location       string `json:"location,omitempty"`
	DurationMonths int    `json:"duration_months,omitempty"`
	Stipend        string `json:"stipend,omitempty"`

	ContentHash  string `json:"content_hash,omitempty"`
	EmbeddingRef string `json:"embedding_ref,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEmbedding reports whether a vector exists for this posting.
func (p *Posting) HasEmbedding() bool { return p.EmbeddingRef != "" }

// EmbeddingText is the canonical text embedded for this posting.
func (p *Posting) EmbeddingText() string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(p.Title)
	b.WriteString("\n\nDescription: ")
	b.WriteString(p.Description)
	if len(p.RequiredSkills) > 0 {
		b.WriteString("\n\nRequired Skills: ")
		b.WriteString(strings.Join(p.RequiredSkills, ", "))
	}
	return b.String()
}

// ToRequirements projects the posting into the scoring engine's input.
func (p *Posting) ToRequirements() scoring.PostingRequirements {
	return scoring.PostingRequirements{
		RequiredSkills:    p.RequiredSkills,
		PreferredSkills:   p.PreferredSkills,
		MinExperience:     p.MinExperience,
		MaxExperience:     p.MaxExperience,
		RequiredEducation: p.RequiredEducation,
	}
}

// Normalize fills experience band defaults, keeps the band ordered and trims
// skills.
func (p *Posting) Normalize() {
	if p.MaxExperience <= 0 {
		p.MaxExperience = DefaultMaxExperience
	}
	if p.MinExperience < 0 {
		p.MinExperience = DefaultMinExperience
	}
	if p.MinExperience > p.MaxExperience {
		p.MaxExperience = p.MinExperience
	}
	p.RequiredSkills = trimAll(p.RequiredSkills)
	p.PreferredSkills = trimAll(p.PreferredSkills)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
