package account

import (
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Account is a registered user: a student candidate, a company, or an admin.
// Students carry cached mirrors of their active resume's extraction (Skills,
// TotalExperienceYears) so ranking queries avoid re-reading parsed blobs.
type Account struct {
	ID           kernel.AccountID `json:"id"`
	Email        kernel.Email     `json:"email"`
	PasswordHash string           `json:"-"`
	FullName     string           `json:"full_name"`
	Role         auth.Role        `json:"role"`

	// Student contact surface, used by duplicate detection.
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`

	// Cached from the active base resume.
	Skills               []string `json:"skills,omitempty"`
	TotalExperienceYears float64  `json:"total_experience_years"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStudent reports whether this account can upload resumes and apply.
func (a *Account) IsStudent() bool { return a.Role == auth.RoleStudent }

// IsCompany reports whether this account can own postings.
func (a *Account) IsCompany() bool { return a.Role == auth.RoleCompany }
