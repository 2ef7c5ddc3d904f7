package account

import (
	"context"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Repository is the persistence port for accounts.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id kernel.AccountID) (*Account, error)
	GetByEmail(ctx context.Context, email kernel.Email) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	SetActive(ctx context.Context, id kernel.AccountID, active bool) error

	// UpdateCachedProfile refreshes the skills/experience mirrors that the
	// resume pipeline derives from the active base resume.
	UpdateCachedProfile(ctx context.Context, id kernel.AccountID, skills []string, experienceYears float64) error

	// UpdateContactInfo refreshes the duplicate-detection surface from a
	// freshly parsed resume.
	UpdateContactInfo(ctx context.Context, id kernel.AccountID, phone, linkedin, github string) error

	// ListStudentsWithActiveResume returns the active student accounts that
	// currently hold an active base resume. Used by duplicate detection and
	// the pre-computer.
	ListStudentsWithActiveResume(ctx context.Context) ([]Account, error)
}
