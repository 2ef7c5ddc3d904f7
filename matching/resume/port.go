package resume

import (
	"context"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Repository is the persistence port for resumes.
type Repository interface {
	// Create inserts a resume. When deactivateOthers is true the
	// candidate's other active base resumes are deactivated in the same
	// transaction, preserving the one-active-base invariant.
	Create(ctx context.Context, r *Resume, deactivateOthers bool) error

	GetByID(ctx context.Context, id kernel.ResumeID) (*Resume, error)
	GetActiveBase(ctx context.Context, candidateID kernel.AccountID) (*Resume, error)
	ListByCandidate(ctx context.Context, candidateID kernel.AccountID) ([]*Resume, error)

	// FindByHash locates a candidate's resume with identical extracted
	// text, used to short-circuit re-uploads.
	FindByHash(ctx context.Context, candidateID kernel.AccountID, contentHash string) (*Resume, error)

	Update(ctx context.Context, r *Resume) error
	SetActive(ctx context.Context, id kernel.ResumeID, active bool) error
	Delete(ctx context.Context, id kernel.ResumeID) error

	// ClearEmbeddingRefs nulls every embedding reference and returns the
	// candidate ids that were affected, so match rows can be dropped too.
	ClearEmbeddingRefs(ctx context.Context) ([]kernel.AccountID, error)
}
