package application

import (
	"context"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Repository is the persistence port for applications.
type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id kernel.ApplicationID) (*Application, error)
	UpdateStatus(ctx context.Context, id kernel.ApplicationID, status Status) error

	// ListForPosting returns applications to one posting joined with their
	// candidates, best score first.
	ListForPosting(ctx context.Context, postingID kernel.PostingID, opts kernel.PaginationOptions) (kernel.Paginated[CompanyView], error)

	// ListForCandidate returns one student's applications joined with their
	// postings, newest first.
	ListForCandidate(ctx context.Context, candidateID kernel.AccountID, opts kernel.PaginationOptions) (kernel.Paginated[StudentView], error)

	// ListAllForPosting returns every application row for a posting without
	// pagination, for ranking and export.
	ListAllForPosting(ctx context.Context, postingID kernel.PostingID) ([]CompanyView, error)
}
