package posting

import (
	"context"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// ListFilter narrows posting listings. Zero values mean no constraint.
type ListFilter struct {
	CompanyID  kernel.AccountID
	ActiveOnly bool
	Search     string
}

// Repository is the persistence port for postings.
type Repository interface {
	Create(ctx context.Context, p *Posting) error
	GetByID(ctx context.Context, id kernel.PostingID) (*Posting, error)
	List(ctx context.Context, f ListFilter, opts kernel.PaginationOptions) (kernel.Paginated[Posting], error)

	// ListActive returns every active posting, used by the pre-computer.
	ListActive(ctx context.Context) ([]Posting, error)

	Update(ctx context.Context, p *Posting) error
	SetActive(ctx context.Context, id kernel.PostingID, active bool) error
	SetEmbeddingRef(ctx context.Context, id kernel.PostingID, ref string) error
	Delete(ctx context.Context, id kernel.PostingID) error
}
