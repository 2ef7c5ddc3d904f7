package match

import (
	"context"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Filter narrows match queries. Zero values mean no constraint.
type Filter struct {
	MinScore float64
	MaxScore float64
}

// Repository is the persistence port for materialized match rows.
type Repository interface {
	// UpsertMany writes a batch of rows, replacing any existing row for the
	// same candidate-posting pair.
	UpsertMany(ctx context.Context, matches []*Match) error

	Get(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*Match, error)

	// DeleteWhere removes rows matching the given sides. An empty id means
	// that side is unconstrained; both empty deletes everything.
	DeleteWhere(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (int64, error)

	// QueryForCandidate lists rows for one candidate joined with their
	// active postings, best first.
	QueryForCandidate(ctx context.Context, candidateID kernel.AccountID, f Filter, opts kernel.PaginationOptions) (kernel.Paginated[CandidateView], error)

	// QueryForPosting lists rows for one posting joined with their active
	// candidates, best first.
	QueryForPosting(ctx context.Context, postingID kernel.PostingID, f Filter, opts kernel.PaginationOptions) (kernel.Paginated[PostingView], error)

	Count(ctx context.Context) (int64, error)
}
