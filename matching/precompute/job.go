package precompute

import (
	"context"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// RecomputeJob asks the worker to refresh materialized match rows. Empty
// CandidateIDs and PostingIDs means a full recompute across all active
// students and postings.
type RecomputeJob struct {
	JobID        kernel.JobID       `json:"job_id"`
	CandidateIDs []kernel.AccountID `json:"candidate_ids,omitempty"`
	PostingIDs   []kernel.PostingID `json:"posting_ids,omitempty"`

	// Force additionally wipes the targeted rows up front: the whole
	// table for an unscoped job, whole postings otherwise. A candidate's
	// rows are always replaced during that candidate's recompute.
	Force bool `json:"force"`

	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewJobForCandidate builds a job scoped to one candidate.
func NewJobForCandidate(candidateID kernel.AccountID) RecomputeJob {
	return RecomputeJob{
		JobID:        kernel.NewJobID(),
		CandidateIDs: []kernel.AccountID{candidateID},
		EnqueuedAt:   time.Now().UTC(),
	}
}

// NewJobForPosting builds a job scoped to one posting.
func NewJobForPosting(postingID kernel.PostingID) RecomputeJob {
	return RecomputeJob{
		JobID:      kernel.NewJobID(),
		PostingIDs: []kernel.PostingID{postingID},
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewFullJob builds a job covering every candidate and posting.
func NewFullJob(force bool) RecomputeJob {
	return RecomputeJob{
		JobID:      kernel.NewJobID(),
		Force:      force,
		EnqueuedAt: time.Now().UTC(),
	}
}

// QueueStats describes the state of the recompute queue.
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Delayed    int64 `json:"delayed"`
}

// Enqueuer is the queue port used by the domains that trigger recomputes.
type Enqueuer interface {
	Enqueue(ctx context.Context, job RecomputeJob) error
	EnqueueDelayed(ctx context.Context, job RecomputeJob, delay time.Duration) error
	Stats(ctx context.Context) (QueueStats, error)
}
