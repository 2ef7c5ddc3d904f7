package precompute

import (
	"context"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/embeddings"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

// Stats summarizes one recompute run.
type Stats struct {
	JobID      kernel.JobID  `json:"job_id"`
	Candidates int           `json:"candidates"`
	Postings   int           `json:"postings"`
	Computed   int           `json:"computed"`
	Skipped    int           `json:"skipped"`
	Deleted    int64         `json:"deleted"`
	Duration   time.Duration `json:"duration"`
}

// Service materializes match rows for candidate-posting pairs. It is driven
// by the queue worker and by the admin recompute endpoint.
type Service struct {
	accounts account.Repository
	resumes  resume.Repository
	postings posting.Repository
	matches  match.Repository
	vectors  vectorstore.Store
	embedder *embeddings.Generator
	engine   *scoring.Engine
}

func NewService(
	accounts account.Repository,
	resumes resume.Repository,
	postings posting.Repository,
	matches match.Repository,
	vectors vectorstore.Store,
	embedder *embeddings.Generator,
) *Service {
	return &Service{
		accounts: accounts,
		resumes:  resumes,
		postings: postings,
		matches:  matches,
		vectors:  vectors,
		embedder: embedder,
		engine:   scoring.NewEngine(),
	}
}

// Run executes one recompute job. Per-pair failures are logged and skipped
// so one bad record never sinks the batch.
func (s *Service) Run(ctx context.Context, job RecomputeJob) (*Stats, error) {
	started := time.Now()
	stats := &Stats{JobID: job.JobID}

	candidates, err := s.resolveCandidates(ctx, job)
	if err != nil {
		return nil, err
	}
	postings, err := s.resolvePostings(ctx, job)
	if err != nil {
		return nil, err
	}
	stats.Candidates = len(candidates)
	stats.Postings = len(postings)

	if job.Force {
		stats.Deleted = s.deleteScoped(ctx, job)
	}

	for i := range candidates {
		stats.Deleted += s.deleteCandidateRows(ctx, candidates[i].ID, job.PostingIDs)
		computed, skipped := s.computeForCandidate(ctx, &candidates[i], postings)
		stats.Computed += computed
		stats.Skipped += skipped
	}

	stats.Duration = time.Since(started)
	logx.Infof("recompute done: job=%s candidates=%d postings=%d computed=%d skipped=%d took=%s",
		job.JobID, stats.Candidates, stats.Postings, stats.Computed, stats.Skipped, stats.Duration)
	return stats, nil
}

func (s *Service) resolveCandidates(ctx context.Context, job RecomputeJob) ([]account.Account, error) {
	if len(job.CandidateIDs) == 0 {
		return s.accounts.ListStudentsWithActiveResume(ctx)
	}
	out := make([]account.Account, 0, len(job.CandidateIDs))
	for _, id := range job.CandidateIDs {
		acc, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			logx.Warnf("recompute: candidate lookup failed: candidate=%s err=%v", id, err)
			continue
		}
		if acc.Active {
			out = append(out, *acc)
		}
	}
	return out, nil
}

func (s *Service) resolvePostings(ctx context.Context, job RecomputeJob) ([]posting.Posting, error) {
	if len(job.PostingIDs) == 0 {
		return s.postings.ListActive(ctx)
	}
	out := make([]posting.Posting, 0, len(job.PostingIDs))
	for _, id := range job.PostingIDs {
		p, err := s.postings.GetByID(ctx, id)
		if err != nil {
			logx.Warnf("recompute: posting lookup failed: posting=%s err=%v", id, err)
			continue
		}
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

// deleteScoped handles forced wipes beyond the per-candidate replace: the
// full table for an unscoped force, otherwise whole postings.
func (s *Service) deleteScoped(ctx context.Context, job RecomputeJob) int64 {
	if len(job.CandidateIDs) == 0 && len(job.PostingIDs) == 0 {
		n, err := s.matches.DeleteWhere(ctx, "", "")
		if err != nil {
			logx.Warnf("recompute: full delete failed: %v", err)
		}
		return n
	}
	var deleted int64
	for _, id := range job.PostingIDs {
		n, err := s.matches.DeleteWhere(ctx, "", id)
		if err != nil {
			logx.Warnf("recompute: posting delete failed: posting=%s err=%v", id, err)
		}
		deleted += n
	}
	return deleted
}

// deleteCandidateRows clears a candidate's rows before their recompute so
// stale pairs never outlive a resume change. Jobs scoped to postings only
// clear the pairs they are about to rescore.
func (s *Service) deleteCandidateRows(ctx context.Context, id kernel.AccountID, postingIDs []kernel.PostingID) int64 {
	if len(postingIDs) == 0 {
		n, err := s.matches.DeleteWhere(ctx, id, "")
		if err != nil {
			logx.Warnf("recompute: candidate delete failed: candidate=%s err=%v", id, err)
		}
		return n
	}
	var deleted int64
	for _, pid := range postingIDs {
		n, err := s.matches.DeleteWhere(ctx, id, pid)
		if err != nil {
			logx.Warnf("recompute: candidate delete failed: candidate=%s posting=%s err=%v", id, pid, err)
		}
		deleted += n
	}
	return deleted
}

// computeForCandidate scores one candidate against every posting and bulk
// upserts the resulting rows.
func (s *Service) computeForCandidate(ctx context.Context, acc *account.Account, postings []posting.Posting) (computed, skipped int) {
	base, err := s.resumes.GetActiveBase(ctx, acc.ID)
	if err != nil {
		logx.Warnf("recompute: no active resume: candidate=%s err=%v", acc.ID, err)
		return 0, len(postings)
	}
	if !base.HasEmbedding() {
		logx.Warnf("recompute: resume has no embedding: candidate=%s resume=%s", acc.ID, base.ID)
		return 0, len(postings)
	}

	candidateRec, err := s.vectors.Get(ctx, vectorstore.CollectionResumes, base.EmbeddingRef)
	if err != nil {
		logx.Warnf("recompute: resume vector missing: candidate=%s err=%v", acc.ID, err)
		return 0, len(postings)
	}

	profile := base.ToProfile()
	now := time.Now().UTC()

	rows := make([]*match.Match, 0, len(postings))
	for i := range postings {
		p := &postings[i]
		postingEmb, err := s.postingEmbedding(ctx, p)
		if err != nil {
			logx.Warnf("recompute: posting embedding unavailable: posting=%s err=%v", p.ID, err)
			skipped++
			continue
		}

		result, err := s.engine.Score(profile, p.ToRequirements(), candidateRec.Embedding, postingEmb)
		if err != nil {
			logx.Warnf("recompute: scoring failed: candidate=%s posting=%s err=%v", acc.ID, p.ID, err)
			skipped++
			continue
		}

		rows = append(rows, &match.Match{
			ID:              kernel.NewMatchID(),
			CandidateID:     acc.ID,
			PostingID:       p.ID,
			ResumeID:        base.ID,
			CompositeScore:  result.OverallScore,
			SemanticScore:   result.Components.SemanticSimilarity,
			SkillsScore:     result.Components.SkillsMatch,
			ExperienceScore: result.Components.ExperienceMatch,
			MatchedSkills:   result.MatchedSkills,
			MissingSkills:   result.MissingSkills,
			LastComputed:    now,
		})
	}

	if len(rows) > 0 {
		if err := s.matches.UpsertMany(ctx, rows); err != nil {
			logx.Errorf("recompute: upsert failed: candidate=%s rows=%d err=%v", acc.ID, len(rows), err)
			return 0, skipped + len(rows)
		}
	}
	return len(rows), skipped
}

// postingEmbedding fetches the posting vector, re-embedding on the spot when
// it is missing, so stale postings heal during recompute.
func (s *Service) postingEmbedding(ctx context.Context, p *posting.Posting) ([]float32, error) {
	if p.HasEmbedding() {
		rec, err := s.vectors.Get(ctx, vectorstore.CollectionPostings, p.EmbeddingRef)
		if err == nil {
			return rec.Embedding, nil
		}
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, p.EmbeddingText())
	if err != nil {
		return nil, err
	}
	rec := vectorstore.Record{
		ID:        p.ID.String(),
		Embedding: vec,
		Document:  p.EmbeddingText(),
		Metadata:  map[string]string{"company_id": p.CompanyID.String(), "title": p.Title},
	}
	if err := s.vectors.Upsert(ctx, vectorstore.CollectionPostings, rec); err != nil {
		return nil, err
	}
	p.EmbeddingRef = p.ID.String()
	if err := s.postings.SetEmbeddingRef(ctx, p.ID, p.EmbeddingRef); err != nil {
		logx.Warnf("recompute: embedding ref save failed: posting=%s err=%v", p.ID, err)
	}
	return vec, nil
}
