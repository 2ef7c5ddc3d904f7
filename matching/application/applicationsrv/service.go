package applicationsrv

import (
	"context"
	"math"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/application"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

// ApplicationService owns the apply flow and application lifecycle.
type ApplicationService struct {
	apps     application.Repository
	resumes  resume.Repository
	postings posting.Repository
	matches  match.Repository
	vectors  vectorstore.Store
	engine   *scoring.Engine
}

func NewApplicationService(
	apps application.Repository,
	resumes resume.Repository,
	postings posting.Repository,
	matches match.Repository,
	vectors vectorstore.Store,
) *ApplicationService {
	return &ApplicationService{
		apps:     apps,
		resumes:  resumes,
		postings: postings,
		matches:  matches,
		vectors:  vectors,
		engine:   scoring.NewEngine(),
	}
}

// Apply submits a student's application. The submitted resume is scored
// against the posting and the raw score is persisted; tailored submissions
// are blended with the precomputed baseline later, at ranking time.
func (s *ApplicationService) Apply(ctx context.Context, candidateID kernel.AccountID, req application.ApplyRequest) (*application.Application, error) {
	p, err := s.postings.GetByID(ctx, req.PostingID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, application.ErrPostingInactive().WithDetail("posting_id", p.ID)
	}

	base, err := s.resumes.GetActiveBase(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	baseline := 0.0
	if row, err := s.matches.Get(ctx, candidateID, p.ID); err == nil {
		baseline = row.CompositeScore
	}

	used := base
	usedTailored := false
	if !req.TailoredResumeID.IsEmpty() {
		tailored, err := s.tailoredResume(ctx, candidateID, req.TailoredResumeID, p.ID)
		if err != nil {
			return nil, err
		}
		if tailored.HasEmbedding() {
			used = tailored
			usedTailored = true
		} else {
			logx.Warnf("tailored resume has no embedding, scoring from baseline: resume=%s", tailored.ID)
			used = tailored
		}
	}

	appScore := 0.0
	if used.HasEmbedding() {
		score, err := s.scoreResume(ctx, used, p)
		if err != nil {
			logx.Warnf("application scoring failed, falling back to baseline: candidate=%s posting=%s err=%v",
				candidateID, p.ID, err)
		} else {
			appScore = score
		}
	}

	app := &application.Application{
		ID:                         kernel.NewApplicationID(),
		CandidateID:                candidateID,
		PostingID:                  p.ID,
		ResumeID:                   used.ID,
		Status:                     application.StatusPending,
		MatchScore:                 int(math.Round(finalMatchScore(appScore, baseline))),
		ApplicationSimilarityScore: int(math.Round(appScore)),
		UsedTailoredResume:         usedTailored,
		CoverLetter:                req.CoverLetter,
		CreatedAt:                  time.Now().UTC(),
		UpdatedAt:                  time.Now().UTC(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// finalMatchScore picks the stored match score: the fresh application score,
// or the precomputed baseline when scoring produced nothing usable.
func finalMatchScore(appScore, baseline float64) float64 {
	if appScore == 0 && baseline > 0 {
		return baseline
	}
	return appScore
}

func (s *ApplicationService) tailoredResume(ctx context.Context, candidateID kernel.AccountID, id kernel.ResumeID, postingID kernel.PostingID) (*resume.Resume, error) {
	r, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CandidateID != candidateID {
		return nil, resume.ErrNotOwner()
	}
	if r.Kind != resume.KindTailored || r.TailoredForPostingID != postingID {
		return nil, application.ErrInvalidData().
			WithDetail("resume_id", id).
			WithDetail("reason", "resume is not tailored for this posting")
	}
	return r, nil
}

func (s *ApplicationService) scoreResume(ctx context.Context, r *resume.Resume, p *posting.Posting) (float64, error) {
	candidateRec, err := s.vectors.Get(ctx, vectorstore.CollectionResumes, r.EmbeddingRef)
	if err != nil {
		return 0, err
	}
	if !p.HasEmbedding() {
		return 0, scoring.ErrEmbeddingMissing().WithDetail("posting_id", p.ID)
	}
	postingRec, err := s.vectors.Get(ctx, vectorstore.CollectionPostings, p.EmbeddingRef)
	if err != nil {
		return 0, err
	}

	result, err := s.engine.Score(r.ToProfile(), p.ToRequirements(), candidateRec.Embedding, postingRec.Embedding)
	if err != nil {
		return 0, err
	}
	return result.OverallScore, nil
}

// UpdateStatus moves an application to accepted or rejected. Only the
// posting's company may do this.
func (s *ApplicationService) UpdateStatus(ctx context.Context, companyID kernel.AccountID, id kernel.ApplicationID, status application.Status) (*application.Application, error) {
	if !status.Valid() {
		return nil, application.ErrInvalidStatus().WithDetail("status", status)
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.postings.GetByID(ctx, app.PostingID)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		return nil, application.ErrNotOwner()
	}

	if err := s.apps.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	app.Status = status
	return app, nil
}

// ListForPosting returns a posting's applications for its owning company.
func (s *ApplicationService) ListForPosting(ctx context.Context, companyID kernel.AccountID, postingID kernel.PostingID, opts kernel.PaginationOptions) (kernel.Paginated[application.CompanyView], error) {
	p, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return kernel.Paginated[application.CompanyView]{}, err
	}
	if p.CompanyID != companyID {
		return kernel.Paginated[application.CompanyView]{}, application.ErrNotOwner()
	}
	return s.apps.ListForPosting(ctx, postingID, opts)
}

// ListMine returns the student's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, candidateID kernel.AccountID, opts kernel.PaginationOptions) (kernel.Paginated[application.StudentView], error) {
	return s.apps.ListForCandidate(ctx, candidateID, opts)
}
