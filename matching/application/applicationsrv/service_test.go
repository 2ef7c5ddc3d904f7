package applicationsrv

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/application"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

func TestFinalMatchScore(t *testing.T) {
	assert.InDelta(t, 72.0, finalMatchScore(72, 60), 1e-9)

	// Scoring failed but a precomputed baseline exists.
	assert.InDelta(t, 60.0, finalMatchScore(0, 60), 1e-9)

	assert.InDelta(t, 0.0, finalMatchScore(0, 0), 1e-9)
}

type fakeAppRepo struct {
	created []*application.Application
}

func (f *fakeAppRepo) Create(ctx context.Context, app *application.Application) error {
	f.created = append(f.created, app)
	return nil
}

func (f *fakeAppRepo) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	return nil, application.ErrNotFound()
}

func (f *fakeAppRepo) UpdateStatus(ctx context.Context, id kernel.ApplicationID, status application.Status) error {
	return nil
}

func (f *fakeAppRepo) ListForPosting(ctx context.Context, postingID kernel.PostingID, opts kernel.PaginationOptions) (kernel.Paginated[application.CompanyView], error) {
	return kernel.Paginated[application.CompanyView]{}, nil
}

func (f *fakeAppRepo) ListForCandidate(ctx context.Context, candidateID kernel.AccountID, opts kernel.PaginationOptions) (kernel.Paginated[application.StudentView], error) {
	return kernel.Paginated[application.StudentView]{}, nil
}

func (f *fakeAppRepo) ListAllForPosting(ctx context.Context, postingID kernel.PostingID) ([]application.CompanyView, error) {
	return nil, nil
}

type fakeResumeRepo struct {
	byID       map[kernel.ResumeID]*resume.Resume
	activeBase *resume.Resume
}

func (f *fakeResumeRepo) Create(ctx context.Context, r *resume.Resume, deactivateOthers bool) error {
	return nil
}

func (f *fakeResumeRepo) GetByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, resume.ErrNotFound()
}

func (f *fakeResumeRepo) GetActiveBase(ctx context.Context, candidateID kernel.AccountID) (*resume.Resume, error) {
	if f.activeBase != nil {
		return f.activeBase, nil
	}
	return nil, resume.ErrNoActiveResume()
}

func (f *fakeResumeRepo) ListByCandidate(ctx context.Context, candidateID kernel.AccountID) ([]*resume.Resume, error) {
	return nil, nil
}

func (f *fakeResumeRepo) FindByHash(ctx context.Context, candidateID kernel.AccountID, contentHash string) (*resume.Resume, error) {
	return nil, resume.ErrNotFound()
}

func (f *fakeResumeRepo) Update(ctx context.Context, r *resume.Resume) error { return nil }

func (f *fakeResumeRepo) SetActive(ctx context.Context, id kernel.ResumeID, active bool) error {
	return nil
}

func (f *fakeResumeRepo) Delete(ctx context.Context, id kernel.ResumeID) error { return nil }

func (f *fakeResumeRepo) ClearEmbeddingRefs(ctx context.Context) ([]kernel.AccountID, error) {
	return nil, nil
}

type fakePostingRepo struct {
	posting *posting.Posting
}

func (f *fakePostingRepo) Create(ctx context.Context, p *posting.Posting) error { return nil }

func (f *fakePostingRepo) GetByID(ctx context.Context, id kernel.PostingID) (*posting.Posting, error) {
	if f.posting != nil && f.posting.ID == id {
		return f.posting, nil
	}
	return nil, posting.ErrNotFound()
}

func (f *fakePostingRepo) List(ctx context.Context, flt posting.ListFilter, opts kernel.PaginationOptions) (kernel.Paginated[posting.Posting], error) {
	return kernel.Paginated[posting.Posting]{}, nil
}

func (f *fakePostingRepo) ListActive(ctx context.Context) ([]posting.Posting, error) {
	return nil, nil
}

func (f *fakePostingRepo) Update(ctx context.Context, p *posting.Posting) error { return nil }

func (f *fakePostingRepo) SetActive(ctx context.Context, id kernel.PostingID, active bool) error {
	return nil
}

func (f *fakePostingRepo) SetEmbeddingRef(ctx context.Context, id kernel.PostingID, ref string) error {
	return nil
}

func (f *fakePostingRepo) Delete(ctx context.Context, id kernel.PostingID) error { return nil }

type fakeMatchRepo struct {
	baseline *match.Match
}

func (f *fakeMatchRepo) UpsertMany(ctx context.Context, rows []*match.Match) error { return nil }

func (f *fakeMatchRepo) Get(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*match.Match, error) {
	if f.baseline != nil {
		return f.baseline, nil
	}
	return nil, match.ErrNotFound()
}

func (f *fakeMatchRepo) DeleteWhere(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (int64, error) {
	return 0, nil
}

func (f *fakeMatchRepo) QueryForCandidate(ctx context.Context, candidateID kernel.AccountID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.CandidateView], error) {
	return kernel.Paginated[match.CandidateView]{}, nil
}

func (f *fakeMatchRepo) QueryForPosting(ctx context.Context, postingID kernel.PostingID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.PostingView], error) {
	return kernel.Paginated[match.PostingView]{}, nil
}

func (f *fakeMatchRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeVectorStore struct {
	records map[string]vectorstore.Record
}

func (f *fakeVectorStore) Upsert(ctx context.Context, collection vectorstore.Collection, record vectorstore.Record) error {
	return nil
}

func (f *fakeVectorStore) Get(ctx context.Context, collection vectorstore.Collection, id string) (*vectorstore.Record, error) {
	if rec, ok := f.records[id]; ok {
		return &rec, nil
	}
	return nil, vectorstore.ErrRegistry.New(vectorstore.CodeNotFound)
}

func (f *fakeVectorStore) Delete(ctx context.Context, collection vectorstore.Collection, id string) error {
	return nil
}

func (f *fakeVectorStore) Query(ctx context.Context, collection vectorstore.Collection, embedding []float32, k int) ([]vectorstore.QueryResult, error) {
	return nil, nil
}

func (f *fakeVectorStore) Count(ctx context.Context, collection vectorstore.Collection) (int64, error) {
	return 0, nil
}

func (f *fakeVectorStore) Clear(ctx context.Context, collection vectorstore.Collection) (int64, error) {
	return 0, nil
}

type applyFixture struct {
	svc         *ApplicationService
	apps        *fakeAppRepo
	resumes     *fakeResumeRepo
	postings    *fakePostingRepo
	candidateID kernel.AccountID
	postingID   kernel.PostingID
}

func newApplyFixture() *applyFixture {
	candidateID := kernel.NewAccountID()
	postingID := kernel.NewPostingID()

	apps := &fakeAppRepo{}
	resumes := &fakeResumeRepo{
		byID: map[kernel.ResumeID]*resume.Resume{},
		activeBase: &resume.Resume{
			ID:              kernel.NewResumeID(),
			CandidateID:     candidateID,
			Kind:            resume.KindBase,
			ExtractedSkills: []string{"Go", "SQL"},
			EmbeddingRef:    "vec-base",
			Active:          true,
		},
	}
	postings := &fakePostingRepo{posting: &posting.Posting{
		ID:             postingID,
		Title:          "Backend Intern",
		RequiredSkills: []string{"Go"},
		MaxExperience:  2,
		EmbeddingRef:   "vec-posting",
		Active:         true,
	}}

	svc := &ApplicationService{
		apps:     apps,
		resumes:  resumes,
		postings: postings,
		matches: &fakeMatchRepo{baseline: &match.Match{
			CandidateID:    candidateID,
			PostingID:      postingID,
			CompositeScore: 64,
		}},
		vectors: &fakeVectorStore{records: map[string]vectorstore.Record{
			"vec-base":    {ID: "vec-base", Embedding: []float32{1, 0, 0}},
			"vec-posting": {ID: "vec-posting", Embedding: []float32{1, 0, 0}},
		}},
		engine: scoring.NewEngine(),
	}
	return &applyFixture{
		svc:         svc,
		apps:        apps,
		resumes:     resumes,
		postings:    postings,
		candidateID: candidateID,
		postingID:   postingID,
	}
}

func TestApplyRejectsInactivePosting(t *testing.T) {
	f := newApplyFixture()
	f.postings.posting.Active = false

	_, err := f.svc.Apply(context.Background(), f.candidateID, application.ApplyRequest{PostingID: f.postingID})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, application.CodePostingInactive))
	assert.Empty(t, f.apps.created)
}

func TestApplyRejectsForeignTailoredResume(t *testing.T) {
	f := newApplyFixture()
	foreignID := kernel.NewResumeID()
	f.resumes.byID[foreignID] = &resume.Resume{
		ID:                   foreignID,
		CandidateID:          kernel.NewAccountID(),
		Kind:                 resume.KindTailored,
		TailoredForPostingID: f.postingID,
	}

	_, err := f.svc.Apply(context.Background(), f.candidateID, application.ApplyRequest{
		PostingID:        f.postingID,
		TailoredResumeID: foreignID,
	})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, resume.CodeNotOwner))
}

func TestApplyRejectsTailoredForOtherPosting(t *testing.T) {
	f := newApplyFixture()
	tailoredID := kernel.NewResumeID()
	f.resumes.byID[tailoredID] = &resume.Resume{
		ID:                   tailoredID,
		CandidateID:          f.candidateID,
		Kind:                 resume.KindTailored,
		TailoredForPostingID: kernel.NewPostingID(),
	}

	_, err := f.svc.Apply(context.Background(), f.candidateID, application.ApplyRequest{
		PostingID:        f.postingID,
		TailoredResumeID: tailoredID,
	})
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, application.CodeInvalidData))
}

func TestApplyTailoredWithoutEmbeddingFallsBackToBaseline(t *testing.T) {
	f := newApplyFixture()
	tailoredID := kernel.NewResumeID()
	f.resumes.byID[tailoredID] = &resume.Resume{
		ID:                   tailoredID,
		CandidateID:          f.candidateID,
		Kind:                 resume.KindTailored,
		TailoredForPostingID: f.postingID,
	}

	app, err := f.svc.Apply(context.Background(), f.candidateID, application.ApplyRequest{
		PostingID:        f.postingID,
		TailoredResumeID: tailoredID,
	})
	require.NoError(t, err)

	assert.False(t, app.UsedTailoredResume)
	assert.Equal(t, 0, app.ApplicationSimilarityScore)
	assert.Equal(t, 64, app.MatchScore)
	assert.Equal(t, tailoredID, app.ResumeID)
}

func TestApplyScoresSubmittedResume(t *testing.T) {
	f := newApplyFixture()

	app, err := f.svc.Apply(context.Background(), f.candidateID, application.ApplyRequest{PostingID: f.postingID})
	require.NoError(t, err)
	require.Len(t, f.apps.created, 1)

	want, serr := scoring.NewEngine().Score(
		f.resumes.activeBase.ToProfile(),
		f.postings.posting.ToRequirements(),
		[]float32{1, 0, 0}, []float32{1, 0, 0},
	)
	require.NoError(t, serr)

	assert.Equal(t, int(math.Round(want.OverallScore)), app.ApplicationSimilarityScore)
	assert.Equal(t, app.ApplicationSimilarityScore, app.MatchScore)
	assert.False(t, app.UsedTailoredResume)
	assert.Equal(t, application.StatusPending, app.Status)
}
