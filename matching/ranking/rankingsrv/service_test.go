package rankingsrv

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

func sampleRanked() []RankedCandidate {
	return []RankedCandidate{
		{Name: "Asha", MatchScore: 88, ExperienceYears: 1.5, EducationLevel: "Master",
			MatchedSkills: []string{"Python", "Django", "PostgreSQL"}, AppliedAt: "2026-08-10"},
		{Name: "Ravi", MatchScore: 67, ExperienceYears: 3, EducationLevel: "Bachelor",
			MatchedSkills: []string{"Python"}, Flagged: true, FlagReason: "Same Mobile number",
			AppliedAt: "2026-08-12"},
		{Name: "Meera", MatchScore: 45, ExperienceYears: 0.5, EducationLevel: "Diploma",
			MatchedSkills: []string{"Java"}, AppliedAt: "2026-08-01"},
	}
}

func TestBlendScores(t *testing.T) {
	assert.InDelta(t, 86.0, BlendScores(90, 70), 1e-9)
	assert.InDelta(t, 80.0, BlendScores(80, 80), 1e-9)
	assert.InDelta(t, 16.0, BlendScores(0, 80), 1e-9)
}

func TestApplyRankFilterScoreBand(t *testing.T) {
	out := ApplyRankFilter(sampleRanked(), RankFilter{MinScore: 60, MaxScore: 80})
	require.Len(t, out, 1)
	assert.Equal(t, "Ravi", out[0].Name)
}

func TestApplyRankFilterExperienceBand(t *testing.T) {
	out := ApplyRankFilter(sampleRanked(), RankFilter{MinExperience: 1, MaxExperience: 2})
	require.Len(t, out, 1)
	assert.Equal(t, "Asha", out[0].Name)
}

func TestApplyRankFilterMustHaveSkills(t *testing.T) {
	out := ApplyRankFilter(sampleRanked(), RankFilter{MustHaveSkills: []string{"python", "Django"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Asha", out[0].Name)

	// Filter skills substring-match candidate skills.
	out = ApplyRankFilter(sampleRanked(), RankFilter{MustHaveSkills: []string{"postgres"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Asha", out[0].Name)
}

func TestApplyRankFilterMinEducation(t *testing.T) {
	out := ApplyRankFilter(sampleRanked(), RankFilter{MinEducation: "Bachelor"})
	assert.Len(t, out, 2)
	for _, rc := range out {
		assert.NotEqual(t, "Meera", rc.Name)
	}
}

func TestApplyRankFilterExcludeFlaggedKeepsAnnotation(t *testing.T) {
	ranked := sampleRanked()

	out := ApplyRankFilter(ranked, RankFilter{ExcludeFlagged: true})
	assert.Len(t, out, 2)

	// The unfiltered list still carries the flag annotation.
	assert.True(t, ranked[1].Flagged)
	assert.Equal(t, "Same Mobile number", ranked[1].FlagReason)
}

func TestSortRankedDefaults(t *testing.T) {
	ranked := sampleRanked()

	SortRanked(ranked, SortByScore, "")
	assert.Equal(t, []int{88, 67, 45}, []int{ranked[0].MatchScore, ranked[1].MatchScore, ranked[2].MatchScore})

	SortRanked(ranked, SortByExperience, "")
	assert.Equal(t, "Ravi", ranked[0].Name)

	SortRanked(ranked, SortByName, "")
	assert.Equal(t, "Asha", ranked[0].Name)

	SortRanked(ranked, SortByAppliedAt, "")
	assert.Equal(t, "Ravi", ranked[0].Name)
}

func TestSortRankedExplicitOrder(t *testing.T) {
	ranked := sampleRanked()

	SortRanked(ranked, SortByScore, OrderAsc)
	assert.Equal(t, "Meera", ranked[0].Name)

	SortRanked(ranked, SortByName, OrderDesc)
	assert.Equal(t, "Ravi", ranked[0].Name)
}

func TestScoreFillBands(t *testing.T) {
	assert.Equal(t, fillGreen, scoreFill(80))
	assert.Equal(t, fillAmber, scoreFill(79))
	assert.Equal(t, fillAmber, scoreFill(60))
	assert.Equal(t, fillRed, scoreFill(59))
}

func TestBuildCSV(t *testing.T) {
	data, err := buildCSV(sampleRanked())
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "Candidate Name,Email,Phone,Match Score %")
	assert.Contains(t, text, "Asha")
	assert.Contains(t, text, "Python, Django, PostgreSQL")
}

type rankAppRepo struct {
	views []application.CompanyView
}

func (f *rankAppRepo) Create(ctx context.Context, app *application.Application) error { return nil }

func (f *rankAppRepo) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	return nil, application.ErrNotFound()
}

func (f *rankAppRepo) UpdateStatus(ctx context.Context, id kernel.ApplicationID, status application.Status) error {
	return nil
}

func (f *rankAppRepo) ListForPosting(ctx context.Context, postingID kernel.PostingID, opts kernel.PaginationOptions) (kernel.Paginated[application.CompanyView], error) {
	return kernel.Paginated[application.CompanyView]{}, nil
}

func (f *rankAppRepo) ListForCandidate(ctx context.Context, candidateID kernel.AccountID, opts kernel.PaginationOptions) (kernel.Paginated[application.StudentView], error) {
	return kernel.Paginated[application.StudentView]{}, nil
}

func (f *rankAppRepo) ListAllForPosting(ctx context.Context, postingID kernel.PostingID) ([]application.CompanyView, error) {
	return f.views, nil
}

type rankAccountRepo struct{}

func (f *rankAccountRepo) Create(ctx context.Context, acc *account.Account) error { return nil }

func (f *rankAccountRepo) GetByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	return nil, account.ErrNotFound()
}

func (f *rankAccountRepo) GetByEmail(ctx context.Context, email kernel.Email) (*account.Account, error) {
	return nil, account.ErrNotFound()
}

func (f *rankAccountRepo) Update(ctx context.Context, acc *account.Account) error { return nil }

func (f *rankAccountRepo) SetActive(ctx context.Context, id kernel.AccountID, active bool) error {
	return nil
}

func (f *rankAccountRepo) UpdateCachedProfile(ctx context.Context, id kernel.AccountID, skills []string, experienceYears float64) error {
	return nil
}

func (f *rankAccountRepo) UpdateContactInfo(ctx context.Context, id kernel.AccountID, phone, linkedin, github string) error {
	return nil
}

func (f *rankAccountRepo) ListStudentsWithActiveResume(ctx context.Context) ([]account.Account, error) {
	return nil, nil
}

type rankResumeRepo struct {
	byID map[kernel.ResumeID]*resume.Resume
}

func (f *rankResumeRepo) Create(ctx context.Context, r *resume.Resume, deactivateOthers bool) error {
	return nil
}

func (f *rankResumeRepo) GetByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, resume.ErrNotFound()
}

func (f *rankResumeRepo) GetActiveBase(ctx context.Context, candidateID kernel.AccountID) (*resume.Resume, error) {
	return nil, resume.ErrNoActiveResume()
}

func (f *rankResumeRepo) ListByCandidate(ctx context.Context, candidateID kernel.AccountID) ([]*resume.Resume, error) {
	return nil, nil
}

func (f *rankResumeRepo) FindByHash(ctx context.Context, candidateID kernel.AccountID, contentHash string) (*resume.Resume, error) {
	return nil, resume.ErrNotFound()
}

func (f *rankResumeRepo) Update(ctx context.Context, r *resume.Resume) error { return nil }

func (f *rankResumeRepo) SetActive(ctx context.Context, id kernel.ResumeID, active bool) error {
	return nil
}

func (f *rankResumeRepo) Delete(ctx context.Context, id kernel.ResumeID) error { return nil }

func (f *rankResumeRepo) ClearEmbeddingRefs(ctx context.Context) ([]kernel.AccountID, error) {
	return nil, nil
}

type rankMatchRepo struct {
	baseline *match.Match
}

func (f *rankMatchRepo) UpsertMany(ctx context.Context, rows []*match.Match) error { return nil }

func (f *rankMatchRepo) Get(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*match.Match, error) {
	if f.baseline != nil {
		return f.baseline, nil
	}
	return nil, match.ErrNotFound()
}

func (f *rankMatchRepo) DeleteWhere(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (int64, error) {
	return 0, nil
}

func (f *rankMatchRepo) QueryForCandidate(ctx context.Context, candidateID kernel.AccountID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.CandidateView], error) {
	return kernel.Paginated[match.CandidateView]{}, nil
}

func (f *rankMatchRepo) QueryForPosting(ctx context.Context, postingID kernel.PostingID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.PostingView], error) {
	return kernel.Paginated[match.PostingView]{}, nil
}

func (f *rankMatchRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type rankPostingRepo struct {
	posting *posting.Posting
}

func (f *rankPostingRepo) Create(ctx context.Context, p *posting.Posting) error { return nil }

func (f *rankPostingRepo) GetByID(ctx context.Context, id kernel.PostingID) (*posting.Posting, error) {
	if f.posting != nil && f.posting.ID == id {
		return f.posting, nil
	}
	return nil, posting.ErrNotFound()
}

func (f *rankPostingRepo) List(ctx context.Context, flt posting.ListFilter, opts kernel.PaginationOptions) (kernel.Paginated[posting.Posting], error) {
	return kernel.Paginated[posting.Posting]{}, nil
}

func (f *rankPostingRepo) ListActive(ctx context.Context) ([]posting.Posting, error) {
	return nil, nil
}

func (f *rankPostingRepo) Update(ctx context.Context, p *posting.Posting) error { return nil }

func (f *rankPostingRepo) SetActive(ctx context.Context, id kernel.PostingID, active bool) error {
	return nil
}

func (f *rankPostingRepo) SetEmbeddingRef(ctx context.Context, id kernel.PostingID, ref string) error {
	return nil
}

func (f *rankPostingRepo) Delete(ctx context.Context, id kernel.PostingID) error { return nil }

type rankVectorStore struct {
	records map[string]vectorstore.Record
}

func (f *rankVectorStore) Upsert(ctx context.Context, collection vectorstore.Collection, record vectorstore.Record) error {
	return nil
}

func (f *rankVectorStore) Get(ctx context.Context, collection vectorstore.Collection, id string) (*vectorstore.Record, error) {
	if rec, ok := f.records[id]; ok {
		return &rec, nil
	}
	return nil, vectorstore.ErrRegistry.New(vectorstore.CodeNotFound)
}

func (f *rankVectorStore) Delete(ctx context.Context, collection vectorstore.Collection, id string) error {
	return nil
}

func (f *rankVectorStore) Query(ctx context.Context, collection vectorstore.Collection, embedding []float32, k int) ([]vectorstore.QueryResult, error) {
	return nil, nil
}

func (f *rankVectorStore) Count(ctx context.Context, collection vectorstore.Collection) (int64, error) {
	return 0, nil
}

func (f *rankVectorStore) Clear(ctx context.Context, collection vectorstore.Collection) (int64, error) {
	return 0, nil
}

func TestRankRescoresTailoredApplicants(t *testing.T) {
	companyID := kernel.NewAccountID()
	candidateID := kernel.NewAccountID()
	postingID := kernel.NewPostingID()
	tailoredID := kernel.NewResumeID()

	p := &posting.Posting{
		ID:             postingID,
		CompanyID:      companyID,
		Title:          "Backend Intern",
		RequiredSkills: []string{"Go"},
		MaxExperience:  2,
		EmbeddingRef:   "vec-posting",
		Active:         true,
	}
	tailored := &resume.Resume{
		ID:              tailoredID,
		CandidateID:     candidateID,
		Kind:            resume.KindTailored,
		ExtractedSkills: []string{"Go", "SQL"},
		EmbeddingRef:    "vec-tailored",
	}
	view := application.CompanyView{
		Application: application.Application{
			ID:          kernel.NewApplicationID(),
			CandidateID: candidateID,
			PostingID:   postingID,
			ResumeID:    tailoredID,
			Status:      application.StatusPending,
			// Stale scores frozen at apply time; ranking must not trust them.
			MatchScore:                 50,
			ApplicationSimilarityScore: 50,
			UsedTailoredResume:         true,
			CreatedAt:                  time.Now().UTC(),
		},
		CandidateName:  "Asha Rao",
		CandidateEmail: "asha@example.com",
	}

	candidateEmb := []float32{1, 0, 0}
	postingEmb := []float32{1, 0, 0}
	baseline := 60.0

	svc := &RankingService{
		apps:     &rankAppRepo{views: []application.CompanyView{view}},
		accounts: &rankAccountRepo{},
		resumes:  &rankResumeRepo{byID: map[kernel.ResumeID]*resume.Resume{tailoredID: tailored}},
		matches: &rankMatchRepo{baseline: &match.Match{
			CandidateID:    candidateID,
			PostingID:      postingID,
			CompositeScore: baseline,
		}},
		postings: &rankPostingRepo{posting: p},
		vectors: &rankVectorStore{records: map[string]vectorstore.Record{
			"vec-tailored": {ID: "vec-tailored", Embedding: candidateEmb},
			"vec-posting":  {ID: "vec-posting", Embedding: postingEmb},
		}},
		engine: scoring.NewEngine(),
	}

	ranked, err := svc.Rank(context.Background(), companyID, postingID,
		RankFilter{OnlyApplicants: true}, SortByScore, "")
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	fresh, serr := scoring.NewEngine().Score(tailored.ToProfile(), p.ToRequirements(), candidateEmb, postingEmb)
	require.NoError(t, serr)

	want := int(math.Round(BlendScores(fresh.OverallScore, baseline)))
	assert.Equal(t, want, ranked[0].MatchScore)
	assert.Equal(t, int(math.Round(fresh.OverallScore)), ranked[0].ApplicationSimilarityScore)
	assert.NotEqual(t, 50, ranked[0].MatchScore)
}

func TestRankTailoredWithoutVectorFallsBackToBaseline(t *testing.T) {
	companyID := kernel.NewAccountID()
	candidateID := kernel.NewAccountID()
	postingID := kernel.NewPostingID()
	tailoredID := kernel.NewResumeID()

	p := &posting.Posting{
		ID:            postingID,
		CompanyID:     companyID,
		Title:         "Backend Intern",
		MaxExperience: 2,
		Active:        true,
	}
	view := application.CompanyView{
		Application: application.Application{
			ID:                 kernel.NewApplicationID(),
			CandidateID:        candidateID,
			PostingID:          postingID,
			ResumeID:           tailoredID,
			Status:             application.StatusPending,
			MatchScore:         72,
			UsedTailoredResume: true,
			CreatedAt:          time.Now().UTC(),
		},
		CandidateName: "Ravi Kumar",
	}

	svc := &RankingService{
		apps:     &rankAppRepo{views: []application.CompanyView{view}},
		accounts: &rankAccountRepo{},
		resumes: &rankResumeRepo{byID: map[kernel.ResumeID]*resume.Resume{
			tailoredID: {ID: tailoredID, CandidateID: candidateID, Kind: resume.KindTailored},
		}},
		matches:  &rankMatchRepo{baseline: &match.Match{CompositeScore: 64}},
		postings: &rankPostingRepo{posting: p},
		vectors:  &rankVectorStore{},
		engine:   scoring.NewEngine(),
	}

	ranked, err := svc.Rank(context.Background(), companyID, postingID,
		RankFilter{OnlyApplicants: true}, SortByScore, "")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 64, ranked[0].MatchScore)
}

func TestExportFileName(t *testing.T) {
	name := exportFileName("Backend Intern (Remote)", "csv")
	assert.Regexp(t, `^Backend_Intern_Remote_\d{8}_\d{6}\.csv$`, name)

	name = exportFileName("   ", "xlsx")
	assert.Regexp(t, `^applicants_\d{8}_\d{6}\.xlsx$`, name)
}
