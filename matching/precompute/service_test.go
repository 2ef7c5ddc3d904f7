package precompute

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

type deleteCall struct {
	candidateID kernel.AccountID
	postingID   kernel.PostingID
}

type fakeMatchRepo struct {
	deletes  []deleteCall
	upserted int
}

func (f *fakeMatchRepo) UpsertMany(ctx context.Context, rows []*match.Match) error {
	f.upserted += len(rows)
	return nil
}

func (f *fakeMatchRepo) Get(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*match.Match, error) {
	return nil, match.ErrNotFound()
}

func (f *fakeMatchRepo) DeleteWhere(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (int64, error) {
	f.deletes = append(f.deletes, deleteCall{candidateID: candidateID, postingID: postingID})
	return 1, nil
}

func (f *fakeMatchRepo) QueryForCandidate(ctx context.Context, candidateID kernel.AccountID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.CandidateView], error) {
	return kernel.Paginated[match.CandidateView]{}, nil
}

func (f *fakeMatchRepo) QueryForPosting(ctx context.Context, postingID kernel.PostingID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.PostingView], error) {
	return kernel.Paginated[match.PostingView]{}, nil
}

func (f *fakeMatchRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeAccountRepo struct {
	students []account.Account
}

func (f *fakeAccountRepo) Create(ctx context.Context, acc *account.Account) error { return nil }

func (f *fakeAccountRepo) GetByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	for i := range f.students {
		if f.students[i].ID == id {
			return &f.students[i], nil
		}
	}
	return nil, account.ErrNotFound()
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email kernel.Email) (*account.Account, error) {
	return nil, account.ErrNotFound()
}

func (f *fakeAccountRepo) Update(ctx context.Context, acc *account.Account) error { return nil }

func (f *fakeAccountRepo) SetActive(ctx context.Context, id kernel.AccountID, active bool) error {
	return nil
}

func (f *fakeAccountRepo) UpdateCachedProfile(ctx context.Context, id kernel.AccountID, skills []string, experienceYears float64) error {
	return nil
}

func (f *fakeAccountRepo) UpdateContactInfo(ctx context.Context, id kernel.AccountID, phone, linkedin, github string) error {
	return nil
}

func (f *fakeAccountRepo) ListStudentsWithActiveResume(ctx context.Context) ([]account.Account, error) {
	return f.students, nil
}

type fakeResumeRepo struct {
	active map[kernel.AccountID]*resume.Resume
}

func (f *fakeResumeRepo) Create(ctx context.Context, r *resume.Resume, deactivateOthers bool) error {
	return nil
}

func (f *fakeResumeRepo) GetByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	return nil, resume.ErrNotFound()
}

func (f *fakeResumeRepo) GetActiveBase(ctx context.Context, candidateID kernel.AccountID) (*resume.Resume, error) {
	if r, ok := f.active[candidateID]; ok {
		return r, nil
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
	postings []posting.Posting
}

func (f *fakePostingRepo) Create(ctx context.Context, p *posting.Posting) error { return nil }

func (f *fakePostingRepo) GetByID(ctx context.Context, id kernel.PostingID) (*posting.Posting, error) {
	for i := range f.postings {
		if f.postings[i].ID == id {
			return &f.postings[i], nil
		}
	}
	return nil, posting.ErrNotFound()
}

func (f *fakePostingRepo) List(ctx context.Context, flt posting.ListFilter, opts kernel.PaginationOptions) (kernel.Paginated[posting.Posting], error) {
	return kernel.Paginated[posting.Posting]{}, nil
}

func (f *fakePostingRepo) ListActive(ctx context.Context) ([]posting.Posting, error) {
	return f.postings, nil
}

func (f *fakePostingRepo) Update(ctx context.Context, p *posting.Posting) error { return nil }

func (f *fakePostingRepo) SetActive(ctx context.Context, id kernel.PostingID, active bool) error {
	return nil
}

func (f *fakePostingRepo) SetEmbeddingRef(ctx context.Context, id kernel.PostingID, ref string) error {
	return nil
}

func (f *fakePostingRepo) Delete(ctx context.Context, id kernel.PostingID) error { return nil }

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

func recomputeFixture() (*Service, *fakeMatchRepo, kernel.AccountID, kernel.PostingID) {
	candidateID := kernel.NewAccountID()
	postingID := kernel.NewPostingID()

	matches := &fakeMatchRepo{}
	svc := &Service{
		accounts: &fakeAccountRepo{students: []account.Account{
			{ID: candidateID, FullName: "Asha Rao", Active: true},
		}},
		resumes: &fakeResumeRepo{active: map[kernel.AccountID]*resume.Resume{
			candidateID: {
				ID:              kernel.NewResumeID(),
				CandidateID:     candidateID,
				ExtractedSkills: []string{"Go", "SQL"},
				EmbeddingRef:    "vec-resume",
				Kind:            resume.KindBase,
				Active:          true,
			},
		}},
		postings: &fakePostingRepo{postings: []posting.Posting{
			{
				ID:             postingID,
				Title:          "Backend Intern",
				RequiredSkills: []string{"Go"},
				MaxExperience:  2,
				EmbeddingRef:   "vec-posting",
				Active:         true,
				CreatedAt:      time.Now().UTC(),
			},
		}},
		matches: matches,
		vectors: &fakeVectorStore{records: map[string]vectorstore.Record{
			"vec-resume":  {ID: "vec-resume", Embedding: []float32{1, 0, 0}},
			"vec-posting": {ID: "vec-posting", Embedding: []float32{1, 1, 0}},
		}},
		engine: scoring.NewEngine(),
	}
	return svc, matches, candidateID, postingID
}

func TestRunReplacesCandidateRows(t *testing.T) {
	svc, matches, candidateID, _ := recomputeFixture()

	stats, err := svc.Run(context.Background(), NewJobForCandidate(candidateID))
	require.NoError(t, err)

	// The candidate's rows are cleared even without Force, before the
	// recomputed batch is written.
	require.Len(t, matches.deletes, 1)
	assert.Equal(t, candidateID, matches.deletes[0].candidateID)
	assert.Equal(t, kernel.PostingID(""), matches.deletes[0].postingID)
	assert.Equal(t, 1, matches.upserted)
	assert.Equal(t, int64(1), stats.Deleted)
	assert.Equal(t, 1, stats.Computed)
}

func TestRunPostingScopedJobClearsOnlyTargetedPairs(t *testing.T) {
	svc, matches, candidateID, postingID := recomputeFixture()

	stats, err := svc.Run(context.Background(), NewJobForPosting(postingID))
	require.NoError(t, err)

	require.Len(t, matches.deletes, 1)
	assert.Equal(t, candidateID, matches.deletes[0].candidateID)
	assert.Equal(t, postingID, matches.deletes[0].postingID)
	assert.Equal(t, 1, stats.Computed)
}
