package accountsrv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

type fakeAccountRepo struct {
	byID        map[kernel.AccountID]*account.Account
	deactivated []kernel.AccountID
}

func (f *fakeAccountRepo) Create(ctx context.Context, acc *account.Account) error { return nil }

func (f *fakeAccountRepo) GetByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	if acc, ok := f.byID[id]; ok {
		return acc, nil
	}
	return nil, account.ErrNotFound()
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email kernel.Email) (*account.Account, error) {
	return nil, account.ErrNotFound()
}

func (f *fakeAccountRepo) Update(ctx context.Context, acc *account.Account) error { return nil }

func (f *fakeAccountRepo) SetActive(ctx context.Context, id kernel.AccountID, active bool) error {
	if !active {
		f.deactivated = append(f.deactivated, id)
	}
	return nil
}

func (f *fakeAccountRepo) UpdateCachedProfile(ctx context.Context, id kernel.AccountID, skills []string, experienceYears float64) error {
	return nil
}

func (f *fakeAccountRepo) UpdateContactInfo(ctx context.Context, id kernel.AccountID, phone, linkedin, github string) error {
	return nil
}

func (f *fakeAccountRepo) ListStudentsWithActiveResume(ctx context.Context) ([]account.Account, error) {
	return nil, nil
}

type fakeResumeRepo struct {
	resumes     []*resume.Resume
	deactivated []kernel.ResumeID
}

func (f *fakeResumeRepo) Create(ctx context.Context, r *resume.Resume, deactivateOthers bool) error {
	return nil
}

func (f *fakeResumeRepo) GetByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	return nil, resume.ErrNotFound()
}

func (f *fakeResumeRepo) GetActiveBase(ctx context.Context, candidateID kernel.AccountID) (*resume.Resume, error) {
	return nil, resume.ErrNoActiveResume()
}

func (f *fakeResumeRepo) ListByCandidate(ctx context.Context, candidateID kernel.AccountID) ([]*resume.Resume, error) {
	return f.resumes, nil
}

func (f *fakeResumeRepo) FindByHash(ctx context.Context, candidateID kernel.AccountID, contentHash string) (*resume.Resume, error) {
	return nil, resume.ErrNotFound()
}

func (f *fakeResumeRepo) Update(ctx context.Context, r *resume.Resume) error { return nil }

func (f *fakeResumeRepo) SetActive(ctx context.Context, id kernel.ResumeID, active bool) error {
	if !active {
		f.deactivated = append(f.deactivated, id)
	}
	return nil
}

func (f *fakeResumeRepo) Delete(ctx context.Context, id kernel.ResumeID) error { return nil }

func (f *fakeResumeRepo) ClearEmbeddingRefs(ctx context.Context) ([]kernel.AccountID, error) {
	return nil, nil
}

type fakeMatchRepo struct {
	deletedFor []kernel.AccountID
}

func (f *fakeMatchRepo) UpsertMany(ctx context.Context, rows []*match.Match) error { return nil }

func (f *fakeMatchRepo) Get(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*match.Match, error) {
	return nil, match.ErrNotFound()
}

func (f *fakeMatchRepo) DeleteWhere(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (int64, error) {
	f.deletedFor = append(f.deletedFor, candidateID)
	return 3, nil
}

func (f *fakeMatchRepo) QueryForCandidate(ctx context.Context, candidateID kernel.AccountID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.CandidateView], error) {
	return kernel.Paginated[match.CandidateView]{}, nil
}

func (f *fakeMatchRepo) QueryForPosting(ctx context.Context, postingID kernel.PostingID, flt match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.PostingView], error) {
	return kernel.Paginated[match.PostingView]{}, nil
}

func (f *fakeMatchRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func TestDeactivateStudentCascades(t *testing.T) {
	studentID := kernel.NewAccountID()
	activeResume := kernel.NewResumeID()
	inactiveResume := kernel.NewResumeID()

	accounts := &fakeAccountRepo{byID: map[kernel.AccountID]*account.Account{
		studentID: {ID: studentID, Role: auth.RoleStudent, Active: true},
	}}
	resumes := &fakeResumeRepo{resumes: []*resume.Resume{
		{ID: activeResume, CandidateID: studentID, Kind: resume.KindBase, Active: true},
		{ID: inactiveResume, CandidateID: studentID, Kind: resume.KindBase, Active: false},
	}}
	matches := &fakeMatchRepo{}
	svc := &AccountService{repo: accounts, resumes: resumes, matches: matches}

	require.NoError(t, svc.Deactivate(context.Background(), studentID))

	assert.Equal(t, []kernel.AccountID{studentID}, accounts.deactivated)
	assert.Equal(t, []kernel.ResumeID{activeResume}, resumes.deactivated)
	assert.Equal(t, []kernel.AccountID{studentID}, matches.deletedFor)
}

func TestDeactivateCompanyLeavesMatchesAlone(t *testing.T) {
	companyID := kernel.NewAccountID()

	accounts := &fakeAccountRepo{byID: map[kernel.AccountID]*account.Account{
		companyID: {ID: companyID, Role: auth.RoleCompany, Active: true},
	}}
	resumes := &fakeResumeRepo{}
	matches := &fakeMatchRepo{}
	svc := &AccountService{repo: accounts, resumes: resumes, matches: matches}

	require.NoError(t, svc.Deactivate(context.Background(), companyID))

	assert.Equal(t, []kernel.AccountID{companyID}, accounts.deactivated)
	assert.Empty(t, resumes.deactivated)
	assert.Empty(t, matches.deletedFor)
}
