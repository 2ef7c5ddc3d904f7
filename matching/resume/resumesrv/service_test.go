package resumesrv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

type fakeResumeRepo struct {
	byID map[kernel.ResumeID]*resume.Resume
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

func TestUploadTailoredRequiresBaseResume(t *testing.T) {
	owner := kernel.NewAccountID()
	stranger := kernel.NewAccountID()
	baseID := kernel.NewResumeID()
	tailoredID := kernel.NewResumeID()
	postingID := kernel.NewPostingID()

	svc := &ResumeService{repo: &fakeResumeRepo{byID: map[kernel.ResumeID]*resume.Resume{
		baseID: {ID: baseID, CandidateID: owner, Kind: resume.KindBase, Active: true},
		tailoredID: {ID: tailoredID, CandidateID: owner, Kind: resume.KindTailored,
			TailoredForPostingID: postingID},
	}}}

	upload := func(candidateID kernel.AccountID, base kernel.ResumeID) error {
		_, err := svc.Upload(context.Background(), resume.UploadRequest{
			CandidateID:          candidateID,
			FileName:             "resume.txt",
			Data:                 []byte("golang intern"),
			Kind:                 resume.KindTailored,
			TailoredForPostingID: postingID,
			BaseResumeID:         base,
		})
		return err
	}

	err := upload(owner, "")
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, resume.CodeInvalidData))

	err = upload(owner, kernel.NewResumeID())
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, resume.CodeNotFound))

	err = upload(stranger, baseID)
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, resume.CodeNotOwner))

	// The anchor has to be a base resume, not another tailored one.
	err = upload(owner, tailoredID)
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, resume.CodeInvalidData))
}
