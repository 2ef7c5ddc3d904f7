package resumesrv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/embeddings"
	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/llm"
	"github.com/heyitsgautham/skil-sync-fullstack/internal/docparse"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/precompute"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/fsx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const presignExpiry = time.Hour

// ResumeService runs the upload pipeline and owns resume lifecycle.
type ResumeService struct {
	repo      resume.Repository
	accounts  account.Repository
	matches   match.Repository
	files     fsx.FileSystem
	embedder  *embeddings.Generator
	vectors   vectorstore.Store
	extractor *Extractor
	llm       *llm.Client
	queue     precompute.Enqueuer
}

func NewResumeService(
	repo resume.Repository,
	accounts account.Repository,
	matches match.Repository,
	files fsx.FileSystem,
	embedder *embeddings.Generator,
	vectors vectorstore.Store,
	extractor *Extractor,
	llmClient *llm.Client,
	queue precompute.Enqueuer,
) *ResumeService {
	return &ResumeService{
		repo:      repo,
		accounts:  accounts,
		matches:   matches,
		files:     files,
		embedder:  embedder,
		vectors:   vectors,
		extractor: extractor,
		llm:       llmClient,
		queue:     queue,
	}
}

// Upload runs the full pipeline: extract text, dedupe by content hash,
// store the file, parse, embed, persist, refresh the account mirrors and
// queue a match recompute.
func (s *ResumeService) Upload(ctx context.Context, req resume.UploadRequest) (*resume.UploadResponse, error) {
	if req.CandidateID.IsEmpty() || len(req.Data) == 0 {
		return nil, resume.ErrInvalidData()
	}
	if !docparse.SupportedExtension(req.FileName) {
		return nil, resume.ErrInvalidData().
			WithDetail("file_name", req.FileName).
			WithDetail("reason", "unsupported file type, use PDF, DOCX or TXT")
	}
	if req.Kind == "" {
		req.Kind = resume.KindBase
	}
	if req.Kind == resume.KindTailored {
		if err := s.validateTailored(ctx, req); err != nil {
			return nil, err
		}
	}

	text, err := docparse.ExtractText(req.FileName, req.Data)
	if err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeInvalidData, err)
	}

	hash := contentHash(text)
	if existing, err := s.repo.FindByHash(ctx, req.CandidateID, hash); err == nil && existing != nil && existing.Kind == req.Kind {
		return s.reuse(ctx, existing, req)
	}

	storageKey := buildStorageKey(req)
	if err := s.files.WriteFile(ctx, storageKey, req.Data, contentTypeFor(req.FileName)); err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeUploadFailed, err)
	}

	parsed := s.extractor.Extract(ctx, text)

	r := &resume.Resume{
		ID:                   kernel.NewResumeID(),
		CandidateID:          req.CandidateID,
		FileName:             req.FileName,
		StorageKey:           storageKey,
		ParsedText:           text,
		ParsedData:           parsed,
		ExtractedSkills:      parsed.AllSkills,
		ContentHash:          hash,
		Kind:                 req.Kind,
		TailoredForPostingID: req.TailoredForPostingID,
		BaseResumeID:         req.BaseResumeID,
		Active:               true,
		CreatedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
	}

	s.embed(ctx, r)

	deactivateOthers := req.Kind == resume.KindBase
	if err := s.repo.Create(ctx, r, deactivateOthers); err != nil {
		return nil, err
	}

	if r.IsBase() {
		s.refreshAccountMirrors(ctx, r)
		s.enqueueRecompute(ctx, r.CandidateID)
	}

	return &resume.UploadResponse{
		ResumeID:        r.ID,
		StorageKey:      r.StorageKey,
		StructuredData:  r.ParsedData,
		SkillCount:      len(r.ExtractedSkills),
		ExperienceCount: len(parsed.Experience),
		ProjectCount:    len(parsed.Projects),
	}, nil
}

// validateTailored checks a tailored upload's anchors: the posting it targets
// and the candidate's own base resume it derives from.
func (s *ResumeService) validateTailored(ctx context.Context, req resume.UploadRequest) error {
	if req.TailoredForPostingID.IsEmpty() {
		return resume.ErrInvalidData().
			WithDetail("reason", "tailored upload requires a posting id")
	}
	if req.BaseResumeID.IsEmpty() {
		return resume.ErrInvalidData().
			WithDetail("reason", "tailored upload requires a base resume id")
	}
	base, err := s.repo.GetByID(ctx, req.BaseResumeID)
	if err != nil {
		return err
	}
	if base.CandidateID != req.CandidateID {
		return resume.ErrNotOwner()
	}
	if !base.IsBase() {
		return resume.ErrInvalidData().
			WithDetail("base_resume_id", req.BaseResumeID).
			WithDetail("reason", "base_resume_id must reference a base resume")
	}
	return nil
}

// reuse short-circuits a re-upload of already-extracted content. The stored
// parse and embedding stay as they are; the resume is reactivated if needed.
func (s *ResumeService) reuse(ctx context.Context, existing *resume.Resume, req resume.UploadRequest) (*resume.UploadResponse, error) {
	if !existing.Active {
		if err := s.repo.SetActive(ctx, existing.ID, true); err != nil {
			return nil, err
		}
		if existing.IsBase() {
			s.enqueueRecompute(ctx, existing.CandidateID)
		}
	}
	logx.Infof("resume upload reused existing content: resume=%s candidate=%s", existing.ID, req.CandidateID)

	resp := &resume.UploadResponse{
		ResumeID:       existing.ID,
		StorageKey:     existing.StorageKey,
		StructuredData: existing.ParsedData,
		SkillCount:     len(existing.ExtractedSkills),
		Reused:         true,
	}
	if existing.ParsedData != nil {
		resp.ExperienceCount = len(existing.ParsedData.Experience)
		resp.ProjectCount = len(existing.ParsedData.Projects)
	}
	return resp, nil
}

func (s *ResumeService) embed(ctx context.Context, r *resume.Resume) {
	vec, err := s.embedder.GenerateEmbedding(ctx, r.EmbeddingText())
	if err != nil {
		logx.Warnf("resume embedding failed, matches will be unavailable until recompute: resume=%s err=%v", r.ID, err)
		return
	}
	rec := vectorstore.Record{
		ID:        r.ID.String(),
		Embedding: vec,
		Document:  r.ParsedText,
		Metadata: map[string]string{
			"candidate_id": r.CandidateID.String(),
			"kind":         string(r.Kind),
			"skills":       vectorstore.JoinList(r.ExtractedSkills),
		},
	}
	if err := s.vectors.Upsert(ctx, vectorstore.CollectionResumes, rec); err != nil {
		logx.Warnf("resume vector upsert failed: resume=%s err=%v", r.ID, err)
		return
	}
	r.EmbeddingRef = r.ID.String()
}

func (s *ResumeService) refreshAccountMirrors(ctx context.Context, r *resume.Resume) {
	if err := s.accounts.UpdateCachedProfile(ctx, r.CandidateID, r.ExtractedSkills, r.ParsedData.TotalExperienceYears); err != nil {
		logx.Warnf("account profile mirror update failed: candidate=%s err=%v", r.CandidateID, err)
	}
	pi := r.ParsedData.PersonalInfo
	if pi.Phone != "" || pi.LinkedIn != "" || pi.GitHub != "" {
		if err := s.accounts.UpdateContactInfo(ctx, r.CandidateID, pi.Phone, pi.LinkedIn, pi.GitHub); err != nil {
			logx.Warnf("account contact mirror update failed: candidate=%s err=%v", r.CandidateID, err)
		}
	}
}

func (s *ResumeService) enqueueRecompute(ctx context.Context, candidateID kernel.AccountID) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, precompute.NewJobForCandidate(candidateID)); err != nil {
		logx.Warnf("recompute enqueue failed: candidate=%s err=%v", candidateID, err)
	}
}

// Get returns a resume after an ownership check.
func (s *ResumeService) Get(ctx context.Context, id kernel.ResumeID, requesterID kernel.AccountID) (*resume.Resume, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CandidateID != requesterID {
		return nil, resume.ErrNotOwner()
	}
	return r, nil
}

// List returns all of a candidate's resumes, newest first.
func (s *ResumeService) List(ctx context.Context, candidateID kernel.AccountID) ([]*resume.Resume, error) {
	return s.repo.ListByCandidate(ctx, candidateID)
}

// DownloadURL returns a presigned URL for the stored file, valid for one hour.
func (s *ResumeService) DownloadURL(ctx context.Context, id kernel.ResumeID, requesterID kernel.AccountID) (string, error) {
	r, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return "", err
	}
	if r.StorageKey == "" {
		return "", resume.ErrNotFound().WithDetail("reason", "no stored file for resume")
	}
	return s.files.PresignedURL(ctx, r.StorageKey, presignExpiry)
}

// Delete removes the resume, its stored file, its vector and any match rows
// derived from it.
func (s *ResumeService) Delete(ctx context.Context, id kernel.ResumeID, requesterID kernel.AccountID) error {
	r, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return err
	}

	if r.StorageKey != "" {
		if err := s.files.Delete(ctx, r.StorageKey); err != nil {
			logx.Warnf("resume file delete failed: resume=%s err=%v", id, err)
		}
	}
	if r.HasEmbedding() {
		if err := s.vectors.Delete(ctx, vectorstore.CollectionResumes, r.EmbeddingRef); err != nil {
			logx.Warnf("resume vector delete failed: resume=%s err=%v", id, err)
		}
	}
	if r.IsBase() && r.Active {
		if _, err := s.matches.DeleteWhere(ctx, r.CandidateID, ""); err != nil {
			logx.Warnf("match cleanup failed: candidate=%s err=%v", r.CandidateID, err)
		}
	}
	return s.repo.Delete(ctx, id)
}

const summaryPrompt = `Write a concise professional summary (3-4 sentences) of this candidate for a recruiter. Focus on skills, experience depth and standout work. Return plain text only.

Resume:
`

// Summarize produces a recruiter-facing summary of the resume, falling back
// to the extracted summary when the LLM is unavailable.
func (s *ResumeService) Summarize(ctx context.Context, id kernel.ResumeID, requesterID kernel.AccountID) (*resume.SummaryResponse, error) {
	r, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	summary := ""
	if s.llm != nil {
		reply, err := s.llm.Complete(ctx, llm.PurposeCandidateSummary,
			"You are a technical recruiter summarizing candidates.", summaryPrompt+r.ParsedText)
		if err == nil {
			summary = strings.TrimSpace(reply)
		} else {
			logx.Warnf("candidate summary llm failed: resume=%s err=%v", id, err)
		}
	}
	if summary == "" && r.ParsedData != nil {
		summary = r.ParsedData.Summary
	}
	return &resume.SummaryResponse{ResumeID: r.ID, Summary: summary}, nil
}

const achievementsPrompt = `List the candidate's most impressive, concrete achievements from this resume as a JSON array of strings (max 8, quantified where the resume quantifies them). Return ONLY the JSON array.

Resume:
`

// KeyAchievements extracts notable achievements, falling back to the
// achievement lines already captured in the structured extraction.
func (s *ResumeService) KeyAchievements(ctx context.Context, id kernel.ResumeID, requesterID kernel.AccountID) (*resume.AchievementsResponse, error) {
	r, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	var achievements []string
	if s.llm != nil {
		reply, err := s.llm.Complete(ctx, llm.PurposeAchievementExtraction,
			"You extract achievements from resumes.", achievementsPrompt+r.ParsedText)
		if err == nil {
			if uerr := json.Unmarshal([]byte(reply), &achievements); uerr != nil {
				logx.Warnf("achievement extraction returned non-JSON, using structured data: resume=%s", id)
			}
		}
	}
	if len(achievements) == 0 && r.ParsedData != nil {
		for _, exp := range r.ParsedData.Experience {
			achievements = append(achievements, exp.Achievements...)
		}
	}
	return &resume.AchievementsResponse{ResumeID: r.ID, Achievements: achievements}, nil
}

// ClearEmbeddings drops the whole resume vector collection, nulls the stored
// references and deletes the match rows computed from them. Admin use only.
func (s *ResumeService) ClearEmbeddings(ctx context.Context) (int64, error) {
	removed, err := s.vectors.Clear(ctx, vectorstore.CollectionResumes)
	if err != nil {
		return 0, err
	}
	candidates, err := s.repo.ClearEmbeddingRefs(ctx)
	if err != nil {
		return removed, err
	}
	for _, candidateID := range candidates {
		if _, err := s.matches.DeleteWhere(ctx, candidateID, ""); err != nil {
			logx.Warnf("match cleanup failed after embedding clear: candidate=%s err=%v", candidateID, err)
		}
	}
	logx.Infof("resume embeddings cleared: vectors=%d candidates=%d", removed, len(candidates))
	return removed, nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func buildStorageKey(req resume.UploadRequest) string {
	ts := time.Now().UTC().Format("20060102T150405")
	name := filepath.Base(req.FileName)
	if req.Kind == resume.KindTailored {
		return fmt.Sprintf("resumes/%s/tailored/%s/%s_%s", req.CandidateID, req.TailoredForPostingID, ts, name)
	}
	return fmt.Sprintf("resumes/%s/base/%s_%s", req.CandidateID, ts, name)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}
