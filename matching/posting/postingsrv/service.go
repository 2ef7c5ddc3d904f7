package postingsrv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/embeddings"
	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/llm"
	"github.com/heyitsgautham/skil-sync-fullstack/internal/docparse"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/precompute"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

// PostingService owns the posting lifecycle and keeps the posting vectors
// and match rows in step with edits.
type PostingService struct {
	repo     posting.Repository
	matches  match.Repository
	embedder *embeddings.Generator
	vectors  vectorstore.Store
	llm      *llm.Client
	queue    precompute.Enqueuer
}

func NewPostingService(
	repo posting.Repository,
	matches match.Repository,
	embedder *embeddings.Generator,
	vectors vectorstore.Store,
	llmClient *llm.Client,
	queue precompute.Enqueuer,
) *PostingService {
	return &PostingService{
		repo:     repo,
		matches:  matches,
		embedder: embedder,
		vectors:  vectors,
		llm:      llmClient,
		queue:    queue,
	}
}

// Create publishes a posting, embeds it and queues a match recompute.
func (s *PostingService) Create(ctx context.Context, companyID kernel.AccountID, req posting.CreateRequest) (*posting.Posting, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, posting.ErrInvalidData().WithDetail("reason", "title and description are required")
	}

	p := &posting.Posting{
		ID:                kernel.NewPostingID(),
		CompanyID:         companyID,
		Title:             req.Title,
		Description:       req.Description,
		RequiredSkills:    req.RequiredSkills,
		PreferredSkills:   req.PreferredSkills,
		MinExperience:     req.MinExperience,
		MaxExperience:     req.MaxExperience,
		RequiredEducation: req.RequiredEducation,
		Location:          req.Location,
		DurationMonths:    req.DurationMonths,
		Stipend:           req.Stipend,
		Active:            true,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	p.Normalize()
	p.ContentHash = contentHash(p.EmbeddingText())

	s.embed(ctx, p)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.enqueueRecompute(ctx, p.ID)
	return p, nil
}

const documentSystemPrompt = `You parse internship posting documents. Return ONLY valid JSON.`

const documentPromptTemplate = `Extract the posting fields from this internship description document. Return ONLY this JSON:

{
  "title": string,
  "description": string (the full role description),
  "min_experience": number (years, 0 if unstated),
  "max_experience": number (years, 0 if unstated),
  "required_education": string ("" if unstated),
  "location": string,
  "duration_months": number (0 if unstated),
  "stipend": string
}

Document:
`

// CreateFromDocument builds a posting from an uploaded PDF, DOCX or TXT.
// Skills are intentionally left empty; companies review them via the
// extraction endpoint before publishing.
func (s *PostingService) CreateFromDocument(ctx context.Context, companyID kernel.AccountID, fileName string, data []byte) (*posting.Posting, error) {
	text, err := docparse.ExtractText(fileName, data)
	if err != nil {
		return nil, posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err)
	}

	req := s.parseDocument(ctx, fileName, text)
	req.RequiredSkills = []string{}
	req.PreferredSkills = []string{}
	return s.Create(ctx, companyID, req)
}

func (s *PostingService) parseDocument(ctx context.Context, fileName, text string) posting.CreateRequest {
	fallback := posting.CreateRequest{
		Title:       strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)),
		Description: text,
	}
	if s.llm == nil {
		return fallback
	}

	reply, err := s.llm.Complete(ctx, llm.PurposeInternshipAnalysis,
		documentSystemPrompt, documentPromptTemplate+text)
	if err != nil {
		logx.Warnf("posting document analysis unavailable, using raw text: %v", err)
		return fallback
	}

	var req posting.CreateRequest
	if err := json.Unmarshal([]byte(reply), &req); err != nil {
		logx.Warnf("posting document analysis returned non-JSON, using raw text: %v", err)
		return fallback
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = fallback.Title
	}
	if strings.TrimSpace(req.Description) == "" {
		req.Description = text
	}
	return req
}

// Get returns a posting by id.
func (s *PostingService) Get(ctx context.Context, id kernel.PostingID) (*posting.Posting, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns postings matching the filter, newest first.
func (s *PostingService) List(ctx context.Context, f posting.ListFilter, opts kernel.PaginationOptions) (kernel.Paginated[posting.Posting], error) {
	return s.repo.List(ctx, f, opts)
}

// Update edits a posting after an ownership check. Content changes re-embed
// the posting and queue a match recompute.
func (s *PostingService) Update(ctx context.Context, companyID kernel.AccountID, id kernel.PostingID, req posting.CreateRequest) (*posting.Posting, error) {
	p, err := s.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	p.Title = req.Title
	p.Description = req.Description
	p.RequiredSkills = req.RequiredSkills
	p.PreferredSkills = req.PreferredSkills
	p.MinExperience = req.MinExperience
	p.MaxExperience = req.MaxExperience
	p.RequiredEducation = req.RequiredEducation
	p.Location = req.Location
	p.DurationMonths = req.DurationMonths
	p.Stipend = req.Stipend
	p.Normalize()
	p.UpdatedAt = time.Now().UTC()

	newHash := contentHash(p.EmbeddingText())
	contentChanged := newHash != p.ContentHash
	if contentChanged {
		p.ContentHash = newHash
		s.embed(ctx, p)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if contentChanged {
		s.enqueueRecompute(ctx, p.ID)
	}
	return p, nil
}

// Deactivate unpublishes a posting, dropping its vector and match rows.
func (s *PostingService) Deactivate(ctx context.Context, companyID kernel.AccountID, id kernel.PostingID) error {
	p, err := s.owned(ctx, companyID, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	if p.HasEmbedding() {
		if err := s.vectors.Delete(ctx, vectorstore.CollectionPostings, p.EmbeddingRef); err != nil {
			logx.Warnf("posting vector delete failed: posting=%s err=%v", id, err)
		}
		if err := s.repo.SetEmbeddingRef(ctx, id, ""); err != nil {
			logx.Warnf("posting embedding ref clear failed: posting=%s err=%v", id, err)
		}
	}
	if _, err := s.matches.DeleteWhere(ctx, "", id); err != nil {
		logx.Warnf("match cleanup failed: posting=%s err=%v", id, err)
	}
	return nil
}

// Reactivate republishes a posting, re-embedding it and queuing a recompute.
func (s *PostingService) Reactivate(ctx context.Context, companyID kernel.AccountID, id kernel.PostingID) error {
	p, err := s.owned(ctx, companyID, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.embed(ctx, p)
	if p.HasEmbedding() {
		if err := s.repo.SetEmbeddingRef(ctx, id, p.EmbeddingRef); err != nil {
			logx.Warnf("posting embedding ref update failed: posting=%s err=%v", id, err)
		}
	}
	s.enqueueRecompute(ctx, id)
	return nil
}

// Delete removes a posting along with its vector and match rows.
func (s *PostingService) Delete(ctx context.Context, companyID kernel.AccountID, id kernel.PostingID) error {
	p, err := s.owned(ctx, companyID, id)
	if err != nil {
		return err
	}

	if p.HasEmbedding() {
		if err := s.vectors.Delete(ctx, vectorstore.CollectionPostings, p.EmbeddingRef); err != nil {
			logx.Warnf("posting vector delete failed: posting=%s err=%v", id, err)
		}
	}
	if _, err := s.matches.DeleteWhere(ctx, "", id); err != nil {
		logx.Warnf("match cleanup failed: posting=%s err=%v", id, err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *PostingService) owned(ctx context.Context, companyID kernel.AccountID, id kernel.PostingID) (*posting.Posting, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		return nil, posting.ErrNotOwner()
	}
	return p, nil
}

func (s *PostingService) embed(ctx context.Context, p *posting.Posting) {
	vec, err := s.embedder.GenerateEmbedding(ctx, p.EmbeddingText())
	if err != nil {
		logx.Warnf("posting embedding failed: posting=%s err=%v", p.ID, err)
		return
	}
	rec := vectorstore.Record{
		ID:        p.ID.String(),
		Embedding: vec,
		Document:  p.EmbeddingText(),
		Metadata: map[string]string{
			"company_id":      p.CompanyID.String(),
			"title":           p.Title,
			"required_skills": vectorstore.JoinList(p.RequiredSkills),
		},
	}
	if err := s.vectors.Upsert(ctx, vectorstore.CollectionPostings, rec); err != nil {
		logx.Warnf("posting vector upsert failed: posting=%s err=%v", p.ID, err)
		return
	}
	p.EmbeddingRef = p.ID.String()
}

func (s *PostingService) enqueueRecompute(ctx context.Context, id kernel.PostingID) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, precompute.NewJobForPosting(id)); err != nil {
		logx.Warnf("recompute enqueue failed: posting=%s err=%v", id, err)
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
