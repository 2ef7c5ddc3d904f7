package matchsrv

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const retrievalLimit = 20

// ExperienceLevel buckets a posting's minimum experience for filtering.
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"  // no minimum
	LevelJunior ExperienceLevel = "junior" // up to 1 year
	LevelMid    ExperienceLevel = "mid"    // up to 3 years
	LevelSenior ExperienceLevel = "senior" // beyond 3 years
)

// LevelFor buckets a minimum-experience requirement.
func LevelFor(minExperience float64) ExperienceLevel {
	switch {
	case minExperience <= 0:
		return LevelEntry
	case minExperience <= 1:
		return LevelJunior
	case minExperience <= 3:
		return LevelMid
	default:
		return LevelSenior
	}
}

// RecommendFilter narrows a student's recommendation list.
type RecommendFilter struct {
	MinScore float64
	MaxScore float64

	// QualifiedOnly keeps postings whose required skills the candidate
	// fully covers.
	QualifiedOnly bool

	// Skills keeps postings whose required skills include every listed
	// skill.
	Skills []string

	Location         string
	ExperienceLevel  ExperienceLevel
	PostedWithinDays int
}

// RecommendSort orders a recommendation list.
type RecommendSort string

const (
	SortByScore    RecommendSort = "score"
	SortByPostedAt RecommendSort = "posted_at"
	SortByTitle    RecommendSort = "title"
)

// SortOrder flips a sort's direction. Empty picks the key's natural
// direction (title ascending, everything else descending).
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Recommendation is one posting suggested to a student.
type Recommendation struct {
	PostingID      kernel.PostingID `json:"posting_id"`
	Title          string           `json:"title"`
	CompanyName    string           `json:"company_name"`
	Location       string           `json:"location,omitempty"`
	RequiredSkills []string         `json:"required_skills"`
	MinExperience  float64          `json:"min_experience"`
	PostedAt       string           `json:"posted_at"`

	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`

	// Source is "match" for precomputed rows, "retrieval" for the vector
	// search fallback.
	Source string `json:"source"`
}

// MatchDetail is one candidate-posting match with its explanation.
type MatchDetail struct {
	Match       match.Match `json:"match"`
	Explanation string      `json:"explanation"`
}

// MatchService serves students their precomputed matches with a vector
// retrieval fallback for candidates not yet materialized.
type MatchService struct {
	matches   match.Repository
	resumes   resume.Repository
	postings  posting.Repository
	vectors   vectorstore.Store
	explainer *scoring.Explainer
}

func NewMatchService(
	matches match.Repository,
	resumes resume.Repository,
	postings posting.Repository,
	vectors vectorstore.Store,
	explainer *scoring.Explainer,
) *MatchService {
	return &MatchService{
		matches:   matches,
		resumes:   resumes,
		postings:  postings,
		vectors:   vectors,
		explainer: explainer,
	}
}

// Recommend lists postings for a student, best first, with filters and
// sorting applied over the precomputed rows. When the student has no rows
// yet, a raw vector search supplies presentation-only scores.
func (s *MatchService) Recommend(ctx context.Context, candidateID kernel.AccountID, f RecommendFilter, sortBy RecommendSort, order SortOrder, opts kernel.PaginationOptions) (kernel.Paginated[Recommendation], error) {
	opts = opts.Normalize()

	views, err := s.allRowsForCandidate(ctx, candidateID)
	if err != nil {
		return kernel.Paginated[Recommendation]{}, err
	}

	if len(views) == 0 {
		recs, err := s.retrievalFallback(ctx, candidateID)
		if err != nil {
			return kernel.Paginated[Recommendation]{}, err
		}
		return paginate(recs, opts), nil
	}

	recs := make([]Recommendation, 0, len(views))
	for _, v := range views {
		recs = append(recs, Recommendation{
			PostingID:      v.PostingID,
			Title:          v.PostingTitle,
			CompanyName:    v.CompanyName,
			Location:       v.Location,
			RequiredSkills: v.RequiredSkills,
			MinExperience:  v.MinExperience,
			PostedAt:       v.PostedAt,
			Score:          v.CompositeScore,
			MatchedSkills:  v.MatchedSkills,
			MissingSkills:  v.MissingSkills,
			Source:         "match",
		})
	}

	recs = ApplyFilter(recs, f, time.Now().UTC())
	SortRecommendations(recs, sortBy, order)
	return paginate(recs, opts), nil
}

func (s *MatchService) allRowsForCandidate(ctx context.Context, candidateID kernel.AccountID) ([]match.CandidateView, error) {
	var all []match.CandidateView
	opts := kernel.PaginationOptions{Page: 1, PageSize: 100}
	for {
		page, err := s.matches.QueryForCandidate(ctx, candidateID, match.Filter{}, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(all) >= page.Page.Total || len(page.Items) == 0 {
			return all, nil
		}
		opts.Page++
	}
}

// retrievalFallback answers from the vector store when no match rows exist,
// typically right after an upload while the recompute is still queued.
func (s *MatchService) retrievalFallback(ctx context.Context, candidateID kernel.AccountID) ([]Recommendation, error) {
	base, err := s.resumes.GetActiveBase(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !base.HasEmbedding() {
		return []Recommendation{}, nil
	}

	rec, err := s.vectors.Get(ctx, vectorstore.CollectionResumes, base.EmbeddingRef)
	if err != nil {
		return nil, err
	}

	results, err := s.vectors.Query(ctx, vectorstore.CollectionPostings, rec.Embedding, retrievalLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []Recommendation{}, nil
	}

	distances := make([]float64, len(results))
	for i, r := range results {
		distances[i] = r.Distance
	}
	scores := vectorstore.NormalizeRetrievalScores(distances)

	recs := make([]Recommendation, 0, len(results))
	for i, r := range results {
		p, err := s.postings.GetByID(ctx, kernel.PostingID(r.ID))
		if err != nil || !p.Active {
			continue
		}
		breakdown := scoring.SkillsMatch(base.ExtractedSkills, p.RequiredSkills, p.PreferredSkills)
		recs = append(recs, Recommendation{
			PostingID:      p.ID,
			Title:          p.Title,
			Location:       p.Location,
			RequiredSkills: p.RequiredSkills,
			MinExperience:  p.MinExperience,
			PostedAt:       p.CreatedAt.Format(time.RFC3339),
			Score:          scores[i],
			MatchedSkills:  breakdown.Matched,
			MissingSkills:  breakdown.Missing,
			Source:         "retrieval",
		})
	}
	logx.Debugf("recommendation fallback served from retrieval: candidate=%s results=%d", candidateID, len(recs))
	return recs, nil
}

// Detail returns one match row with a written explanation.
func (s *MatchService) Detail(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*MatchDetail, error) {
	m, err := s.matches.Get(ctx, candidateID, postingID)
	if err != nil {
		return nil, err
	}
	p, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}

	result := &scoring.Result{
		OverallScore:  m.CompositeScore,
		MatchedSkills: m.MatchedSkills,
		MissingSkills: m.MissingSkills,
		Components: scoring.ComponentScores{
			SemanticSimilarity: m.SemanticScore,
			SkillsMatch:        m.SkillsScore,
			ExperienceMatch:    m.ExperienceScore,
		},
	}

	explanation := scoring.TemplateExplanation(result)
	if s.explainer != nil {
		explanation = s.explainer.Explain(ctx, p.Title, result)
	}
	return &MatchDetail{Match: *m, Explanation: explanation}, nil
}

// ApplyFilter keeps recommendations passing every set constraint.
func ApplyFilter(recs []Recommendation, f RecommendFilter, now time.Time) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if f.MinScore > 0 && r.Score < f.MinScore {
			continue
		}
		if f.MaxScore > 0 && r.Score > f.MaxScore {
			continue
		}
		if f.QualifiedOnly && len(r.MissingSkills) > 0 {
			continue
		}
		if len(f.Skills) > 0 && !requiresAll(r.RequiredSkills, f.Skills) {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(r.Location), strings.ToLower(f.Location)) {
			continue
		}
		if f.ExperienceLevel != "" && LevelFor(r.MinExperience) != f.ExperienceLevel {
			continue
		}
		if f.PostedWithinDays > 0 {
			postedAt, err := time.Parse(time.RFC3339, r.PostedAt)
			if err != nil || now.Sub(postedAt) > time.Duration(f.PostedWithinDays)*24*time.Hour {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// requiresAll reports whether every wanted skill appears in the posting's
// required skills.
func requiresAll(required, want []string) bool {
	for _, w := range want {
		found := false
		for _, r := range required {
			if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(w)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SortRecommendations orders in place.
func SortRecommendations(recs []Recommendation, by RecommendSort, order SortOrder) {
	if order == "" {
		if by == SortByTitle {
			order = OrderAsc
		} else {
			order = OrderDesc
		}
	}

	var less func(i, j int) bool
	switch by {
	case SortByPostedAt:
		less = func(i, j int) bool { return recs[i].PostedAt < recs[j].PostedAt }
	case SortByTitle:
		less = func(i, j int) bool {
			return strings.ToLower(recs[i].Title) < strings.ToLower(recs[j].Title)
		}
	default:
		less = func(i, j int) bool { return recs[i].Score < recs[j].Score }
	}

	if order == OrderDesc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(recs, less)
}

func paginate(recs []Recommendation, opts kernel.PaginationOptions) kernel.Paginated[Recommendation] {
	total := len(recs)
	start := opts.Offset()
	if start > len(recs) {
		start = len(recs)
	}
	end := start + opts.PageSize
	if end > len(recs) {
		end = len(recs)
	}
	return kernel.NewPaginated(recs[start:end], opts, total)
}
