package rankingsrv

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/application"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/flagging"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/scoring"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const keyStrengthsLimit = 5

// Tailored applications blend the tailored resume's score with the
// precomputed baseline so a heavily keyword-tuned resume cannot fully
// displace the base profile.
const (
	tailoredWeight = 0.8
	baselineWeight = 0.2
)

// BlendScores combines a tailored application score with the precomputed
// baseline into the effective ranking score.
func BlendScores(applicationScore, baselineScore float64) float64 {
	return tailoredWeight*applicationScore + baselineWeight*baselineScore
}

// RankFilter narrows a posting's ranked candidate list.
type RankFilter struct {
	MinScore float64
	MaxScore float64

	// Experience band on the candidate's total years.
	MinExperience float64
	MaxExperience float64

	// MustHaveSkills keeps candidates whose matched skills contain every
	// listed skill.
	MustHaveSkills []string

	// MinEducation keeps candidates at or above this degree level.
	MinEducation string

	// ExcludeFlagged drops candidates sharing contact details with others.
	// Flags are computed before this filter so the annotation survives it.
	ExcludeFlagged bool

	// OnlyApplicants ranks the posting's applications. When false, every
	// precomputed match row for the posting is ranked instead.
	OnlyApplicants bool
}

// RankSort orders the ranked list.
type RankSort string

const (
	SortByScore      RankSort = "score"
	SortByExperience RankSort = "experience"
	SortByName       RankSort = "name"
	SortByAppliedAt  RankSort = "applied_at"
)

// SortOrder flips a sort's direction. Empty picks the key's natural
// direction (name ascending, everything else descending).
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// RankedCandidate is one candidate annotated for company review. Application
// fields are empty when ranking match rows rather than applicants.
type RankedCandidate struct {
	ApplicationID kernel.ApplicationID `json:"application_id,omitempty"`
	CandidateID   kernel.AccountID     `json:"candidate_id"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	MatchScore                 int                `json:"match_score"`
	ApplicationSimilarityScore int                `json:"application_similarity_score"`
	Status                     application.Status `json:"status,omitempty"`
	HasTailoredResume          bool               `json:"has_tailored_resume"`

	SemanticScore   float64 `json:"semantic_score"`
	SkillsScore     float64 `json:"skills_score"`
	ExperienceScore float64 `json:"experience_score"`

	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	KeyStrengths    []string `json:"key_strengths"`
	ExperienceYears float64  `json:"experience_years"`
	ExperienceGap   float64  `json:"experience_gap"`
	EducationLevel  string   `json:"education_level,omitempty"`

	Flagged     bool     `json:"is_flagged"`
	FlagReasons []string `json:"flag_reasons,omitempty"`
	FlagReason  string   `json:"flag_reason_text,omitempty"`

	AppliedAt string `json:"applied_at,omitempty"`
}

// RankingService ranks a posting's candidates with duplicate-contact
// annotation, filters and sorting.
type RankingService struct {
	apps     application.Repository
	accounts account.Repository
	resumes  resume.Repository
	matches  match.Repository
	postings posting.Repository
	vectors  vectorstore.Store
	engine   *scoring.Engine
}

func NewRankingService(
	apps application.Repository,
	accounts account.Repository,
	resumes resume.Repository,
	matches match.Repository,
	postings posting.Repository,
	vectors vectorstore.Store,
) *RankingService {
	return &RankingService{
		apps:     apps,
		accounts: accounts,
		resumes:  resumes,
		matches:  matches,
		postings: postings,
		vectors:  vectors,
		engine:   scoring.NewEngine(),
	}
}

// Rank returns the full annotated candidate list for a posting, owner only.
func (s *RankingService) Rank(ctx context.Context, companyID kernel.AccountID, postingID kernel.PostingID, f RankFilter, sortBy RankSort, order SortOrder) ([]RankedCandidate, error) {
	p, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		return nil, posting.ErrNotOwner()
	}

	flags, students := s.detectFlags(ctx)

	var ranked []RankedCandidate
	if f.OnlyApplicants {
		apps, err := s.apps.ListAllForPosting(ctx, postingID)
		if err != nil {
			return nil, err
		}
		ranked = make([]RankedCandidate, 0, len(apps))
		for i := range apps {
			ranked = append(ranked, s.annotateApplicant(ctx, &apps[i], p, flags))
		}
	} else {
		views, err := s.allMatchesForPosting(ctx, postingID)
		if err != nil {
			return nil, err
		}
		ranked = make([]RankedCandidate, 0, len(views))
		for i := range views {
			ranked = append(ranked, s.annotateMatch(ctx, &views[i], p, flags, students))
		}
	}

	ranked = ApplyRankFilter(ranked, f)
	SortRanked(ranked, sortBy, order)
	return ranked, nil
}

// detectFlags runs duplicate-contact detection across every student with an
// active resume. Errors degrade to no flags rather than failing the rank.
func (s *RankingService) detectFlags(ctx context.Context) (map[kernel.AccountID]*flagging.Flag, map[kernel.AccountID]account.Account) {
	students, err := s.accounts.ListStudentsWithActiveResume(ctx)
	if err != nil {
		logx.Warnf("ranking: flag detection skipped: %v", err)
		return nil, nil
	}

	contacts := make([]flagging.Contact, 0, len(students))
	index := make(map[kernel.AccountID]account.Account, len(students))
	for _, st := range students {
		index[st.ID] = st
		contacts = append(contacts, flagging.Contact{
			CandidateID: st.ID,
			Phone:       st.Phone,
			LinkedIn:    st.LinkedIn,
			GitHub:      st.GitHub,
		})
	}
	return flagging.Detect(contacts), index
}

func (s *RankingService) allMatchesForPosting(ctx context.Context, postingID kernel.PostingID) ([]match.PostingView, error) {
	var all []match.PostingView
	opts := kernel.PaginationOptions{Page: 1, PageSize: 100}
	for {
		page, err := s.matches.QueryForPosting(ctx, postingID, match.Filter{}, opts)
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

func (s *RankingService) annotateApplicant(ctx context.Context, app *application.CompanyView, p *posting.Posting, flags map[kernel.AccountID]*flagging.Flag) RankedCandidate {
	rc := RankedCandidate{
		ApplicationID:              app.ID,
		CandidateID:                app.CandidateID,
		Name:                       app.CandidateName,
		Email:                      app.CandidateEmail,
		Phone:                      app.CandidatePhone,
		MatchScore:                 app.MatchScore,
		ApplicationSimilarityScore: app.ApplicationSimilarityScore,
		Status:                     app.Status,
		HasTailoredResume:          app.UsedTailoredResume,
		ExperienceYears:            app.ExperienceYears,
		ExperienceGap:              app.ExperienceYears - p.MinExperience,
		AppliedAt:                  app.CreatedAt.Format("2006-01-02"),
	}

	baseline := 0.0
	if row, err := s.matches.Get(ctx, app.CandidateID, app.PostingID); err == nil {
		baseline = row.CompositeScore
		rc.SemanticScore = row.SemanticScore
		rc.SkillsScore = row.SkillsScore
		rc.ExperienceScore = row.ExperienceScore
		rc.MatchedSkills = row.MatchedSkills
		rc.MissingSkills = row.MissingSkills
	}
	if app.UsedTailoredResume {
		if fresh, ok := s.tailoredScore(ctx, app.ResumeID, p); ok {
			rc.ApplicationSimilarityScore = int(math.Round(fresh))
			rc.MatchScore = int(math.Round(BlendScores(fresh, baseline)))
		} else if baseline > 0 {
			rc.MatchScore = int(math.Round(baseline))
		}
	}

	if len(rc.MatchedSkills) == 0 {
		rc.MatchedSkills = app.Skills
	}
	rc.KeyStrengths = topN(rc.MatchedSkills, keyStrengthsLimit)

	s.annotateEducation(ctx, &rc)
	annotateFlag(&rc, flags)
	return rc
}

func (s *RankingService) annotateMatch(ctx context.Context, v *match.PostingView, p *posting.Posting, flags map[kernel.AccountID]*flagging.Flag, students map[kernel.AccountID]account.Account) RankedCandidate {
	rc := RankedCandidate{
		CandidateID:     v.CandidateID,
		Name:            v.CandidateName,
		Email:           v.CandidateEmail,
		MatchScore:      int(math.Round(v.CompositeScore)),
		SemanticScore:   v.SemanticScore,
		SkillsScore:     v.SkillsScore,
		ExperienceScore: v.ExperienceScore,
		MatchedSkills:   v.MatchedSkills,
		MissingSkills:   v.MissingSkills,
		ExperienceYears: v.ExperienceYears,
		ExperienceGap:   v.ExperienceYears - p.MinExperience,
	}
	if st, ok := students[v.CandidateID]; ok {
		rc.Phone = st.Phone
	}
	rc.KeyStrengths = topN(rc.MatchedSkills, keyStrengthsLimit)

	s.annotateEducation(ctx, &rc)
	annotateFlag(&rc, flags)
	return rc
}

// tailoredScore re-scores a tailored submission against the posting at read
// time, so rankings track the current vectors rather than the score frozen
// when the application was filed. A missing vector falls back to the
// baseline.
func (s *RankingService) tailoredScore(ctx context.Context, resumeID kernel.ResumeID, p *posting.Posting) (float64, bool) {
	r, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil || !r.HasEmbedding() || !p.HasEmbedding() {
		return 0, false
	}
	candidateRec, err := s.vectors.Get(ctx, vectorstore.CollectionResumes, r.EmbeddingRef)
	if err != nil {
		return 0, false
	}
	postingRec, err := s.vectors.Get(ctx, vectorstore.CollectionPostings, p.EmbeddingRef)
	if err != nil {
		return 0, false
	}
	result, err := s.engine.Score(r.ToProfile(), p.ToRequirements(), candidateRec.Embedding, postingRec.Embedding)
	if err != nil {
		logx.Warnf("ranking: tailored rescore failed: resume=%s posting=%s err=%v", resumeID, p.ID, err)
		return 0, false
	}
	return result.OverallScore, true
}

func (s *RankingService) annotateEducation(ctx context.Context, rc *RankedCandidate) {
	if base, err := s.resumes.GetActiveBase(ctx, rc.CandidateID); err == nil && base.ParsedData != nil {
		_, label := scoring.HighestEducation(base.ParsedData.Degrees())
		rc.EducationLevel = label
	}
}

func annotateFlag(rc *RankedCandidate, flags map[kernel.AccountID]*flagging.Flag) {
	flag, ok := flags[rc.CandidateID]
	if !ok {
		return
	}
	rc.Flagged = true
	rc.FlagReason = flag.ReasonText()
	for _, dim := range flag.Reasons {
		rc.FlagReasons = append(rc.FlagReasons, string(dim))
	}
}

// ApplyRankFilter keeps candidates passing every set constraint. Flag
// annotations are assumed already present.
func ApplyRankFilter(ranked []RankedCandidate, f RankFilter) []RankedCandidate {
	out := make([]RankedCandidate, 0, len(ranked))
	for _, rc := range ranked {
		if f.MinScore > 0 && float64(rc.MatchScore) < f.MinScore {
			continue
		}
		if f.MaxScore > 0 && float64(rc.MatchScore) > f.MaxScore {
			continue
		}
		if f.MinExperience > 0 && rc.ExperienceYears < f.MinExperience {
			continue
		}
		if f.MaxExperience > 0 && rc.ExperienceYears > f.MaxExperience {
			continue
		}
		if len(f.MustHaveSkills) > 0 && !containsAll(rc.MatchedSkills, f.MustHaveSkills) {
			continue
		}
		if f.MinEducation != "" {
			required := scoring.EducationRank(f.MinEducation)
			have, _ := scoring.HighestEducation([]string{rc.EducationLevel})
			if have < required {
				continue
			}
		}
		if f.ExcludeFlagged && rc.Flagged {
			continue
		}
		out = append(out, rc)
	}
	return out
}

// SortRanked orders in place.
func SortRanked(ranked []RankedCandidate, by RankSort, order SortOrder) {
	if order == "" {
		if by == SortByName {
			order = OrderAsc
		} else {
			order = OrderDesc
		}
	}

	var less func(i, j int) bool
	switch by {
	case SortByExperience:
		less = func(i, j int) bool { return ranked[i].ExperienceYears < ranked[j].ExperienceYears }
	case SortByName:
		less = func(i, j int) bool {
			return strings.ToLower(ranked[i].Name) < strings.ToLower(ranked[j].Name)
		}
	case SortByAppliedAt:
		less = func(i, j int) bool { return ranked[i].AppliedAt < ranked[j].AppliedAt }
	default:
		less = func(i, j int) bool { return ranked[i].MatchScore < ranked[j].MatchScore }
	}

	if order == OrderDesc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(ranked, less)
}

// containsAll reports whether every wanted skill substring-matches at least
// one of the candidate's skills.
func containsAll(have, want []string) bool {
	lowered := make([]string, len(have))
	for i, s := range have {
		lowered[i] = strings.ToLower(strings.TrimSpace(s))
	}
	for _, w := range want {
		w = strings.ToLower(strings.TrimSpace(w))
		found := false
		for _, h := range lowered {
			if strings.Contains(h, w) {
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

func topN(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
