package scoring

import (
	"math"
	"net/http"
	"strings"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

// Component weights of the composite score. Fixed globally, not per posting.
const (
	WeightSkills        = 0.45
	WeightExperience    = 0.25
	WeightSemantic      = 0.10
	WeightEducation     = 0.10
	WeightProjectsCerts = 0.10
)

var ErrRegistry = errx.NewRegistry("SCORING")

var (
	CodeEmbeddingMissing = ErrRegistry.Register("EMBEDDING_MISSING", errx.TypeBusiness,
		http.StatusUnprocessableEntity, "candidate or posting embedding is missing or zero")
)

func ErrEmbeddingMissing() *errx.Error { return ErrRegistry.New(CodeEmbeddingMissing) }

// CandidateProfile is the slice of a resume's extraction the engine needs.
type CandidateProfile struct {
	Skills             []string
	ExperienceYears    float64
	Degrees            []string
	ProjectCount       int
	CertificationCount int
}

// PostingRequirements is the slice of a posting the engine needs.
type PostingRequirements struct {
	RequiredSkills    []string
	PreferredSkills   []string
	MinExperience     float64
	MaxExperience     float64
	RequiredEducation string
}

// ComponentScores is the per-dimension breakdown, each in [0, 100].
type ComponentScores struct {
	SemanticSimilarity float64 `json:"semantic_similarity"`
	SkillsMatch        float64 `json:"skills_match"`
	ExperienceMatch    float64 `json:"experience_match"`
	EducationMatch     float64 `json:"education_match"`
	ProjectsCerts      float64 `json:"projects_certs"`
}

// Result is one scored (candidate, posting) pair.
type Result struct {
	OverallScore  float64         `json:"overall_score"`
	Components    ComponentScores `json:"component_scores"`
	MatchedSkills []string        `json:"matched_skills"`
	MissingSkills []string        `json:"missing_skills"`
	ExperienceGap float64         `json:"experience_gap"`
}

// Engine combines semantic similarity with rule-based components into a
// 0-100 composite.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Score computes the weighted composite for a pair. Both embeddings must be
// present and non-zero; otherwise the pair is unscorable and the caller
// decides whether to skip it.
func (e *Engine) Score(candidate CandidateProfile, posting PostingRequirements, candidateEmb, postingEmb []float32) (*Result, error) {
	semantic, err := SemanticSimilarity(candidateEmb, postingEmb)
	if err != nil {
		return nil, err
	}

	skills := SkillsMatch(candidate.Skills, posting.RequiredSkills, posting.PreferredSkills)
	experience, gap := ExperienceMatch(candidate.ExperienceYears, posting.MinExperience, posting.MaxExperience)
	education := EducationMatch(candidate.Degrees, posting.RequiredEducation)
	projectsCerts := ProjectsCertsScore(candidate.ProjectCount, candidate.CertificationCount)

	composite := WeightSkills*skills.Score +
		WeightExperience*experience +
		WeightSemantic*semantic +
		WeightEducation*education +
		WeightProjectsCerts*projectsCerts

	return &Result{
		OverallScore: round2(composite),
		Components: ComponentScores{
			SemanticSimilarity: round2(semantic),
			SkillsMatch:        round2(skills.Score),
			ExperienceMatch:    round2(experience),
			EducationMatch:     round2(education),
			ProjectsCerts:      round2(projectsCerts),
		},
		MatchedSkills: skills.Matched,
		MissingSkills: skills.Missing,
		ExperienceGap: round2(gap),
	}, nil
}

// SemanticSimilarity is 100 times the cosine of the two vectors, floored at
// zero. Missing or zero-norm vectors are an error, never a default score.
func SemanticSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, ErrEmbeddingMissing().
			WithDetail("candidate_dim", len(a)).
			WithDetail("posting_dim", len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, ErrEmbeddingMissing().WithDetail("reason", "zero vector")
	}

	score := 100 * dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

// SkillsBreakdown is the skills component plus its evidence.
type SkillsBreakdown struct {
	Score   float64
	Matched []string
	Missing []string
}

// SkillsMatch scores candidate skills against a posting's required and
// preferred lists. Skills match when one normalized string contains the
// other; "Node" therefore matches "Node.js". Required skills carry 70 points,
// preferred 30.
func SkillsMatch(candidateSkills, requiredSkills, preferredSkills []string) SkillsBreakdown {
	candidate := normalizeSkills(candidateSkills)

	matchesAny := func(skill string) bool {
		norm := normalizeSkill(skill)
		if norm == "" {
			return false
		}
		for _, c := range candidate {
			if strings.Contains(c, norm) || strings.Contains(norm, c) {
				return true
			}
		}
		return false
	}

	var matched, missing []string
	matchedPreferred := 0
	for _, s := range preferredSkills {
		if matchesAny(s) {
			matched = append(matched, s)
			matchedPreferred++
		}
	}

	// No required skills means the posting accepts anyone on this axis.
	if len(requiredSkills) == 0 {
		return SkillsBreakdown{Score: 100, Matched: matched}
	}

	matchedRequired := 0
	for _, s := range requiredSkills {
		if matchesAny(s) {
			matched = append([]string{s}, matched...)
			matchedRequired++
		} else {
			missing = append(missing, s)
		}
	}

	score := 70 * float64(matchedRequired) / float64(len(requiredSkills))
	if len(preferredSkills) > 0 {
		score += 30 * float64(matchedPreferred) / float64(len(preferredSkills))
	} else {
		score += 30
	}
	if score > 100 {
		score = 100
	}

	return SkillsBreakdown{Score: score, Matched: matched, Missing: missing}
}

// ExperienceMatch scores candidate years against the posting band and returns
// the signed gap to the band's lower bound.
func ExperienceMatch(years, min, max float64) (score, gap float64) {
	gap = years - min

	switch {
	case years >= min && years <= max:
		return 100, gap
	case years > max:
		return 85, gap
	}

	deficit := min - years
	switch {
	case deficit <= 0.5:
		return 90, gap
	case deficit <= 1:
		return 70, gap
	case deficit <= 2:
		return 50, gap
	default:
		return 30, gap
	}
}

var educationLevels = []struct {
	keyword string
	level   int
}{
	{"phd", 5},
	{"doctorate", 5},
	{"master", 4},
	{"mba", 4},
	{"bachelor", 3},
	{"diploma", 2},
	{"certificate", 1},
}

func educationLevel(s string) int {
	s = strings.ToLower(s)
	best := 0
	for _, e := range educationLevels {
		if strings.Contains(s, e.keyword) && e.level > best {
			best = e.level
		}
	}
	return best
}

// EducationRank maps a degree or requirement string onto the education
// ladder. Zero means unrecognized.
func EducationRank(s string) int { return educationLevel(s) }

var educationLabels = map[int]string{
	5: "PhD",
	4: "Master",
	3: "Bachelor",
	2: "Diploma",
	1: "Certificate",
}

// HighestEducation returns the candidate's best ladder rank and its label.
func HighestEducation(degrees []string) (int, string) {
	highest := 0
	for _, d := range degrees {
		if l := educationLevel(d); l > highest {
			highest = l
		}
	}
	return highest, educationLabels[highest]
}

// EducationMatch compares the candidate's highest degree level against the
// posting's requirement. Missing information on either side is neutral (70).
func EducationMatch(degrees []string, requiredEducation string) float64 {
	required := educationLevel(requiredEducation)
	if required == 0 {
		return 70
	}

	highest := 0
	for _, d := range degrees {
		if l := educationLevel(d); l > highest {
			highest = l
		}
	}
	if highest == 0 {
		return 70
	}

	switch {
	case highest >= required:
		return 100
	case required-highest == 1:
		return 80
	default:
		return 50
	}
}

// ProjectsCertsScore rewards portfolio evidence, capped so it saturates at
// 5 projects and 4 certifications.
func ProjectsCertsScore(projects, certifications int) float64 {
	if projects > 5 {
		projects = 5
	}
	if certifications > 4 {
		certifications = 4
	}
	score := 12*float64(projects) + 10*float64(certifications)
	if score > 100 {
		score = 100
	}
	return score
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := normalizeSkill(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
