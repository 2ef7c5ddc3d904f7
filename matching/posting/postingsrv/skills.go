package postingsrv

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/llm"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/skillvocab"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const minDescriptionLen = 50

const skillsSystemPrompt = `You extract technical skills from internship descriptions. Return ONLY valid JSON.`

const skillsPromptTemplate = `Extract the required and preferred skills from this internship description. Classify a skill as required when the text demands it, preferred when it is a nice-to-have. Return ONLY this JSON:

{"required_skills": string[], "preferred_skills": string[]}

Description:
`

var (
	requiredMarkers  = []string{"required", "must have", "mandatory", "essential", "qualifications"}
	preferredMarkers = []string{"preferred", "nice to have", "plus", "bonus", "desirable"}
)

// ExtractSkills derives required and preferred skills from a description,
// via the LLM when possible, falling back to the deterministic keyword
// scanner.
func (s *PostingService) ExtractSkills(ctx context.Context, description string) (*posting.ExtractedSkills, error) {
	if len(strings.TrimSpace(description)) < minDescriptionLen {
		return nil, posting.ErrDescriptionTooShort()
	}

	if s.llm != nil {
		if out := s.llmExtractSkills(ctx, description); out != nil {
			return out, nil
		}
	}
	out := KeywordExtractSkills(description)
	out.Source = "keyword"
	return out, nil
}

func (s *PostingService) llmExtractSkills(ctx context.Context, description string) *posting.ExtractedSkills {
	reply, err := s.llm.Complete(ctx, llm.PurposeSkillsExtraction,
		skillsSystemPrompt, skillsPromptTemplate+description)
	if err != nil {
		logx.Warnf("skill extraction llm unavailable, using keyword scan: %v", err)
		return nil
	}

	var parsed struct {
		RequiredSkills  []string `json:"required_skills"`
		PreferredSkills []string `json:"preferred_skills"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		logx.Warnf("skill extraction returned non-JSON, using keyword scan: %v", err)
		return nil
	}

	required, preferred := dedupeAcross(parsed.RequiredSkills, parsed.PreferredSkills)
	return &posting.ExtractedSkills{
		RequiredSkills:  required,
		PreferredSkills: preferred,
		Source:          "llm",
	}
}

// KeywordExtractSkills scans the description line by line against the fixed
// vocabulary. Section headers flip the bucket new finds land in; text before
// any header counts as required.
func KeywordExtractSkills(description string) *posting.ExtractedSkills {
	var required, preferred []string
	inPreferred := false

	for _, line := range strings.Split(description, "\n") {
		lower := strings.ToLower(line)
		if isSectionHeader(lower, preferredMarkers) {
			inPreferred = true
		} else if isSectionHeader(lower, requiredMarkers) {
			inPreferred = false
		}

		for _, skill := range skillvocab.FindInText(line) {
			if inPreferred {
				preferred = append(preferred, skill)
			} else {
				required = append(required, skill)
			}
		}
	}

	required, preferred = dedupeAcross(required, preferred)
	return &posting.ExtractedSkills{RequiredSkills: required, PreferredSkills: preferred}
}

func isSectionHeader(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// dedupeAcross canonicalizes casing and removes duplicates within and across
// the two buckets. A skill appearing in both stays required.
func dedupeAcross(required, preferred []string) ([]string, []string) {
	seen := make(map[string]bool)
	outReq := make([]string, 0, len(required))
	for _, s := range required {
		c := skillvocab.Canonical(s)
		key := strings.ToLower(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		outReq = append(outReq, c)
	}
	outPref := make([]string, 0, len(preferred))
	for _, s := range preferred {
		c := skillvocab.Canonical(s)
		key := strings.ToLower(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		outPref = append(outPref, c)
	}
	return outReq, outPref
}
