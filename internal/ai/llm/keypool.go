package llm

import (
	"fmt"
	"os"
	"sync"
)

// Purpose names the task a key is reserved for. Keys bound to a purpose are
// tried first for calls of that purpose.
type Purpose string

const (
	PurposeResumeParsing         Purpose = "resume_parsing"
	PurposeMatchingExplanation   Purpose = "matching_explanation"
	PurposeSkillsExtraction      Purpose = "skills_extraction"
	PurposeCandidateSummary      Purpose = "candidate_summary"
	PurposeInternshipAnalysis    Purpose = "internship_analysis"
	PurposeAchievementExtraction Purpose = "achievement_extraction"
)

type poolKey struct {
	key     string
	purpose Purpose // empty for general-use keys
}

// KeyPool tracks API keys, which of them failed during the current pass, and
// which are revoked for the life of the process.
type KeyPool struct {
	mu      sync.Mutex
	keys    []poolKey
	failed  map[string]bool
	revoked map[string]bool
}

// NewKeyPool builds a pool from explicit key/purpose pairs.
func NewKeyPool(keys map[Purpose]string, fallbacks []string) *KeyPool {
	p := &KeyPool{
		failed:  make(map[string]bool),
		revoked: make(map[string]bool),
	}
	for purpose, key := range keys {
		if key != "" {
			p.keys = append(p.keys, poolKey{key: key, purpose: purpose})
		}
	}
	for _, key := range fallbacks {
		if key != "" {
			p.keys = append(p.keys, poolKey{key: key})
		}
	}
	return p
}

// NewKeyPoolFromEnv reads purpose-bound keys (LLM_API_KEY_RESUME_PARSING,
// LLM_API_KEY_SKILLS_EXTRACTION, ...) and fallbacks (LLM_API_KEY_FALLBACK_1..3,
// LLM_API_KEY).
func NewKeyPoolFromEnv() *KeyPool {
	purposeEnv := map[Purpose]string{
		PurposeResumeParsing:         "LLM_API_KEY_RESUME_PARSING",
		PurposeMatchingExplanation:   "LLM_API_KEY_MATCHING_EXPLANATION",
		PurposeSkillsExtraction:      "LLM_API_KEY_SKILLS_EXTRACTION",
		PurposeCandidateSummary:      "LLM_API_KEY_CANDIDATE_SUMMARY",
		PurposeInternshipAnalysis:    "LLM_API_KEY_INTERNSHIP_ANALYSIS",
		PurposeAchievementExtraction: "LLM_API_KEY_ACHIEVEMENT_EXTRACTION",
	}

	keys := make(map[Purpose]string, len(purposeEnv))
	for purpose, env := range purposeEnv {
		keys[purpose] = os.Getenv(env)
	}

	var fallbacks []string
	for i := 1; i <= 3; i++ {
		fallbacks = append(fallbacks, os.Getenv(fmt.Sprintf("LLM_API_KEY_FALLBACK_%d", i)))
	}
	fallbacks = append(fallbacks, os.Getenv("LLM_API_KEY"))

	return NewKeyPool(keys, fallbacks)
}

// Size returns how many keys the pool holds.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// PriorityFor returns the usable keys for a purpose, in order: the key bound
// to the purpose, then unbound fallbacks, then keys bound to other purposes.
// Keys marked failed in the current pass and revoked keys are skipped.
func (p *KeyPool) PriorityFor(purpose Purpose) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var own, general, others []string
	for _, k := range p.keys {
		if p.failed[k.key] || p.revoked[k.key] {
			continue
		}
		switch {
		case k.purpose == purpose:
			own = append(own, k.key)
		case k.purpose == "":
			general = append(general, k.key)
		default:
			others = append(others, k.key)
		}
	}

	ordered := make([]string, 0, len(own)+len(general)+len(others))
	ordered = append(ordered, own...)
	ordered = append(ordered, general...)
	ordered = append(ordered, others...)
	return ordered
}

// MarkFailed excludes a key for the remainder of the current pass.
func (p *KeyPool) MarkFailed(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[key] = true
}

// MarkRevoked excludes a key for the life of the process. Used for keys the
// provider rejected as invalid; ClearFailed never brings them back.
func (p *KeyPool) MarkRevoked(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[key] = true
}

// ClearFailed makes rate-limited keys usable again for the next pass.
// Revoked keys stay excluded.
func (p *KeyPool) ClearFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = make(map[string]bool)
}
