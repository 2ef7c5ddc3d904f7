package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/llm"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

// Explainer turns a scoring result into a short narrative. The LLM is
// best-effort; the deterministic template always works.
type Explainer struct {
	llm *llm.Client
}

func NewExplainer(client *llm.Client) *Explainer {
	return &Explainer{llm: client}
}

// Explain produces a 3-4 bullet narrative for a scored pair. Never fails:
// when the LLM is unavailable it falls back to the template.
func (e *Explainer) Explain(ctx context.Context, postingTitle string, result *Result) string {
	if e.llm != nil {
		prompt := fmt.Sprintf(
			`A candidate was scored %.1f/100 for the internship "%s".
Component scores: semantic %.1f, skills %.1f, experience %.1f, education %.1f, projects/certifications %.1f.
Matched skills: %s. Missing skills: %s. Experience gap to minimum: %.1f years.

Write 3-4 short bullet points explaining this match to a recruiter. Be concrete and neutral. Return only the bullets.`,
			result.OverallScore, postingTitle,
			result.Components.SemanticSimilarity, result.Components.SkillsMatch,
			result.Components.ExperienceMatch, result.Components.EducationMatch,
			result.Components.ProjectsCerts,
			joinOrNone(result.MatchedSkills), joinOrNone(result.MissingSkills),
			result.ExperienceGap,
		)

		text, err := e.llm.Complete(ctx, llm.PurposeMatchingExplanation,
			"You explain candidate-internship match scores to recruiters.", prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			logx.Warnf("scoring: explanation fell back to template: %v", err)
		}
	}

	return TemplateExplanation(result)
}

// TemplateExplanation is the deterministic fallback narrative.
func TemplateExplanation(result *Result) string {
	tier := "Weak"
	switch {
	case result.OverallScore >= 80:
		tier = "Strong"
	case result.OverallScore >= 60:
		tier = "Moderate"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s match with an overall score of %.1f/100.\n", tier, result.OverallScore)
	fmt.Fprintf(&sb, "- %d skills matched, %d required skills missing.\n",
		len(result.MatchedSkills), len(result.MissingSkills))
	if len(result.MatchedSkills) > 0 {
		fmt.Fprintf(&sb, "- Matched: %s.\n", strings.Join(firstN(result.MatchedSkills, 3), ", "))
	}
	if len(result.MissingSkills) > 0 {
		fmt.Fprintf(&sb, "- Missing: %s.\n", strings.Join(firstN(result.MissingSkills, 3), ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
