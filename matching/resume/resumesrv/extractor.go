package resumesrv

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/internal/ai/llm"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/skillvocab"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const fallbackSummary = "Resume parsing failed. Manual review required."

const extractionSystemPrompt = `You are a professional resume parser. Extract ALL information from the resume text and return ONLY valid JSON.`

const extractionPromptTemplate = `Extract all information from this resume in the following JSON structure:

{
  "personal_info": {
    "name": string,
    "email": string,
    "phone": string,
    "location": string,
    "linkedin": string,
    "github": string
  },
  "skills": {
    "technical": string[],
    "soft": string[]
  },
  "experience": [{
    "company": string,
    "role": string,
    "start_date": string (YYYY-MM format),
    "end_date": string (YYYY-MM or "Present"),
    "description": string,
    "achievements": string[]
  }],
  "education": [{
    "degree": string,
    "field": string,
    "institution": string,
    "year": string,
    "grade": string
  }],
  "projects": [{
    "name": string,
    "description": string,
    "technologies": string[]
  }],
  "certifications": [{
    "name": string,
    "issuer": string,
    "date": string
  }],
  "summary": string (professional summary, max 250 words)
}

IMPORTANT:
- Every key must be present; use empty strings or empty arrays when unknown
- Maintain chronological order (newest first)
- Return ONLY the JSON, no explanatory text

Resume text:
`

// Extractor turns resume plain text into structured data. Extraction never
// fails the upload: when the LLM is unusable a regex fallback still yields a
// record that can be embedded and matched.
type Extractor struct {
	llm *llm.Client
	now func() time.Time
}

func NewExtractor(client *llm.Client) *Extractor {
	return &Extractor{llm: client, now: time.Now}
}

// Extract runs the LLM extraction with the deterministic fallback, and
// derives all_skills and the experience totals.
func (e *Extractor) Extract(ctx context.Context, text string) *resume.ParsedData {
	data := e.llmExtract(ctx, text)
	if data == nil {
		data = FallbackExtract(text)
	}
	DeriveFields(data, e.now())
	return data
}

func (e *Extractor) llmExtract(ctx context.Context, text string) *resume.ParsedData {
	if e.llm == nil {
		return nil
	}

	reply, err := e.llm.Complete(ctx, llm.PurposeResumeParsing,
		extractionSystemPrompt, extractionPromptTemplate+text)
	if err != nil {
		logx.Warnf("resume extraction: llm unavailable, using fallback: %v", err)
		return nil
	}

	data := &resume.ParsedData{}
	if err := json.Unmarshal([]byte(reply), data); err != nil {
		logx.Warnf("resume extraction: unparseable llm reply, using fallback: %v", err)
		return nil
	}
	return data
}

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\b\d{10}\b|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
)

// FallbackExtract derives what it can with regexes and the fixed skill
// vocabulary. Everything else stays empty.
func FallbackExtract(text string) *resume.ParsedData {
	data := &resume.ParsedData{
		Summary: fallbackSummary,
		Skills: resume.SkillGroups{
			Technical: skillvocab.FindInText(text),
			Soft:      []string{},
		},
		Experience:     []resume.Experience{},
		Education:      []resume.Education{},
		Projects:       []resume.Project{},
		Certifications: []resume.Certification{},
	}
	if m := emailRe.FindString(text); m != "" {
		data.PersonalInfo.Email = m
	}
	if m := phoneRe.FindString(text); m != "" {
		data.PersonalInfo.Phone = m
	}
	return data
}

// DeriveFields computes all_skills and the experience totals in place.
func DeriveFields(data *resume.ParsedData, now time.Time) {
	skills := append([]string{}, data.Skills.Technical...)
	skills = append(skills, data.Skills.Soft...)
	for _, p := range data.Projects {
		skills = append(skills, p.Technologies...)
	}
	data.AllSkills = DedupeSkills(skills)

	data.TotalExperienceMonths = TotalExperienceMonths(data.Experience, now)
	data.TotalExperienceYears = round1(float64(data.TotalExperienceMonths) / 12)
}

// DedupeSkills removes case-insensitive duplicates, keeping the first-seen
// casing and order.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

type monthSpan struct {
	start int // inclusive month index
	end   int // exclusive month index
}

// TotalExperienceMonths sums the experience spans after merging overlaps.
// Each span becomes a half-open month range; "Present" ends at the current
// month; year-only dates expand to January (start) or December (end).
// Unparseable spans are skipped silently.
func TotalExperienceMonths(entries []resume.Experience, now time.Time) int {
	spans := make([]monthSpan, 0, len(entries))
	for _, e := range entries {
		start, ok := parseMonth(e.StartDate, now, false)
		if !ok {
			continue
		}
		endInclusive, ok := parseMonth(e.EndDate, now, true)
		if !ok || endInclusive < start {
			continue
		}
		spans = append(spans, monthSpan{start: start, end: endInclusive + 1})
	}
	if len(spans) == 0 {
		return 0
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	total := 0
	current := spans[0]
	for _, s := range spans[1:] {
		if s.start <= current.end {
			if s.end > current.end {
				current.end = s.end
			}
			continue
		}
		total += current.end - current.start
		current = s
	}
	total += current.end - current.start
	return total
}

// parseMonth converts a date string to an absolute month index
// (year*12 + month-1). isEnd controls how open-ended and year-only values
// resolve.
func parseMonth(s string, now time.Time, isEnd bool) (int, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}

	if isEnd {
		switch s {
		case "present", "current", "now", "ongoing":
			return now.Year()*12 + int(now.Month()) - 1, true
		}
	}

	if year, month, ok := splitYearMonth(s); ok {
		return year*12 + month - 1, true
	}

	if year, err := strconv.Atoi(s); err == nil && year >= 1900 && year <= 2200 {
		if isEnd {
			return year*12 + 11, true
		}
		return year * 12, true
	}
	return 0, false
}

func splitYearMonth(s string) (year, month int, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1900 || year > 2200 {
		return 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
