package flagging

import (
	"regexp"
	"strings"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Dimension names one contact field candidates can collide on.
type Dimension string

const (
	DimensionMobile   Dimension = "same_mobile"
	DimensionLinkedIn Dimension = "same_linkedin"
	DimensionGitHub   Dimension = "same_github"
)

// dimensionOrder fixes the order reasons appear in output.
var dimensionOrder = []Dimension{DimensionMobile, DimensionLinkedIn, DimensionGitHub}

var reasonLabels = map[Dimension]string{
	DimensionMobile:   "Mobile number",
	DimensionLinkedIn: "LinkedIn",
	DimensionGitHub:   "GitHub",
}

// Contact is one candidate's normalizable contact surface. Only candidates
// with an active resume should be passed in; incomplete profiles would flood
// the detector with noise.
type Contact struct {
	CandidateID kernel.AccountID
	Phone       string
	LinkedIn    string
	GitHub      string
}

// Flag is the detector's verdict for one candidate.
type Flag struct {
	Reasons     []Dimension                      `json:"reasons"`
	FlaggedWith map[Dimension][]kernel.AccountID `json:"flagged_with"`
}

// ReasonText renders the flag for display.
func (f *Flag) ReasonText() string {
	return FormatFlagReason(f.Reasons)
}

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizePhone keeps digits only. Empty results mean "no phone".
func NormalizePhone(phone string) string {
	return nonDigitRe.ReplaceAllString(phone, "")
}

// NormalizeURL lowercases and strips scheme, www. and trailing slashes so
// profile URLs compare by identity rather than formatting.
func NormalizeURL(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "www.")
	return strings.TrimRight(url, "/")
}

// Detect groups candidates by normalized contact values and flags every
// member of a group of two or more. Pure: never mutates its input.
func Detect(contacts []Contact) map[kernel.AccountID]*Flag {
	buckets := map[Dimension]map[string][]kernel.AccountID{
		DimensionMobile:   {},
		DimensionLinkedIn: {},
		DimensionGitHub:   {},
	}

	for _, c := range contacts {
		if key := NormalizePhone(c.Phone); key != "" {
			buckets[DimensionMobile][key] = append(buckets[DimensionMobile][key], c.CandidateID)
		}
		if key := NormalizeURL(c.LinkedIn); key != "" {
			buckets[DimensionLinkedIn][key] = append(buckets[DimensionLinkedIn][key], c.CandidateID)
		}
		if key := NormalizeURL(c.GitHub); key != "" {
			buckets[DimensionGitHub][key] = append(buckets[DimensionGitHub][key], c.CandidateID)
		}
	}

	flags := make(map[kernel.AccountID]*Flag)
	for _, dim := range dimensionOrder {
		for _, ids := range buckets[dim] {
			if len(ids) < 2 {
				continue
			}
			for _, id := range ids {
				flag := flags[id]
				if flag == nil {
					flag = &Flag{FlaggedWith: make(map[Dimension][]kernel.AccountID)}
					flags[id] = flag
				}
				flag.Reasons = append(flag.Reasons, dim)
				for _, other := range ids {
					if other != id {
						flag.FlaggedWith[dim] = append(flag.FlaggedWith[dim], other)
					}
				}
			}
		}
	}
	return flags
}

// FormatFlagReason renders reasons as "Same Mobile number", "Same Mobile
// number & LinkedIn" or "Same Mobile number, LinkedIn & GitHub".
func FormatFlagReason(reasons []Dimension) string {
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if label, ok := reasonLabels[r]; ok {
			labels = append(labels, label)
		}
	}

	switch len(labels) {
	case 0:
		return ""
	case 1:
		return "Same " + labels[0]
	case 2:
		return "Same " + labels[0] + " & " + labels[1]
	default:
		return "Same " + strings.Join(labels[:len(labels)-1], ", ") + " & " + labels[len(labels)-1]
	}
}
