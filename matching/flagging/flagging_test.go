package flagging

import (
	"testing"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9998887777", NormalizePhone("999-888-7777"))
	assert.Equal(t, "919998887777", NormalizePhone("+91 99988 87777"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestNormalizeURLRoundtrip(t *testing.T) {
	assert.Equal(t,
		NormalizeURL("linkedin.com/in/alice"),
		NormalizeURL("HTTPS://WWW.LinkedIn.com/in/alice/"),
	)
	assert.Equal(t, "github.com/bob", NormalizeURL("http://github.com/bob/"))
}

func TestDetectSharedPhone(t *testing.T) {
	// Two candidates with active resumes share a phone. The caller already
	// excluded resume-less candidates, so only these two appear here.
	flags := Detect([]Contact{
		{CandidateID: "a", Phone: "999-888-7777"},
		{CandidateID: "b", Phone: "9998887777"},
		{CandidateID: "c", Phone: "1112223333"},
	})

	require.Len(t, flags, 2)
	require.Contains(t, flags, kernel.AccountID("a"))
	require.Contains(t, flags, kernel.AccountID("b"))

	assert.Equal(t, []Dimension{DimensionMobile}, flags["a"].Reasons)
	assert.Equal(t, []kernel.AccountID{"b"}, flags["a"].FlaggedWith[DimensionMobile])
	assert.Equal(t, []kernel.AccountID{"a"}, flags["b"].FlaggedWith[DimensionMobile])
	assert.NotContains(t, flags, kernel.AccountID("c"))
}

func TestDetectMultipleDimensions(t *testing.T) {
	flags := Detect([]Contact{
		{CandidateID: "a", Phone: "9998887777", LinkedIn: "linkedin.com/in/x", GitHub: "github.com/x"},
		{CandidateID: "b", Phone: "999 888 7777", LinkedIn: "https://www.linkedin.com/in/x/", GitHub: "github.com/y"},
	})

	require.Contains(t, flags, kernel.AccountID("a"))
	assert.Equal(t, []Dimension{DimensionMobile, DimensionLinkedIn}, flags["a"].Reasons)
	assert.Equal(t, "Same Mobile number & LinkedIn", flags["a"].ReasonText())
}

func TestDetectEmptyValuesNeverGroup(t *testing.T) {
	flags := Detect([]Contact{
		{CandidateID: "a"},
		{CandidateID: "b"},
	})
	assert.Empty(t, flags)
}

func TestFormatFlagReason(t *testing.T) {
	assert.Equal(t, "Same Mobile number", FormatFlagReason([]Dimension{DimensionMobile}))
	assert.Equal(t, "Same LinkedIn & GitHub",
		FormatFlagReason([]Dimension{DimensionLinkedIn, DimensionGitHub}))
	assert.Equal(t, "Same Mobile number, LinkedIn & GitHub",
		FormatFlagReason([]Dimension{DimensionMobile, DimensionLinkedIn, DimensionGitHub}))
	assert.Equal(t, "", FormatFlagReason(nil))
}
