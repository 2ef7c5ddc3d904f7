package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityForPrefersPurposeKey(t *testing.T) {
	pool := NewKeyPool(map[Purpose]string{
		PurposeResumeParsing:    "key-parse",
		PurposeSkillsExtraction: "key-skills",
	}, []string{"key-fb1", "key-fb2"})

	keys := pool.PriorityFor(PurposeResumeParsing)
	require.Len(t, keys, 4)
	assert.Equal(t, "key-parse", keys[0])
	assert.Equal(t, []string{"key-fb1", "key-fb2"}, keys[1:3])
	assert.Equal(t, "key-skills", keys[3])
}

func TestPriorityForSkipsFailedKeys(t *testing.T) {
	pool := NewKeyPool(map[Purpose]string{
		PurposeResumeParsing: "key-parse",
	}, []string{"key-fb1"})

	pool.MarkFailed("key-parse")
	keys := pool.PriorityFor(PurposeResumeParsing)
	assert.Equal(t, []string{"key-fb1"}, keys)

	pool.ClearFailed()
	keys = pool.PriorityFor(PurposeResumeParsing)
	assert.Equal(t, []string{"key-parse", "key-fb1"}, keys)
}

func TestPriorityForRevokedKeysStayOut(t *testing.T) {
	pool := NewKeyPool(map[Purpose]string{
		PurposeResumeParsing: "key-revoked",
	}, []string{"key-limited", "key-good"})

	pool.MarkRevoked("key-revoked")
	pool.MarkFailed("key-limited")
	assert.Equal(t, []string{"key-good"}, pool.PriorityFor(PurposeResumeParsing))

	// The pass reset restores rate-limited keys but never revoked ones.
	pool.ClearFailed()
	assert.Equal(t, []string{"key-limited", "key-good"}, pool.PriorityFor(PurposeResumeParsing))
}

func TestNewKeyPoolDropsEmptyKeys(t *testing.T) {
	pool := NewKeyPool(map[Purpose]string{
		PurposeResumeParsing: "",
	}, []string{"", "key-fb"})

	assert.Equal(t, 1, pool.Size())
	assert.Equal(t, []string{"key-fb"}, pool.PriorityFor(PurposeCandidateSummary))
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  plain text  ":          "plain text",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in))
	}
}
