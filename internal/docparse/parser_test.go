package docparse

import (
	"testing"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlainText(t *testing.T) {
	text, err := ExtractText("resume.TXT", []byte("  Jane Doe\nGo developer  "))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer", text)
}

func TestExtractTextUnsupportedExtension(t *testing.T) {
	_, err := ExtractText("resume.odt", []byte("data"))
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, CodeUnsupportedFileType))
}

func TestExtractTextEmptyDocument(t *testing.T) {
	_, err := ExtractText("blank.txt", []byte("   \n\t "))
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, CodeEmptyDocument))
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.pdf"))
	assert.True(t, SupportedExtension("a.DOCX"))
	assert.True(t, SupportedExtension("a.txt"))
	assert.False(t, SupportedExtension("a.png"))
	assert.False(t, SupportedExtension("a"))
}
