package docparse

import (
	"bytes"
	"html"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz" // Lightweight PDF renderer
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/nguyenthenguyen/docx"
)

var ErrRegistry = errx.NewRegistry("DOCPARSE")

var (
	CodeUnsupportedFileType = ErrRegistry.Register("UNSUPPORTED_FILE_TYPE", errx.TypeValidation,
		http.StatusBadRequest, "only PDF, DOCX and TXT files are supported")
	CodeEmptyDocument = ErrRegistry.Register("EMPTY_DOCUMENT", errx.TypeValidation,
		http.StatusUnprocessableEntity, "no text could be extracted from the document")
	CodeCorruptDocument = ErrRegistry.Register("CORRUPT_DOCUMENT", errx.TypeValidation,
		http.StatusUnprocessableEntity, "document could not be opened")
)

// SupportedExtension reports whether a filename has a parseable extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// ExtractText pulls plain text out of an uploaded document. The extension of
// filename decides the parser.
func ExtractText(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt":
		text = string(data)
	default:
		return "", ErrRegistry.New(CodeUnsupportedFileType).WithDetail("filename", filename)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrRegistry.New(CodeEmptyDocument).WithDetail("filename", filename)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeCorruptDocument, err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", ErrRegistry.NewWithCause(CodeCorruptDocument, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	paragraphRe = regexp.MustCompile(`</w:p>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeCorruptDocument, err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = paragraphRe.ReplaceAllString(content, "\n")
	content = tagRe.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}
