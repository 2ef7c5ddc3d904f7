package llm

import (
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("LLM")

var (
	CodeUnavailable = ErrRegistry.Register("UNAVAILABLE", errx.TypeUnavailable, http.StatusServiceUnavailable,
		"all language model keys are exhausted or failing")
	CodeBadResponse = ErrRegistry.Register("BAD_RESPONSE", errx.TypeInternal, http.StatusBadGateway,
		"language model returned an unusable response")
	CodeEmptyPrompt = ErrRegistry.Register("EMPTY_PROMPT", errx.TypeValidation, http.StatusBadRequest,
		"prompt cannot be empty")
)

func ErrUnavailable() *errx.Error { return ErrRegistry.New(CodeUnavailable) }
func ErrBadResponse() *errx.Error { return ErrRegistry.New(CodeBadResponse) }
func ErrEmptyPrompt() *errx.Error { return ErrRegistry.New(CodeEmptyPrompt) }
