package posting

import (
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("POSTING")

var (
	CodeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "posting not found")
	CodeInvalidData = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation,
		http.StatusBadRequest, "invalid posting data")
	CodeNotOwner = ErrRegistry.Register("NOT_OWNER", errx.TypeAuthorization,
		http.StatusForbidden, "posting belongs to another company")
	CodeDescriptionTooShort = ErrRegistry.Register("DESCRIPTION_TOO_SHORT", errx.TypeValidation,
		http.StatusBadRequest, "description must be at least 50 characters for skill extraction")
)

func ErrNotFound() *errx.Error            { return ErrRegistry.New(CodeNotFound) }
func ErrInvalidData() *errx.Error         { return ErrRegistry.New(CodeInvalidData) }
func ErrNotOwner() *errx.Error            { return ErrRegistry.New(CodeNotOwner) }
func ErrDescriptionTooShort() *errx.Error { return ErrRegistry.New(CodeDescriptionTooShort) }
