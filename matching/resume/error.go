package resume

import (
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RESUME")

var (
	CodeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "resume not found")
	CodeNoActiveResume = ErrRegistry.Register("NO_ACTIVE_RESUME", errx.TypeBusiness,
		http.StatusBadRequest, "candidate has no active base resume")
	CodeInvalidData = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation,
		http.StatusBadRequest, "invalid resume data")
	CodeUploadFailed = ErrRegistry.Register("UPLOAD_FAILED", errx.TypeInternal,
		http.StatusInternalServerError, "resume upload failed")
	CodeNotOwner = ErrRegistry.Register("NOT_OWNER", errx.TypeAuthorization,
		http.StatusForbidden, "resume belongs to another candidate")
)

func ErrNotFound() *errx.Error       { return ErrRegistry.New(CodeNotFound) }
func ErrNoActiveResume() *errx.Error { return ErrRegistry.New(CodeNoActiveResume) }
func ErrInvalidData() *errx.Error    { return ErrRegistry.New(CodeInvalidData) }
func ErrUploadFailed() *errx.Error   { return ErrRegistry.New(CodeUploadFailed) }
func ErrNotOwner() *errx.Error       { return ErrRegistry.New(CodeNotOwner) }
