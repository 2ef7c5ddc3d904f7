package application

import (
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("APPLICATION")

var (
	CodeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "application not found")
	CodeAlreadyApplied = ErrRegistry.Register("ALREADY_APPLIED", errx.TypeConflict,
		http.StatusConflict, "candidate already applied to this posting")
	CodeInvalidStatus = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation,
		http.StatusBadRequest, "invalid application status")
	CodeNotOwner = ErrRegistry.Register("NOT_OWNER", errx.TypeAuthorization,
		http.StatusForbidden, "application belongs to another posting's company")
	CodeInvalidData = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation,
		http.StatusBadRequest, "invalid application data")
	CodePostingInactive = ErrRegistry.Register("POSTING_INACTIVE", errx.TypeValidation,
		http.StatusBadRequest, "posting is no longer accepting applications")
)

func ErrNotFound() *errx.Error        { return ErrRegistry.New(CodeNotFound) }
func ErrAlreadyApplied() *errx.Error  { return ErrRegistry.New(CodeAlreadyApplied) }
func ErrInvalidStatus() *errx.Error   { return ErrRegistry.New(CodeInvalidStatus) }
func ErrNotOwner() *errx.Error        { return ErrRegistry.New(CodeNotOwner) }
func ErrInvalidData() *errx.Error     { return ErrRegistry.New(CodeInvalidData) }
func ErrPostingInactive() *errx.Error { return ErrRegistry.New(CodePostingInactive) }
