package account

import (
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	CodeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "account not found")
	CodeEmailTaken = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict,
		http.StatusConflict, "an account with this email already exists")
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization,
		http.StatusUnauthorized, "invalid email or password")
	CodeNotAuthorized = ErrRegistry.Register("NOT_AUTHORIZED", errx.TypeAuthorization,
		http.StatusForbidden, "not authorized for this operation")
	CodeInvalidData = ErrRegistry.Register("INVALID_DATA", errx.TypeValidation,
		http.StatusBadRequest, "invalid account data")
)

func ErrNotFound() *errx.Error           { return ErrRegistry.New(CodeNotFound) }
func ErrEmailTaken() *errx.Error         { return ErrRegistry.New(CodeEmailTaken) }
func ErrInvalidCredentials() *errx.Error { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrNotAuthorized() *errx.Error      { return ErrRegistry.New(CodeNotAuthorized) }
func ErrInvalidData() *errx.Error        { return ErrRegistry.New(CodeInvalidData) }
