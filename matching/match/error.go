package match

import (
	"net/http"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("MATCH")

var (
	CodeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "match not found")
	CodeStoreFailure = ErrRegistry.Register("STORE_FAILURE", errx.TypeInternal,
		http.StatusInternalServerError, "match store operation failed")
)

func ErrNotFound() *errx.Error { return ErrRegistry.New(CodeNotFound) }
