package vectorstore

import (
	"context"
	"net/http"
	"strings"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
)

// Collection names a vector namespace. Resume and posting vectors live in
// separate collections.
type Collection string

const (
	CollectionResumes  Collection = "resumes"
	CollectionPostings Collection = "postings"
)

var ErrRegistry = errx.NewRegistry("VECTOR")

var (
	CodeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound,
		http.StatusNotFound, "vector record not found")
	CodeStoreUnavailable = ErrRegistry.Register("STORE_UNAVAILABLE", errx.TypeUnavailable,
		http.StatusServiceUnavailable, "vector store is unavailable")
)

// Record is one stored embedding with its source document and metadata.
// Metadata values are flat strings; list values are comma-joined (JoinList).
type Record struct {
	ID        string
	Embedding []float32
	Document  string
	Metadata  map[string]string
}

// QueryResult is one nearest neighbor. Distance is cosine distance in [0, 2].
type QueryResult struct {
	ID       string
	Distance float64
	Document string
	Metadata map[string]string
}

// Store is the vector index used for semantic retrieval.
type Store interface {
	Upsert(ctx context.Context, collection Collection, record Record) error
	Get(ctx context.Context, collection Collection, id string) (*Record, error)
	Delete(ctx context.Context, collection Collection, id string) error
	Query(ctx context.Context, collection Collection, embedding []float32, k int) ([]QueryResult, error)
	Count(ctx context.Context, collection Collection) (int64, error)
	// Clear removes every record in the collection and returns how many
	// were deleted.
	Clear(ctx context.Context, collection Collection) (int64, error)
}

// JoinList flattens a string list into a metadata value.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}

// SplitList restores a list from a metadata value.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
