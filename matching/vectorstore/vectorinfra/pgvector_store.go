package vectorinfra

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/vectorstore"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// PgvectorStore implements vectorstore.Store on a Postgres table with a
// pgvector column. All collections share one table keyed by (collection, id).
type PgvectorStore struct {
	db *sqlx.DB
}

func NewPgvectorStore(db *sqlx.DB) *PgvectorStore {
	return &PgvectorStore{db: db}
}

type vectorRow struct {
	ID        string `db:"id"`
	Embedding string `db:"embedding"`
	Document  string `db:"document"`
	Metadata  []byte `db:"metadata"`
}

type queryRow struct {
	ID       string  `db:"id"`
	Distance float64 `db:"distance"`
	Document string  `db:"document"`
	Metadata []byte  `db:"metadata"`
}

func (s *PgvectorStore) Upsert(ctx context.Context, collection vectorstore.Collection, record vectorstore.Record) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("operation", "marshal_metadata")
	}

	query := `
		INSERT INTO vector_records (collection, id, embedding, document, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (collection, id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			document = EXCLUDED.document,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()`

	_, err = s.db.ExecContext(ctx, query,
		collection, record.ID, pgvector.NewVector(record.Embedding), record.Document, metadata,
	)
	if err != nil {
		return vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("id", record.ID).
			WithDetail("operation", "upsert")
	}
	return nil
}

func (s *PgvectorStore) Get(ctx context.Context, collection vectorstore.Collection, id string) (*vectorstore.Record, error) {
	query := `
		SELECT id, embedding::text AS embedding, document, metadata
		FROM vector_records
		WHERE collection = $1 AND id = $2`

	row := &vectorRow{}
	err := s.db.GetContext(ctx, row, query, collection, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vectorstore.ErrRegistry.New(vectorstore.CodeNotFound).
				WithDetail("collection", string(collection)).
				WithDetail("id", id)
		}
		return nil, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("id", id).
			WithDetail("operation", "get")
	}

	return row.toRecord()
}

func (s *PgvectorStore) Delete(ctx context.Context, collection vectorstore.Collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM vector_records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("id", id).
			WithDetail("operation", "delete")
	}
	return nil
}

func (s *PgvectorStore) Query(ctx context.Context, collection vectorstore.Collection, embedding []float32, k int) ([]vectorstore.QueryResult, error) {
	if k <= 0 {
		k = 10
	}

	query := `
		SELECT id, document, metadata,
			embedding <=> $2 AS distance
		FROM vector_records
		WHERE collection = $1
		ORDER BY embedding <=> $2
		LIMIT $3`

	rows := []queryRow{}
	err := s.db.SelectContext(ctx, &rows, query, collection, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("operation", "query")
	}

	results := make([]vectorstore.QueryResult, len(rows))
	for i, row := range rows {
		metadata := map[string]string{}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
				return nil, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
					WithDetail("id", row.ID).
					WithDetail("operation", "unmarshal_metadata")
			}
		}
		results[i] = vectorstore.QueryResult{
			ID:       row.ID,
			Distance: row.Distance,
			Document: row.Document,
			Metadata: metadata,
		}
	}
	return results, nil
}

func (s *PgvectorStore) Count(ctx context.Context, collection vectorstore.Collection) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM vector_records WHERE collection = $1`, collection)
	if err != nil {
		return 0, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("operation", "count")
	}
	return count, nil
}

func (s *PgvectorStore) Clear(ctx context.Context, collection vectorstore.Collection) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vector_records WHERE collection = $1`, collection)
	if err != nil {
		return 0, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("operation", "clear")
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
			WithDetail("collection", string(collection)).
			WithDetail("operation", "clear_rows_affected")
	}
	return deleted, nil
}

func (r *vectorRow) toRecord() (*vectorstore.Record, error) {
	record := &vectorstore.Record{
		ID:       r.ID,
		Document: r.Document,
		Metadata: map[string]string{},
	}

	vec := pgvector.Vector{}
	if r.Embedding != "" {
		if err := vec.Scan(r.Embedding); err != nil {
			return nil, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
				WithDetail("id", r.ID).
				WithDetail("operation", "parse_vector")
		}
		record.Embedding = vec.Slice()
	}

	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &record.Metadata); err != nil {
			return nil, vectorstore.ErrRegistry.NewWithCause(vectorstore.CodeStoreUnavailable, err).
				WithDetail("id", r.ID).
				WithDetail("operation", "unmarshal_metadata")
		}
	}
	return record, nil
}
