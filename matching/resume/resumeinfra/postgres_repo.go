package resumeinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

type PostgresResumeRepository struct {
	db *sqlx.DB
}

func NewPostgresResumeRepository(db *sqlx.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{db: db}
}

type resumeRow struct {
	ID                   string         `db:"id"`
	CandidateID          string         `db:"candidate_id"`
	FileName             string         `db:"file_name"`
	StorageKey           sql.NullString `db:"storage_key"`
	ParsedText           string         `db:"parsed_text"`
	ParsedData           []byte         `db:"parsed_data"`
	ExtractedSkills      []byte         `db:"extracted_skills"`
	ContentHash          string         `db:"content_hash"`
	EmbeddingRef         sql.NullString `db:"embedding_ref"`
	Kind                 string         `db:"kind"`
	TailoredForPostingID sql.NullString `db:"tailored_for_posting_id"`
	BaseResumeID         sql.NullString `db:"base_resume_id"`
	Active               bool           `db:"active"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r *resumeRow) ToDomain() (*resume.Resume, error) {
	res := &resume.Resume{
		ID:                   kernel.ResumeID(r.ID),
		CandidateID:          kernel.AccountID(r.CandidateID),
		FileName:             r.FileName,
		StorageKey:           r.StorageKey.String,
		ParsedText:           r.ParsedText,
		ContentHash:          r.ContentHash,
		EmbeddingRef:         r.EmbeddingRef.String,
		Kind:                 resume.Kind(r.Kind),
		TailoredForPostingID: kernel.PostingID(r.TailoredForPostingID.String),
		BaseResumeID:         kernel.ResumeID(r.BaseResumeID.String),
		Active:               r.Active,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if len(r.ParsedData) > 0 {
		res.ParsedData = &resume.ParsedData{}
		if err := json.Unmarshal(r.ParsedData, res.ParsedData); err != nil {
			return nil, err
		}
	}
	if len(r.ExtractedSkills) > 0 {
		if err := json.Unmarshal(r.ExtractedSkills, &res.ExtractedSkills); err != nil {
			return nil, err
		}
	}
	return res, nil
}

const resumeColumns = `
	id, candidate_id, file_name, storage_key, parsed_text, parsed_data,
	extracted_skills, content_hash, embedding_ref, kind,
	tailored_for_posting_id, base_resume_id, active, created_at, updated_at`

func (r *PostgresResumeRepository) Create(ctx context.Context, res *resume.Resume, deactivateOthers bool) error {
	parsedData, err := json.Marshal(res.ParsedData)
	if err != nil {
		return resume.ErrInvalidData().WithDetail("field", "parsed_data")
	}
	skills, err := json.Marshal(res.ExtractedSkills)
	if err != nil {
		return resume.ErrInvalidData().WithDetail("field", "extracted_skills")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeUploadFailed, err).
			WithDetail("operation", "begin_tx")
	}
	defer tx.Rollback()

	if deactivateOthers {
		_, err = tx.ExecContext(ctx, `
			UPDATE resumes SET active = false, updated_at = NOW()
			WHERE candidate_id = $1 AND kind = 'base' AND active = true`,
			res.CandidateID)
		if err != nil {
			return resume.ErrRegistry.NewWithCause(resume.CodeUploadFailed, err).
				WithDetail("operation", "deactivate_others")
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resumes (`+resumeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		res.ID, res.CandidateID, res.FileName, nullable(res.StorageKey),
		res.ParsedText, parsedData, skills, res.ContentHash,
		nullable(res.EmbeddingRef), res.Kind,
		nullable(res.TailoredForPostingID.String()), nullable(res.BaseResumeID.String()),
		res.Active, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeUploadFailed, err).
			WithDetail("operation", "insert")
	}

	if err := tx.Commit(); err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeUploadFailed, err).
			WithDetail("operation", "commit")
	}
	return nil
}

func (r *PostgresResumeRepository) GetByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`

	row := &resumeRow{}
	if err := r.db.GetContext(ctx, row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, resume.ErrNotFound().WithDetail("resume_id", id)
		}
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeNotFound, err).
			WithDetail("resume_id", id).
			WithDetail("operation", "get")
	}
	return row.ToDomain()
}

func (r *PostgresResumeRepository) GetActiveBase(ctx context.Context, candidateID kernel.AccountID) (*resume.Resume, error) {
	query := `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE candidate_id = $1 AND kind = 'base' AND active = true
		ORDER BY created_at DESC
		LIMIT 1`

	row := &resumeRow{}
	if err := r.db.GetContext(ctx, row, query, candidateID); err != nil {
		if err == sql.ErrNoRows {
			return nil, resume.ErrNoActiveResume().WithDetail("candidate_id", candidateID)
		}
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeNotFound, err).
			WithDetail("candidate_id", candidateID).
			WithDetail("operation", "get_active_base")
	}
	return row.ToDomain()
}

func (r *PostgresResumeRepository) ListByCandidate(ctx context.Context, candidateID kernel.AccountID) ([]*resume.Resume, error) {
	query := `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE candidate_id = $1
		ORDER BY created_at DESC`

	rows := []resumeRow{}
	if err := r.db.SelectContext(ctx, &rows, query, candidateID); err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeNotFound, err).
			WithDetail("candidate_id", candidateID).
			WithDetail("operation", "list")
	}

	resumes := make([]*resume.Resume, 0, len(rows))
	for i := range rows {
		res, err := rows[i].ToDomain()
		if err != nil {
			return nil, resume.ErrInvalidData().WithDetail("resume_id", rows[i].ID)
		}
		resumes = append(resumes, res)
	}
	return resumes, nil
}

func (r *PostgresResumeRepository) FindByHash(ctx context.Context, candidateID kernel.AccountID, contentHash string) (*resume.Resume, error) {
	query := `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE candidate_id = $1 AND content_hash = $2
		ORDER BY created_at DESC
		LIMIT 1`

	row := &resumeRow{}
	if err := r.db.GetContext(ctx, row, query, candidateID, contentHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, resume.ErrNotFound().WithDetail("content_hash", contentHash)
		}
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeNotFound, err).
			WithDetail("operation", "find_by_hash")
	}
	return row.ToDomain()
}

func (r *PostgresResumeRepository) Update(ctx context.Context, res *resume.Resume) error {
	parsedData, err := json.Marshal(res.ParsedData)
	if err != nil {
		return resume.ErrInvalidData().WithDetail("field", "parsed_data")
	}
	skills, err := json.Marshal(res.ExtractedSkills)
	if err != nil {
		return resume.ErrInvalidData().WithDetail("field", "extracted_skills")
	}

	query := `
		UPDATE resumes SET
			parsed_text = $1, parsed_data = $2, extracted_skills = $3,
			content_hash = $4, embedding_ref = $5, active = $6, updated_at = NOW()
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		res.ParsedText, parsedData, skills, res.ContentHash,
		nullable(res.EmbeddingRef), res.Active, res.ID,
	)
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeInvalidData, err).
			WithDetail("resume_id", res.ID).
			WithDetail("operation", "update")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return resume.ErrNotFound().WithDetail("resume_id", res.ID)
	}
	return nil
}

func (r *PostgresResumeRepository) SetActive(ctx context.Context, id kernel.ResumeID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resumes SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeInvalidData, err).
			WithDetail("resume_id", id).
			WithDetail("operation", "set_active")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return resume.ErrNotFound().WithDetail("resume_id", id)
	}
	return nil
}

func (r *PostgresResumeRepository) Delete(ctx context.Context, id kernel.ResumeID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return resume.ErrRegistry.NewWithCause(resume.CodeInvalidData, err).
			WithDetail("resume_id", id).
			WithDetail("operation", "delete")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return resume.ErrNotFound().WithDetail("resume_id", id)
	}
	return nil
}

func (r *PostgresResumeRepository) ClearEmbeddingRefs(ctx context.Context) ([]kernel.AccountID, error) {
	rows := []string{}
	err := r.db.SelectContext(ctx, &rows, `
		UPDATE resumes SET embedding_ref = NULL, updated_at = NOW()
		WHERE embedding_ref IS NOT NULL
		RETURNING candidate_id`)
	if err != nil {
		return nil, resume.ErrRegistry.NewWithCause(resume.CodeInvalidData, err).
			WithDetail("operation", "clear_embedding_refs")
	}

	seen := make(map[string]bool, len(rows))
	candidates := make([]kernel.AccountID, 0, len(rows))
	for _, id := range rows {
		if !seen[id] {
			seen[id] = true
			candidates = append(candidates, kernel.AccountID(id))
		}
	}
	return candidates, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
