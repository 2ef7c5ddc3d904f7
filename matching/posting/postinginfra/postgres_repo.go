package postinginfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/posting"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

type PostgresPostingRepository struct {
	db *sqlx.DB
}

func NewPostgresPostingRepository(db *sqlx.DB) *PostgresPostingRepository {
	return &PostgresPostingRepository{db: db}
}

type postingRow struct {
	ID                string         `db:"id"`
	CompanyID         string         `db:"company_id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	RequiredSkills    []byte         `db:"required_skills"`
	PreferredSkills   []byte         `db:"preferred_skills"`
	MinExperience     float64        `db:"min_experience"`
	MaxExperience     float64        `db:"max_experience"`
	RequiredEducation sql.NullString `db:"required_education"`
	Location          sql.NullString `db:"location"`
	DurationMonths    int            `db:"duration_months"`
	Stipend           sql.NullString `db:"stipend"`
	ContentHash       sql.NullString `db:"content_hash"`
	EmbeddingRef      sql.NullString `db:"embedding_ref"`
	Active            bool           `db:"active"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r *postingRow) ToDomain() (*posting.Posting, error) {
	p := &posting.Posting{
		ID:                kernel.PostingID(r.ID),
		CompanyID:         kernel.AccountID(r.CompanyID),
		Title:             r.Title,
		Description:       r.Description,
		MinExperience:     r.MinExperience,
		MaxExperience:     r.MaxExperience,
		RequiredEducation: r.RequiredEducation.String,
		Location:          r.Location.String,
		DurationMonths:    r.DurationMonths,
		Stipend:           r.Stipend.String,
		ContentHash:       r.ContentHash.String,
		EmbeddingRef:      r.EmbeddingRef.String,
		Active:            r.Active,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if len(r.RequiredSkills) > 0 {
		if err := json.Unmarshal(r.RequiredSkills, &p.RequiredSkills); err != nil {
			return nil, err
		}
	}
	if len(r.PreferredSkills) > 0 {
		if err := json.Unmarshal(r.PreferredSkills, &p.PreferredSkills); err != nil {
			return nil, err
		}
	}
	return p, nil
}

const postingColumns = `
	id, company_id, title, description, required_skills, preferred_skills,
	min_experience, max_experience, required_education, location,
	duration_months, stipend, content_hash, embedding_ref, active,
	created_at, updated_at`

func (r *PostgresPostingRepository) Create(ctx context.Context, p *posting.Posting) error {
	required, err := json.Marshal(p.RequiredSkills)
	if err != nil {
		return posting.ErrInvalidData().WithDetail("field", "required_skills")
	}
	preferred, err := json.Marshal(p.PreferredSkills)
	if err != nil {
		return posting.ErrInvalidData().WithDetail("field", "preferred_skills")
	}

	query := `
		INSERT INTO postings (` + postingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.CompanyID, p.Title, p.Description, required, preferred,
		p.MinExperience, p.MaxExperience, nullable(p.RequiredEducation),
		nullable(p.Location), p.DurationMonths, nullable(p.Stipend),
		nullable(p.ContentHash), nullable(p.EmbeddingRef), p.Active,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err).
			WithDetail("operation", "insert")
	}
	return nil
}

func (r *PostgresPostingRepository) GetByID(ctx context.Context, id kernel.PostingID) (*posting.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE id = $1`

	row := &postingRow{}
	if err := r.db.GetContext(ctx, row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, posting.ErrNotFound().WithDetail("posting_id", id)
		}
		return nil, posting.ErrRegistry.NewWithCause(posting.CodeNotFound, err).
			WithDetail("posting_id", id).
			WithDetail("operation", "get")
	}
	return row.ToDomain()
}

func (r *PostgresPostingRepository) List(ctx context.Context, f posting.ListFilter, opts kernel.PaginationOptions) (kernel.Paginated[posting.Posting], error) {
	opts = opts.Normalize()

	where := "WHERE 1=1"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.CompanyID.IsEmpty() {
		where += " AND company_id = " + arg(f.CompanyID)
	}
	if f.ActiveOnly {
		where += " AND active = true"
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		where += " AND (title ILIKE " + ph + " OR description ILIKE " + ph + ")"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM postings "+where, args...); err != nil {
		return kernel.Paginated[posting.Posting]{}, posting.ErrRegistry.
			NewWithCause(posting.CodeInvalidData, err).
			WithDetail("operation", "count")
	}

	query := "SELECT " + postingColumns + " FROM postings " + where +
		" ORDER BY created_at DESC LIMIT " + arg(opts.PageSize) + " OFFSET " + arg(opts.Offset())

	rows := []postingRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return kernel.Paginated[posting.Posting]{}, posting.ErrRegistry.
			NewWithCause(posting.CodeInvalidData, err).
			WithDetail("operation", "list")
	}

	postings := make([]posting.Posting, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return kernel.Paginated[posting.Posting]{}, posting.ErrInvalidData().
				WithDetail("posting_id", rows[i].ID)
		}
		postings = append(postings, *p)
	}
	return kernel.NewPaginated(postings, opts, total), nil
}

func (r *PostgresPostingRepository) ListActive(ctx context.Context) ([]posting.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE active = true ORDER BY created_at`

	rows := []postingRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err).
			WithDetail("operation", "list_active")
	}

	postings := make([]posting.Posting, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, posting.ErrInvalidData().WithDetail("posting_id", rows[i].ID)
		}
		postings = append(postings, *p)
	}
	return postings, nil
}

func (r *PostgresPostingRepository) Update(ctx context.Context, p *posting.Posting) error {
	required, err := json.Marshal(p.RequiredSkills)
	if err != nil {
		return posting.ErrInvalidData().WithDetail("field", "required_skills")
	}
	preferred, err := json.Marshal(p.PreferredSkills)
	if err != nil {
		return posting.ErrInvalidData().WithDetail("field", "preferred_skills")
	}

	query := `
		UPDATE postings SET
			title = $1, description = $2, required_skills = $3, preferred_skills = $4,
			min_experience = $5, max_experience = $6, required_education = $7,
			location = $8, duration_months = $9, stipend = $10,
			content_hash = $11, embedding_ref = $12, active = $13, updated_at = NOW()
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		p.Title, p.Description, required, preferred,
		p.MinExperience, p.MaxExperience, nullable(p.RequiredEducation),
		nullable(p.Location), p.DurationMonths, nullable(p.Stipend),
		nullable(p.ContentHash), nullable(p.EmbeddingRef), p.Active, p.ID,
	)
	if err != nil {
		return posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err).
			WithDetail("posting_id", p.ID).
			WithDetail("operation", "update")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return posting.ErrNotFound().WithDetail("posting_id", p.ID)
	}
	return nil
}

func (r *PostgresPostingRepository) SetActive(ctx context.Context, id kernel.PostingID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE postings SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err).
			WithDetail("posting_id", id).
			WithDetail("operation", "set_active")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return posting.ErrNotFound().WithDetail("posting_id", id)
	}
	return nil
}

func (r *PostgresPostingRepository) SetEmbeddingRef(ctx context.Context, id kernel.PostingID, ref string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE postings SET embedding_ref = $1, updated_at = NOW() WHERE id = $2`,
		nullable(ref), id)
	if err != nil {
		return posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err).
			WithDetail("posting_id", id).
			WithDetail("operation", "set_embedding_ref")
	}
	return nil
}

func (r *PostgresPostingRepository) Delete(ctx context.Context, id kernel.PostingID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM postings WHERE id = $1`, id)
	if err != nil {
		return posting.ErrRegistry.NewWithCause(posting.CodeInvalidData, err).
			WithDetail("posting_id", id).
			WithDetail("operation", "delete")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return posting.ErrNotFound().WithDetail("posting_id", id)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
