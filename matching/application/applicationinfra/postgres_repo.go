package applicationinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/application"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresApplicationRepository struct {
	db *sqlx.DB
}

func NewPostgresApplicationRepository(db *sqlx.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

type applicationRow struct {
	ID                         string         `db:"id"`
	CandidateID                string         `db:"candidate_id"`
	PostingID                  string         `db:"posting_id"`
	ResumeID                   string         `db:"resume_id"`
	Status                     string         `db:"status"`
	MatchScore                 int            `db:"match_score"`
	ApplicationSimilarityScore int            `db:"application_similarity_score"`
	UsedTailoredResume         bool           `db:"used_tailored_resume"`
	CoverLetter                sql.NullString `db:"cover_letter"`
	CreatedAt                  time.Time      `db:"created_at"`
	UpdatedAt                  time.Time      `db:"updated_at"`
}

func (r *applicationRow) toDomain() application.Application {
	return application.Application{
		ID:                         kernel.ApplicationID(r.ID),
		CandidateID:                kernel.AccountID(r.CandidateID),
		PostingID:                  kernel.PostingID(r.PostingID),
		ResumeID:                   kernel.ResumeID(r.ResumeID),
		Status:                     application.Status(r.Status),
		MatchScore:                 r.MatchScore,
		ApplicationSimilarityScore: r.ApplicationSimilarityScore,
		UsedTailoredResume:         r.UsedTailoredResume,
		CoverLetter:                r.CoverLetter.String,
		CreatedAt:                  r.CreatedAt,
		UpdatedAt:                  r.UpdatedAt,
	}
}

const applicationColumns = `
	a.id, a.candidate_id, a.posting_id, a.resume_id, a.status,
	a.match_score, a.application_similarity_score, a.used_tailored_resume,
	a.cover_letter, a.created_at, a.updated_at`

func (r *PostgresApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	query := `
		INSERT INTO applications (
			id, candidate_id, posting_id, resume_id, status,
			match_score, application_similarity_score, used_tailored_resume,
			cover_letter, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		app.ID, app.CandidateID, app.PostingID, app.ResumeID, app.Status,
		app.MatchScore, app.ApplicationSimilarityScore, app.UsedTailoredResume,
		nullable(app.CoverLetter), app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return application.ErrAlreadyApplied().
				WithDetail("candidate_id", app.CandidateID).
				WithDetail("posting_id", app.PostingID)
		}
		return application.ErrRegistry.NewWithCause(application.CodeInvalidData, err).
			WithDetail("operation", "insert")
	}
	return nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.id = $1`

	row := &applicationRow{}
	if err := r.db.GetContext(ctx, row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, application.ErrNotFound().WithDetail("application_id", id)
		}
		return nil, application.ErrRegistry.NewWithCause(application.CodeNotFound, err).
			WithDetail("operation", "get")
	}
	app := row.toDomain()
	return &app, nil
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id kernel.ApplicationID, status application.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return application.ErrRegistry.NewWithCause(application.CodeInvalidData, err).
			WithDetail("application_id", id).
			WithDetail("operation", "update_status")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return application.ErrNotFound().WithDetail("application_id", id)
	}
	return nil
}

type companyViewRow struct {
	applicationRow
	CandidateName   string  `db:"candidate_name"`
	CandidateEmail  string  `db:"candidate_email"`
	CandidatePhone  string  `db:"candidate_phone"`
	Skills          []byte  `db:"skills"`
	ExperienceYears float64 `db:"experience_years"`
}

func (r *companyViewRow) toView() (application.CompanyView, error) {
	view := application.CompanyView{
		Application:     r.toDomain(),
		CandidateName:   r.CandidateName,
		CandidateEmail:  r.CandidateEmail,
		CandidatePhone:  r.CandidatePhone,
		ExperienceYears: r.ExperienceYears,
	}
	if len(r.Skills) > 0 {
		if err := json.Unmarshal(r.Skills, &view.Skills); err != nil {
			return view, err
		}
	}
	return view, nil
}

const companyViewQuery = `
	SELECT ` + applicationColumns + `,
		c.full_name AS candidate_name,
		c.email AS candidate_email,
		COALESCE(c.phone, '') AS candidate_phone,
		c.skills,
		c.total_experience_years AS experience_years
	FROM applications a
	JOIN accounts c ON c.id = a.candidate_id
	WHERE a.posting_id = $1 AND c.active = true
	ORDER BY a.match_score DESC, a.created_at`

func (r *PostgresApplicationRepository) ListForPosting(ctx context.Context, postingID kernel.PostingID, opts kernel.PaginationOptions) (kernel.Paginated[application.CompanyView], error) {
	opts = opts.Normalize()

	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM applications a
		JOIN accounts c ON c.id = a.candidate_id
		WHERE a.posting_id = $1 AND c.active = true`, postingID)
	if err != nil {
		return kernel.Paginated[application.CompanyView]{}, application.ErrRegistry.
			NewWithCause(application.CodeInvalidData, err).
			WithDetail("operation", "count_for_posting")
	}

	rows := []companyViewRow{}
	err = r.db.SelectContext(ctx, &rows, companyViewQuery+` LIMIT $2 OFFSET $3`,
		postingID, opts.PageSize, opts.Offset())
	if err != nil {
		return kernel.Paginated[application.CompanyView]{}, application.ErrRegistry.
			NewWithCause(application.CodeInvalidData, err).
			WithDetail("operation", "list_for_posting")
	}

	views := make([]application.CompanyView, 0, len(rows))
	for i := range rows {
		view, err := rows[i].toView()
		if err != nil {
			return kernel.Paginated[application.CompanyView]{}, application.ErrRegistry.
				NewWithCause(application.CodeInvalidData, err)
		}
		views = append(views, view)
	}
	return kernel.NewPaginated(views, opts, total), nil
}

func (r *PostgresApplicationRepository) ListAllForPosting(ctx context.Context, postingID kernel.PostingID) ([]application.CompanyView, error) {
	rows := []companyViewRow{}
	if err := r.db.SelectContext(ctx, &rows, companyViewQuery, postingID); err != nil {
		return nil, application.ErrRegistry.NewWithCause(application.CodeInvalidData, err).
			WithDetail("operation", "list_all_for_posting")
	}

	views := make([]application.CompanyView, 0, len(rows))
	for i := range rows {
		view, err := rows[i].toView()
		if err != nil {
			return nil, application.ErrRegistry.NewWithCause(application.CodeInvalidData, err)
		}
		views = append(views, view)
	}
	return views, nil
}

type studentViewRow struct {
	applicationRow
	PostingTitle string `db:"posting_title"`
	CompanyName  string `db:"company_name"`
}

func (r *PostgresApplicationRepository) ListForCandidate(ctx context.Context, candidateID kernel.AccountID, opts kernel.PaginationOptions) (kernel.Paginated[application.StudentView], error) {
	opts = opts.Normalize()

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM applications WHERE candidate_id = $1`, candidateID)
	if err != nil {
		return kernel.Paginated[application.StudentView]{}, application.ErrRegistry.
			NewWithCause(application.CodeInvalidData, err).
			WithDetail("operation", "count_for_candidate")
	}

	query := `
		SELECT ` + applicationColumns + `,
			p.title AS posting_title,
			co.full_name AS company_name
		FROM applications a
		JOIN postings p ON p.id = a.posting_id
		JOIN accounts co ON co.id = p.company_id
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3`

	rows := []studentViewRow{}
	if err := r.db.SelectContext(ctx, &rows, query, candidateID, opts.PageSize, opts.Offset()); err != nil {
		return kernel.Paginated[application.StudentView]{}, application.ErrRegistry.
			NewWithCause(application.CodeInvalidData, err).
			WithDetail("operation", "list_for_candidate")
	}

	views := make([]application.StudentView, 0, len(rows))
	for i := range rows {
		views = append(views, application.StudentView{
			Application:  rows[i].toDomain(),
			PostingTitle: rows[i].PostingTitle,
			CompanyName:  rows[i].CompanyName,
		})
	}
	return kernel.NewPaginated(views, opts, total), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
