package matchinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

type PostgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

type matchRow struct {
	ID              string    `db:"id"`
	CandidateID     string    `db:"candidate_id"`
	PostingID       string    `db:"posting_id"`
	ResumeID        string    `db:"resume_id"`
	CompositeScore  float64   `db:"composite_score"`
	SemanticScore   float64   `db:"semantic_score"`
	SkillsScore     float64   `db:"skills_score"`
	ExperienceScore float64   `db:"experience_score"`
	MatchedSkills   []byte    `db:"matched_skills"`
	MissingSkills   []byte    `db:"missing_skills"`
	LastComputed    time.Time `db:"last_computed"`
}

func (r *matchRow) toDomain() (match.Match, error) {
	m := match.Match{
		ID:              kernel.MatchID(r.ID),
		CandidateID:     kernel.AccountID(r.CandidateID),
		PostingID:       kernel.PostingID(r.PostingID),
		ResumeID:        kernel.ResumeID(r.ResumeID),
		CompositeScore:  r.CompositeScore,
		SemanticScore:   r.SemanticScore,
		SkillsScore:     r.SkillsScore,
		ExperienceScore: r.ExperienceScore,
		LastComputed:    r.LastComputed,
	}
	if len(r.MatchedSkills) > 0 {
		if err := json.Unmarshal(r.MatchedSkills, &m.MatchedSkills); err != nil {
			return m, err
		}
	}
	if len(r.MissingSkills) > 0 {
		if err := json.Unmarshal(r.MissingSkills, &m.MissingSkills); err != nil {
			return m, err
		}
	}
	return m, nil
}

func (r *PostgresMatchRepository) UpsertMany(ctx context.Context, matches []*match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "begin_tx")
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO matches (
			id, candidate_id, posting_id, resume_id,
			composite_score, semantic_score, skills_score, experience_score,
			matched_skills, missing_skills, last_computed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (candidate_id, posting_id) DO UPDATE SET
			resume_id = EXCLUDED.resume_id,
			composite_score = EXCLUDED.composite_score,
			semantic_score = EXCLUDED.semantic_score,
			skills_score = EXCLUDED.skills_score,
			experience_score = EXCLUDED.experience_score,
			matched_skills = EXCLUDED.matched_skills,
			missing_skills = EXCLUDED.missing_skills,
			last_computed = EXCLUDED.last_computed`

	for _, m := range matches {
		matched, err := json.Marshal(m.MatchedSkills)
		if err != nil {
			return match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err)
		}
		missing, err := json.Marshal(m.MissingSkills)
		if err != nil {
			return match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err)
		}

		_, err = tx.ExecContext(ctx, query,
			m.ID, m.CandidateID, m.PostingID, m.ResumeID,
			m.CompositeScore, m.SemanticScore, m.SkillsScore, m.ExperienceScore,
			matched, missing, m.LastComputed,
		)
		if err != nil {
			return match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err).
				WithDetail("candidate_id", m.CandidateID).
				WithDetail("posting_id", m.PostingID)
		}
	}
	return tx.Commit()
}

const matchColumns = `
	m.id, m.candidate_id, m.posting_id, m.resume_id,
	m.composite_score, m.semantic_score, m.skills_score, m.experience_score,
	m.matched_skills, m.missing_skills, m.last_computed`

func (r *PostgresMatchRepository) Get(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (*match.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.candidate_id = $1 AND m.posting_id = $2`

	row := &matchRow{}
	if err := r.db.GetContext(ctx, row, query, candidateID, postingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, match.ErrNotFound().
				WithDetail("candidate_id", candidateID).
				WithDetail("posting_id", postingID)
		}
		return nil, match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "get")
	}
	m, err := row.toDomain()
	if err != nil {
		return nil, match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err)
	}
	return &m, nil
}

func (r *PostgresMatchRepository) DeleteWhere(ctx context.Context, candidateID kernel.AccountID, postingID kernel.PostingID) (int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if !candidateID.IsEmpty() {
		args = append(args, candidateID)
		where += fmt.Sprintf(" AND candidate_id = $%d", len(args))
	}
	if !postingID.IsEmpty() {
		args = append(args, postingID)
		where += fmt.Sprintf(" AND posting_id = $%d", len(args))
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM matches "+where, args...)
	if err != nil {
		return 0, match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "delete_where")
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

type candidateViewRow struct {
	matchRow
	PostingTitle   string         `db:"posting_title"`
	CompanyName    string         `db:"company_name"`
	Location       sql.NullString `db:"location"`
	RequiredSkills []byte         `db:"required_skills"`
	MinExperience  float64        `db:"min_experience"`
	PostedAt       time.Time      `db:"posted_at"`
}

func (r *PostgresMatchRepository) QueryForCandidate(ctx context.Context, candidateID kernel.AccountID, f match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.CandidateView], error) {
	opts = opts.Normalize()

	where := "WHERE m.candidate_id = $1 AND p.active = true"
	args := []any{candidateID}
	where, args = appendScoreFilter(where, args, f)

	var total int
	countQuery := `
		SELECT COUNT(*) FROM matches m
		JOIN postings p ON p.id = m.posting_id ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return kernel.Paginated[match.CandidateView]{}, match.ErrRegistry.
			NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "count_for_candidate")
	}

	args = append(args, opts.PageSize, opts.Offset())
	query := `
		SELECT ` + matchColumns + `,
			p.title AS posting_title,
			c.full_name AS company_name,
			p.location,
			p.required_skills,
			p.min_experience,
			p.created_at AS posted_at
		FROM matches m
		JOIN postings p ON p.id = m.posting_id
		JOIN accounts c ON c.id = p.company_id ` + where + `
		ORDER BY m.composite_score DESC
		LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows := []candidateViewRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return kernel.Paginated[match.CandidateView]{}, match.ErrRegistry.
			NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "query_for_candidate")
	}

	views := make([]match.CandidateView, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toDomain()
		if err != nil {
			return kernel.Paginated[match.CandidateView]{}, match.ErrRegistry.
				NewWithCause(match.CodeStoreFailure, err)
		}
		view := match.CandidateView{
			Match:         m,
			PostingTitle:  rows[i].PostingTitle,
			CompanyName:   rows[i].CompanyName,
			Location:      rows[i].Location.String,
			MinExperience: rows[i].MinExperience,
			PostedAt:      rows[i].PostedAt.Format(time.RFC3339),
		}
		if len(rows[i].RequiredSkills) > 0 {
			if err := json.Unmarshal(rows[i].RequiredSkills, &view.RequiredSkills); err != nil {
				return kernel.Paginated[match.CandidateView]{}, match.ErrRegistry.
					NewWithCause(match.CodeStoreFailure, err)
			}
		}
		views = append(views, view)
	}
	return kernel.NewPaginated(views, opts, total), nil
}

type postingViewRow struct {
	matchRow
	CandidateName   string  `db:"candidate_name"`
	CandidateEmail  string  `db:"candidate_email"`
	ExperienceYears float64 `db:"experience_years"`
}

func (r *PostgresMatchRepository) QueryForPosting(ctx context.Context, postingID kernel.PostingID, f match.Filter, opts kernel.PaginationOptions) (kernel.Paginated[match.PostingView], error) {
	opts = opts.Normalize()

	where := "WHERE m.posting_id = $1 AND a.active = true"
	args := []any{postingID}
	where, args = appendScoreFilter(where, args, f)

	var total int
	countQuery := `
		SELECT COUNT(*) FROM matches m
		JOIN accounts a ON a.id = m.candidate_id ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return kernel.Paginated[match.PostingView]{}, match.ErrRegistry.
			NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "count_for_posting")
	}

	args = append(args, opts.PageSize, opts.Offset())
	query := `
		SELECT ` + matchColumns + `,
			a.full_name AS candidate_name,
			a.email AS candidate_email,
			a.total_experience_years AS experience_years
		FROM matches m
		JOIN accounts a ON a.id = m.candidate_id ` + where + `
		ORDER BY m.composite_score DESC
		LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows := []postingViewRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return kernel.Paginated[match.PostingView]{}, match.ErrRegistry.
			NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "query_for_posting")
	}

	views := make([]match.PostingView, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toDomain()
		if err != nil {
			return kernel.Paginated[match.PostingView]{}, match.ErrRegistry.
				NewWithCause(match.CodeStoreFailure, err)
		}
		views = append(views, match.PostingView{
			Match:           m,
			CandidateName:   rows[i].CandidateName,
			CandidateEmail:  rows[i].CandidateEmail,
			ExperienceYears: rows[i].ExperienceYears,
		})
	}
	return kernel.NewPaginated(views, opts, total), nil
}

func (r *PostgresMatchRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM matches`); err != nil {
		return 0, match.ErrRegistry.NewWithCause(match.CodeStoreFailure, err).
			WithDetail("operation", "count")
	}
	return total, nil
}

func appendScoreFilter(where string, args []any, f match.Filter) (string, []any) {
	if f.MinScore > 0 {
		args = append(args, f.MinScore)
		where += fmt.Sprintf(" AND m.composite_score >= $%d", len(args))
	}
	if f.MaxScore > 0 {
		args = append(args, f.MaxScore)
		where += fmt.Sprintf(" AND m.composite_score <= $%d", len(args))
	}
	return where, args
}
