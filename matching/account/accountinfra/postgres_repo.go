package accountinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresAccountRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountRepository(db *sqlx.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

type accountRow struct {
	ID                   string         `db:"id"`
	Email                string         `db:"email"`
	PasswordHash         string         `db:"password_hash"`
	FullName             string         `db:"full_name"`
	Role                 string         `db:"role"`
	Phone                sql.NullString `db:"phone"`
	LinkedIn             sql.NullString `db:"linkedin"`
	GitHub               sql.NullString `db:"github"`
	Skills               []byte         `db:"skills"`
	TotalExperienceYears float64        `db:"total_experience_years"`
	Active               bool           `db:"active"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r *accountRow) ToDomain() (*account.Account, error) {
	acc := &account.Account{
		ID:                   kernel.AccountID(r.ID),
		Email:                kernel.Email(r.Email),
		PasswordHash:         r.PasswordHash,
		FullName:             r.FullName,
		Role:                 auth.Role(r.Role),
		Phone:                r.Phone.String,
		LinkedIn:             r.LinkedIn.String,
		GitHub:               r.GitHub.String,
		TotalExperienceYears: r.TotalExperienceYears,
		Active:               r.Active,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if len(r.Skills) > 0 {
		if err := json.Unmarshal(r.Skills, &acc.Skills); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

const accountColumns = `
	id, email, password_hash, full_name, role, phone, linkedin, github,
	skills, total_experience_years, active, created_at, updated_at`

func (r *PostgresAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	skills, err := json.Marshal(acc.Skills)
	if err != nil {
		return account.ErrInvalidData().WithDetail("field", "skills")
	}

	query := `
		INSERT INTO accounts (
			id, email, password_hash, full_name, role, phone, linkedin, github,
			skills, total_experience_years, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		acc.ID, acc.Email, acc.PasswordHash, acc.FullName, acc.Role,
		nullable(acc.Phone), nullable(acc.LinkedIn), nullable(acc.GitHub),
		skills, acc.TotalExperienceYears, acc.Active, acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return account.ErrEmailTaken().WithDetail("email", acc.Email)
		}
		return account.ErrRegistry.NewWithCause(account.CodeInvalidData, err).
			WithDetail("operation", "insert")
	}
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	row := &accountRow{}
	if err := r.db.GetContext(ctx, row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound().WithDetail("account_id", id)
		}
		return nil, account.ErrRegistry.NewWithCause(account.CodeNotFound, err).
			WithDetail("account_id", id).
			WithDetail("operation", "get")
	}
	return row.ToDomain()
}

func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email kernel.Email) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	row := &accountRow{}
	if err := r.db.GetContext(ctx, row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound().WithDetail("email", email)
		}
		return nil, account.ErrRegistry.NewWithCause(account.CodeNotFound, err).
			WithDetail("email", email).
			WithDetail("operation", "get_by_email")
	}
	return row.ToDomain()
}

func (r *PostgresAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	skills, err := json.Marshal(acc.Skills)
	if err != nil {
		return account.ErrInvalidData().WithDetail("field", "skills")
	}

	query := `
		UPDATE accounts SET
			full_name = $1, phone = $2, linkedin = $3, github = $4,
			skills = $5, total_experience_years = $6, active = $7, updated_at = NOW()
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		acc.FullName, nullable(acc.Phone), nullable(acc.LinkedIn), nullable(acc.GitHub),
		skills, acc.TotalExperienceYears, acc.Active, acc.ID,
	)
	if err != nil {
		return account.ErrRegistry.NewWithCause(account.CodeInvalidData, err).
			WithDetail("account_id", acc.ID).
			WithDetail("operation", "update")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return account.ErrNotFound().WithDetail("account_id", acc.ID)
	}
	return nil
}

func (r *PostgresAccountRepository) SetActive(ctx context.Context, id kernel.AccountID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return account.ErrRegistry.NewWithCause(account.CodeInvalidData, err).
			WithDetail("account_id", id).
			WithDetail("operation", "set_active")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return account.ErrNotFound().WithDetail("account_id", id)
	}
	return nil
}

func (r *PostgresAccountRepository) UpdateCachedProfile(ctx context.Context, id kernel.AccountID, skills []string, experienceYears float64) error {
	data, err := json.Marshal(skills)
	if err != nil {
		return account.ErrInvalidData().WithDetail("field", "skills")
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE accounts SET skills = $1, total_experience_years = $2, updated_at = NOW() WHERE id = $3`,
		data, experienceYears, id)
	if err != nil {
		return account.ErrRegistry.NewWithCause(account.CodeInvalidData, err).
			WithDetail("account_id", id).
			WithDetail("operation", "update_cached_profile")
	}
	return nil
}

func (r *PostgresAccountRepository) UpdateContactInfo(ctx context.Context, id kernel.AccountID, phone, linkedin, github string) error {
	// Only overwrite fields the parser actually found.
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			phone = COALESCE(NULLIF($1, ''), phone),
			linkedin = COALESCE(NULLIF($2, ''), linkedin),
			github = COALESCE(NULLIF($3, ''), github),
			updated_at = NOW()
		WHERE id = $4`,
		phone, linkedin, github, id)
	if err != nil {
		return account.ErrRegistry.NewWithCause(account.CodeInvalidData, err).
			WithDetail("account_id", id).
			WithDetail("operation", "update_contact_info")
	}
	return nil
}

func (r *PostgresAccountRepository) ListStudentsWithActiveResume(ctx context.Context) ([]account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts a
		WHERE a.role = 'student' AND a.active = true
		  AND EXISTS (
			SELECT 1 FROM resumes r
			WHERE r.candidate_id = a.id AND r.active = true AND r.kind = 'base'
		  )
		ORDER BY a.created_at`

	rows := []accountRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, account.ErrRegistry.NewWithCause(account.CodeNotFound, err).
			WithDetail("operation", "list_students_with_active_resume")
	}

	accounts := make([]account.Account, len(rows))
	for i, row := range rows {
		acc, err := row.ToDomain()
		if err != nil {
			return nil, account.ErrInvalidData().
				WithDetail("row_index", i).
				WithDetail("error", err.Error())
		}
		accounts[i] = *acc
	}
	return accounts, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
