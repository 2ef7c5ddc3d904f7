package accountsrv

import (
	"context"
	"strings"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/matching/account"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/match"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/resume"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

// AccountService handles registration, login, profile access and account
// deactivation.
type AccountService struct {
	repo      account.Repository
	resumes   resume.Repository
	matches   match.Repository
	passwords auth.PasswordService
	tokens    auth.TokenService
}

func NewAccountService(
	repo account.Repository,
	resumes resume.Repository,
	matches match.Repository,
	passwords auth.PasswordService,
	tokens auth.TokenService,
) *AccountService {
	return &AccountService{
		repo:      repo,
		resumes:   resumes,
		matches:   matches,
		passwords: passwords,
		tokens:    tokens,
	}
}

// Register creates an account and returns a fresh token.
func (s *AccountService) Register(ctx context.Context, req account.RegisterRequest) (*account.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, account.ErrInvalidData().WithDetail("field", "email")
	}
	if len(req.Password) < 8 {
		return nil, account.ErrInvalidData().
			WithDetail("field", "password").
			WithDetail("reason", "minimum 8 characters")
	}
	switch req.Role {
	case auth.RoleStudent, auth.RoleCompany:
	default:
		return nil, account.ErrInvalidData().WithDetail("field", "role")
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	acc := &account.Account{
		ID:           kernel.NewAccountID(),
		Email:        kernel.Email(email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	logx.Infof("account registered: %s (%s)", acc.ID, acc.Role)

	token, err := s.tokens.GenerateToken(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return nil, err
	}
	return &account.AuthResponse{Token: token, Account: acc}, nil
}

// Login verifies credentials and returns a fresh token.
func (s *AccountService) Login(ctx context.Context, req account.LoginRequest) (*account.AuthResponse, error) {
	email := kernel.Email(strings.ToLower(strings.TrimSpace(req.Email)))

	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, account.ErrInvalidCredentials()
	}
	if !acc.Active {
		return nil, account.ErrInvalidCredentials()
	}
	if err := s.passwords.Compare(acc.PasswordHash, req.Password); err != nil {
		return nil, account.ErrInvalidCredentials()
	}

	token, err := s.tokens.GenerateToken(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return nil, err
	}
	return &account.AuthResponse{Token: token, Account: acc}, nil
}

// GetProfile returns one account.
func (s *AccountService) GetProfile(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// Deactivate soft-disables an account. A student's resumes are deactivated
// and their match rows removed, so the candidate disappears from
// recommendations and rankings immediately.
func (s *AccountService) Deactivate(ctx context.Context, id kernel.AccountID) error {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}

	if acc.Role == auth.RoleStudent {
		rs, err := s.resumes.ListByCandidate(ctx, id)
		if err != nil {
			logx.Warnf("deactivate: resume listing failed: account=%s err=%v", id, err)
		}
		for _, r := range rs {
			if !r.Active {
				continue
			}
			if err := s.resumes.SetActive(ctx, r.ID, false); err != nil {
				logx.Warnf("deactivate: resume deactivation failed: resume=%s err=%v", r.ID, err)
			}
		}
		if _, err := s.matches.DeleteWhere(ctx, id, ""); err != nil {
			logx.Warnf("deactivate: match cleanup failed: candidate=%s err=%v", id, err)
		}
	}

	logx.Infof("account deactivated: %s (%s)", acc.ID, acc.Role)
	return nil
}
