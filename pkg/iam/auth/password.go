package auth

import (
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"golang.org/x/crypto/bcrypt"
)

// PasswordService hashes and verifies account passwords.
type PasswordService interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// BcryptPasswordService implements PasswordService with bcrypt.
type BcryptPasswordService struct {
	cost int
}

func NewBcryptPasswordService() *BcryptPasswordService {
	return &BcryptPasswordService{cost: bcrypt.DefaultCost}
}

func (s *BcryptPasswordService) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	return string(hash), nil
}

func (s *BcryptPasswordService) Compare(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return errx.Wrap(err, "invalid credentials", errx.TypeAuthorization)
	}
	return nil
}
