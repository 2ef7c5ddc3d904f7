package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

// Role is the coarse access level carried in tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// Config holds auth settings loaded from the environment.
type Config struct {
	JWT JWTConfig
}

type JWTConfig struct {
	SecretKey      string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultConfig returns sane defaults; the secret must be overridden.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:         "skil-sync",
			AccessTokenTTL: 24 * time.Hour,
		},
	}
}

// Claims is the decoded content of an access token.
type Claims struct {
	AccountID kernel.AccountID
	Email     kernel.Email
	Role      Role
	ExpiresAt time.Time
}

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateToken(accountID kernel.AccountID, email kernel.Email, role Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// JWTService implements TokenService with HS256 JWTs.
type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
}

func NewJWTService(secretKey string, ttl time.Duration, issuer string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		issuer:    issuer,
	}
}

func (s *JWTService) GenerateToken(accountID kernel.AccountID, email kernel.Email, role Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   accountID.String(),
		"email": email.String(),
		"role":  string(role),
		"iss":   s.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign access token", errx.TypeInternal)
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errx.Wrap(err, "invalid or expired token", errx.TypeAuthorization)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errx.Wrap(nil, "invalid token claims", errx.TypeAuthorization)
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	claims := &Claims{
		AccountID: kernel.AccountID(sub),
		Email:     kernel.Email(email),
		Role:      Role(role),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
