package account

import "github.com/heyitsgautham/skil-sync-fullstack/pkg/iam/auth"

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	FullName string    `json:"full_name"`
	Role     auth.Role `json:"role"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a fresh token plus the account it belongs to.
type AuthResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}
