package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TokenSigner issues an access token for an authenticated admin.
type TokenSigner func(email string, ttl time.Duration) (string, error)

// AdminCredentials is the single admin account, configured via
// environment (email + bcrypt hash).
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService authenticates the admin surface. No registration: the
// credential is deployment configuration.
type AuthService struct {
	admin     AdminCredentials
	signToken TokenSigner
	tokenTTL  time.Duration
}

func NewAuthService(admin AdminCredentials, signer TokenSigner) *AuthService {
	return &AuthService{
		admin:     admin,
		signToken: signer,
		tokenTTL:  24 * time.Hour,
	}
}

// Login checks the credential and returns a signed token.
func (s *AuthService) Login(email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", NewInvalidError("email/password required")
	}
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return "", NewUnauthorizedError("admin access not configured")
	}
	if email != strings.ToLower(s.admin.Email) {
		return "", NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		return "", NewUnauthorizedError("invalid credentials")
	}
	return s.signToken(email, s.tokenTTL)
}

// HashPassword produces a bcrypt hash for configuring the admin account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
