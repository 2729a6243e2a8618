package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"parking/internal/domain"
	"parking/internal/domain/models"
	"parking/internal/repositories"
	"parking/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var errBadLogin = domain.UnauthorizedError{Msg: "invalid email or password"}

// AuthService is the single-admin credential and session collaborator.
// Sessions are signed tokens; logout revokes the token id until it expires.
type AuthService struct {
	Store  repositories.CredentialStore
	Secret []byte
	TTL    time.Duration
	Cost   int
	Now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewAuthService(store repositories.CredentialStore, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		Store:   store,
		Secret:  []byte(secret),
		TTL:     ttl,
		Cost:    bcrypt.DefaultCost,
		revoked: map[string]time.Time{},
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) HasCredentials(ctx context.Context) (bool, error) {
	_, ok, err := s.Store.GetCredentials(ctx)
	return ok, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return domain.ValidationError{Field: "email", Msg: "a valid email is required"}
	}
	if len(password) < minPasswordLength {
		return domain.ValidationError{Field: "password", Msg: "password must have at least 6 characters"}
	}
	return nil
}

// SetCredentials replaces the admin account.
func (s *AuthService) SetCredentials(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	existing, ok, err := s.Store.GetCredentials(ctx)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	creds := models.AdminCredentials{Email: email, PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now}
	if ok {
		creds.CreatedAt = existing.CreatedAt
	}
	if err := s.Store.SaveCredentials(ctx, creds); err != nil {
		return err
	}
	utils.LogEventf("", "auth", "set_credentials", "email=%s", email)
	return nil
}

// Setup creates the first admin account. It refuses once one exists.
func (s *AuthService) Setup(ctx context.Context, email, password string) error {
	ok, err := s.HasCredentials(ctx)
	if err != nil {
		return err
	}
	if ok {
		return domain.ConflictError{Resource: "credentials", Msg: "admin credentials already configured"}
	}
	return s.SetCredentials(ctx, email, password)
}

// Login verifies the password and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	creds, ok, err := s.Store.GetCredentials(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, domain.UnauthorizedError{Msg: "admin credentials are not configured"}
	}
	if normalizeEmail(email) != creds.Email {
		return "", time.Time{}, errBadLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, errBadLogin
	}

	now := s.now()
	exp := now.Add(s.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   creds.Email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	utils.LogEventf("", "auth", "login", "email=%s", creds.Email)
	return signed, exp, nil
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.UnauthorizedError{Msg: "session expired"}
		}
		return nil, domain.UnauthorizedError{Msg: "invalid session"}
	}
	return claims, nil
}

// Authenticate resolves a token into the admin identity.
func (s *AuthService) Authenticate(token string) (domain.RequestContext, error) {
	if strings.TrimSpace(token) == "" {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "login required"}
	}
	claims, err := s.parse(token)
	if err != nil {
		return domain.RequestContext{}, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "session ended"}
	}
	return domain.RequestContext{Email: claims.Subject, TokenID: claims.ID}, nil
}

func (s *AuthService) IsAuthenticated(token string) bool {
	_, err := s.Authenticate(token)
	return err == nil
}

// Logout revokes the token. Unknown or already-invalid tokens are ignored.
func (s *AuthService) Logout(token string) {
	claims, err := s.parse(token)
	if err != nil {
		return
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked == nil {
		s.revoked = map[string]time.Time{}
	}
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
	utils.LogEventf("", "auth", "logout", "email=%s", claims.Subject)
}
