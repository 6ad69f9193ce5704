// Package auth provides in-memory user, token, and plan management.
// It is a mock: nothing here is production authentication, and callers are
// expected to swap in a real identity and billing backend behind the same
// surface.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Plan names with monthly token quotas.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

var planQuotas = map[string]int{
	PlanFree:       50_000,
	PlanPro:        1_000_000,
	PlanEnterprise: 10_000_000,
}

var (
	// ErrUserNotFound is returned for unknown user ids or emails.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for unknown or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnknownPlan is returned when updating to an unrecognized plan.
	ErrUnknownPlan = errors.New("unknown plan")
)

// QuotaExceededError is returned when a user is over their plan's monthly
// token quota.
type QuotaExceededError struct {
	UserID string
	Plan   string
	Used   int
	Quota  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for user %s: %d/%d tokens on plan %s", e.UserID, e.Used, e.Quota, e.Plan)
}

// User is an in-memory account record.
type User struct {
	ID         string
	Email      string
	Plan       string
	TokensUsed int
	CreatedAt  time.Time

	passwordHash string
}

type tokenRecord struct {
	userID    string
	expiresAt time.Time
}

// Service holds all auth state. It is owned by the composition root; there
// are no package-level registries.
type Service struct {
	mu       sync.RWMutex
	users    map[string]*User // by id
	byEmail  map[string]string
	tokens   map[string]tokenRecord
	tokenTTL time.Duration
}

// NewService creates an empty auth service with the given token lifetime
// (24h when zero).
func NewService(tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		users:    map[string]*User{},
		byEmail:  map[string]string{},
		tokens:   map[string]tokenRecord{},
		tokenTTL: tokenTTL,
	}
}

// Register creates a user on the free plan.
func (s *Service) Register(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return nil, fmt.Errorf("email already registered")
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Plan:         PlanFree,
		CreatedAt:    time.Now(),
		passwordHash: hashPassword(password),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u, nil
}

// Login validates credentials and issues a session token.
func (s *Service) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return "", ErrInvalidCredentials
	}
	u := s.users[id]
	if u.passwordHash != hashPassword(password) {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.tokens[token] = tokenRecord{userID: u.ID, expiresAt: time.Now().Add(s.tokenTTL)}
	return token, nil
}

// ValidateToken resolves a session token to its user.
func (s *Service) ValidateToken(token string) (*User, error) {
	s.mu.RLock()
	rec, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidToken
	}
	if time.Now().After(rec.expiresAt) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return nil, ErrInvalidToken
	}
	return s.GetUser(rec.userID)
}

// GetUser returns a user by id.
func (s *Service) GetUser(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdatePlan switches a user's plan.
func (s *Service) UpdatePlan(userID, plan string) error {
	if _, ok := planQuotas[plan]; !ok {
		return ErrUnknownPlan
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Plan = plan
	return nil
}

// CheckQuota verifies the user can spend the requested tokens within their
// plan's monthly quota. Enforcement happens at the caller boundary, before
// orchestration.
func (s *Service) CheckQuota(userID string, tokens int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	quota := planQuotas[u.Plan]
	if u.TokensUsed+tokens > quota {
		return &QuotaExceededError{UserID: userID, Plan: u.Plan, Used: u.TokensUsed, Quota: quota}
	}
	return nil
}

// RecordUsage adds spent tokens to the user's running total.
func (s *Service) RecordUsage(userID string, tokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.TokensUsed += tokens
	return nil
}

// hashPassword is an unsalted mock hash. A real deployment would use a KDF
// and an external identity provider.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
