// Package token issues and verifies short-lived HS256 bearer tokens used to
// hand a buyer from one page to the next without a session store.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret = errors.New("token: signing secret is empty")
	ErrInvalidTTL    = errors.New("token: ttl must be positive")

	// ErrInvalid is wrapped by every verification failure.
	ErrInvalid   = errors.New("token invalid")
	ErrMissing   = fmt.Errorf("%w: missing", ErrInvalid)
	ErrMalformed = fmt.Errorf("%w: malformed", ErrInvalid)
	ErrForged    = fmt.Errorf("%w: signature mismatch", ErrInvalid)
	ErrExpired   = fmt.Errorf("%w: expired", ErrInvalid)
)

// Registered claim names owned by the service; callers cannot override them.
const (
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
	claimID        = "jti"
)

// Subject is the caller-supplied claim set carried by a token.
type Subject map[string]any

// String returns the claim as a string, or "" when absent or not a string.
func (s Subject) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Token is a verified token with its registered claims split out.
type Token struct {
	ID        string
	Subject   Subject
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs with a single symmetric secret. It is safe for concurrent use.
type Service struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	s := &Service{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs claims with an expiry of now+ttl.
func (s *Service) Issue(claims Subject, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	now := s.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc[claimIssuedAt] = jwt.NewNumericDate(now)
	mc[claimExpiresAt] = jwt.NewNumericDate(now.Add(ttl))
	mc[claimID] = uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify returns the embedded claims when the signature matches and the
// token has not expired.
func (s *Service) Verify(raw string) (Subject, error) {
	t, err := s.Inspect(raw)
	if err != nil {
		return nil, err
	}
	return t.Subject, nil
}

// Valid collapses Verify to a boolean.
func (s *Service) Valid(raw string) bool {
	_, err := s.Inspect(raw)
	return err == nil
}

// Inspect verifies raw and returns it with its registered claims.
// The signature is checked before expiry, so a tampered token always reports
// ErrForged or ErrMalformed even when it is also stale.
func (s *Service) Inspect(raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrMissing
	}

	parsed, err := jwt.Parse(raw, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	t := &Token{Subject: Subject{}}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t.IssuedAt = iat.Time
	}
	t.ID, _ = mc[claimID].(string)

	for k, v := range mc {
		switch k {
		case claimIssuedAt, claimExpiresAt, claimID:
		default:
			t.Subject[k] = v
		}
	}
	return t, nil
}

func (s *Service) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrForged, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
