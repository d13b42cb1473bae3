package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	c := &clock{t: time.Unix(1_760_000_000, 0)}
	s, err := NewService([]byte("test-secret"), WithClock(c.now))
	require.NoError(t, err)
	return s, c
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(nil)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewService([]byte{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	s, _ := newTestService(t)

	cases := []Subject{
		{"userId": "anon", "name": "customer"},
		{"userId": "6651f0c2a1b2c3d4e5f60718", "name": "Ada Lovelace"},
		{"name": "ünïcødé ✓"},
	}
	for _, claims := range cases {
		raw, err := s.Issue(claims, 30*time.Minute)
		require.NoError(t, err)

		got, err := s.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, claims, got)
		assert.True(t, s.Valid(raw))
	}
}

func TestIssueRejectsNonPositiveTTL(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Issue(Subject{"name": "x"}, 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
	_, err = s.Issue(Subject{"name": "x"}, -time.Second)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestRegisteredClaimsCannotBeOverridden(t *testing.T) {
	s, c := newTestService(t)

	raw, err := s.Issue(Subject{"exp": float64(9_999_999_999), "name": "x"}, 20*time.Second)
	require.NoError(t, err)

	tok, err := s.Inspect(raw)
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(20*time.Second).Unix(), tok.ExpiresAt.Unix())
	assert.Equal(t, c.t.Unix(), tok.IssuedAt.Unix())
	assert.NotEmpty(t, tok.ID)
	assert.NotContains(t, tok.Subject, "exp")
}

func TestVerifyExpiry(t *testing.T) {
	s, c := newTestService(t)
	start := c.t

	raw, err := s.Issue(Subject{"id": "shipping"}, 20*time.Second)
	require.NoError(t, err)

	c.t = start.Add(19 * time.Second)
	_, err = s.Verify(raw)
	require.NoError(t, err)

	c.t = start.Add(20 * time.Second)
	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, ErrInvalid)

	c.t = start.Add(time.Hour)
	assert.False(t, s.Valid(raw))
}

func TestVerifyRejectsEveryAlteredByte(t *testing.T) {
	s, _ := newTestService(t)

	raw, err := s.Issue(Subject{"userId": "anon", "name": "customer"}, time.Minute)
	require.NoError(t, err)

	for i := 0; i < len(raw); i++ {
		replacement := byte('A')
		if raw[i] == 'A' {
			replacement = 'B'
		}
		tampered := raw[:i] + string(replacement) + raw[i+1:]

		_, err := s.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalid, "byte %d altered", i)
	}
}

func TestSignatureCheckedBeforeExpiry(t *testing.T) {
	s, c := newTestService(t)

	raw, err := s.Issue(Subject{"name": "x"}, time.Second)
	require.NoError(t, err)
	c.t = c.t.Add(time.Hour)

	parts := strings.Split(raw, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	_, err = s.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrForged)
	assert.False(t, errors.Is(err, ErrExpired))
}

func TestVerifyMalformedInputsFailClosed(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Verify("")
	assert.ErrorIs(t, err, ErrMissing)
	assert.ErrorIs(t, err, ErrInvalid)

	for _, raw := range []string{"garbage", "a.b", "a.b.c", "...", "eyJhbGciOiJIUzI1NiJ9.e30"} {
		assert.NotPanics(t, func() {
			_, err := s.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalid, raw)
		})
	}
}

func TestVerifyRejectsOtherSecretAndAlgorithm(t *testing.T) {
	s, c := newTestService(t)
	other, err := NewService([]byte("another-secret"), WithClock(c.now))
	require.NoError(t, err)

	raw, err := other.Issue(Subject{"name": "x"}, time.Minute)
	require.NoError(t, err)
	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, ErrForged)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"name": "x",
		"exp":  c.t.Add(time.Minute).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	s, _ := newTestService(t)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "x"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSubjectString(t *testing.T) {
	sub := Subject{"name": "Ada", "id": float64(12)}
	assert.Equal(t, "Ada", sub.String("name"))
	assert.Equal(t, "", sub.String("id"))
	assert.Equal(t, "", sub.String("missing"))
}
