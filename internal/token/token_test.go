package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

var issuedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newManager(t *testing.T, key, iss, aud string, clk *fakeClock) *Manager {
	t.Helper()
	m, err := New(Config{SigningKey: []byte(key), Issuer: iss, Audience: aud, Now: clk.Now})
	require.NoError(t, err)
	return m
}

func TestNew_ConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Issuer: "i", Audience: "a"})
	require.ErrorIs(t, err, ErrMissingSigningKey)
	require.ErrorIs(t, err, errs.ErrConfig)

	_, err = New(Config{SigningKey: []byte("k"), Audience: "a"})
	require.ErrorIs(t, err, ErrMissingIssuer)

	_, err = New(Config{SigningKey: []byte("k"), Issuer: "i"})
	require.ErrorIs(t, err, ErrMissingAudience)

	m, err := New(Config{SigningKey: []byte("k"), Issuer: "i", Audience: "a"})
	require.NoError(t, err)
	require.NotNil(t, m.now)
}

func TestGenerate_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: issuedAt}
	m := newManager(t, "super-secret", "notes-api", "notes-app", clk)

	tok, exp, err := m.Generate(42, "alice")
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)
	require.True(t, issuedAt.Add(TTL).Equal(exp))

	id, err := m.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, model.Identity{UserID: 42, Username: "alice"}, id)
}

func TestGenerate_Claims(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: issuedAt}
	m := newManager(t, "k", "iss", "aud", clk)
	tok, _, err := m.Generate(7, "bob")
	require.NoError(t, err)

	var c Claims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &c)
	require.NoError(t, err)
	require.Equal(t, "7", c.UserID)
	require.Equal(t, "bob", c.Username)
	require.Equal(t, "iss", c.Issuer)
	require.Equal(t, jwt.ClaimStrings{"aud"}, c.Audience)
	require.True(t, issuedAt.Equal(c.IssuedAt.Time))
	require.True(t, issuedAt.Add(7*24*time.Hour).Equal(c.ExpiresAt.Time))
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		offset time.Duration
		ok     bool
	}{
		{"just issued", 0, true},
		{"one second before expiry", TTL - time.Second, true},
		{"exactly at expiry", TTL, false},
		{"one second after expiry", TTL + time.Second, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &fakeClock{t: issuedAt}
			m := newManager(t, "k", "iss", "aud", clk)
			tok, _, err := m.Generate(1, "u")
			require.NoError(t, err)

			clk.t = issuedAt.Add(tc.offset)
			_, err = m.Verify(tok)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errs.ErrUnauthorized)
			}
		})
	}
}

func TestVerify_Rejections(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: issuedAt}
	good := newManager(t, "K1", "iss", "A", clk)
	tok, _, err := good.Generate(42, "alice")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := newManager(t, "K2", "iss", "A", clk).Verify(tok)
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
	t.Run("wrong audience", func(t *testing.T) {
		_, err := newManager(t, "K1", "iss", "B", clk).Verify(tok)
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		_, err := newManager(t, "K1", "other", "A", clk).Verify(tok)
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(tok, ".")
		forged, _, err := newManager(t, "K1", "iss", "A", clk).Generate(1, "mallory")
		require.NoError(t, err)
		parts[1] = strings.Split(forged, ".")[1]
		_, err = good.Verify(strings.Join(parts, "."))
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"", "abc", "a.b.c", tok + "x"} {
			_, err := good.Verify(s)
			require.ErrorIs(t, err, errs.ErrUnauthorized, s)
		}
	})
}

func TestVerify_RejectsForeignAlgorithmsAndClaims(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{t: issuedAt}
	m := newManager(t, "k", "iss", "aud", clk)
	base := jwt.RegisteredClaims{
		Issuer:    "iss",
		Audience:  jwt.ClaimStrings{"aud"},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}
	sign := func(method jwt.SigningMethod, key any, c Claims) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}

	hs512 := sign(jwt.SigningMethodHS512, []byte("k"), Claims{UserID: "1", Username: "u", RegisteredClaims: base})
	_, err := m.Verify(hs512)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	none := sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{UserID: "1", Username: "u", RegisteredClaims: base})
	_, err = m.Verify(none)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	noExp := base
	noExp.ExpiresAt = nil
	_, err = m.Verify(sign(jwt.SigningMethodHS256, []byte("k"), Claims{UserID: "1", Username: "u", RegisteredClaims: noExp}))
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = m.Verify(sign(jwt.SigningMethodHS256, []byte("k"), Claims{UserID: "abc", Username: "u", RegisteredClaims: base}))
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = m.Verify(sign(jwt.SigningMethodHS256, []byte("k"), Claims{UserID: "1", RegisteredClaims: base}))
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	id, err := m.Verify(sign(jwt.SigningMethodHS256, []byte("k"), Claims{UserID: "5", Username: "u", RegisteredClaims: base}))
	require.NoError(t, err)
	require.Equal(t, int64(5), id.UserID)
}
