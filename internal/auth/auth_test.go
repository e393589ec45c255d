package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	j := NewJWT("secret")

	tok, err := j.Sign("abc123")
	require.NoError(t, err)

	id, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
}

func TestJWT_RejectsOtherSecret(t *testing.T) {
	tok, err := NewJWT("one").Sign("abc123")
	require.NoError(t, err)

	_, err = NewJWT("two").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsExpired(t *testing.T) {
	j := NewJWT("secret")
	j.now = func() time.Time { return time.Now().Add(-OwnerTokenTTL - time.Hour) }
	tok, err := j.Sign("abc123")
	require.NoError(t, err)

	_, err = NewJWT("secret").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsNoneAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "abc123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWT("secret").Verify(tok)
	assert.Error(t, err)
}

func TestRequireOwner(t *testing.T) {
	j := NewJWT("secret")
	own, err := j.Sign("abc123")
	require.NoError(t, err)
	other, err := j.Sign("zzz999")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.With(RequireOwner(j)).Get("/pages/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		id, ok := PageIDFromContext(r.Context())
		assert.True(t, ok)
		_, _ = w.Write([]byte(id))
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"other page", "Bearer " + other, http.StatusForbidden},
		{"owner", "Bearer " + own, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/pages/abc123/status", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "abc123", rec.Body.String())
			}
		})
	}
}
