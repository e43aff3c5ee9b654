package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/service"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestParseToken(t *testing.T) {
	valid := jwt.MapClaims{
		"id":       "u1",
		"fullName": "Ada Obi",
		"email":    "ada@example.com",
		"userType": domain.RoleAgent,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}

	t.Run("verified", func(t *testing.T) {
		raw := signToken(t, "s3cret", valid)
		u, err := parseToken(raw, "s3cret")
		require.NoError(t, err)
		assert.Equal(t, &domain.User{ID: "u1", Name: "Ada Obi", Email: "ada@example.com", Role: domain.RoleAgent, Token: raw}, u)
		assert.True(t, u.IsAgent())
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := parseToken(signToken(t, "other", valid), "s3cret")
		assert.Error(t, err)
	})

	t.Run("unverified without secret", func(t *testing.T) {
		u, err := parseToken(signToken(t, "anything", valid), "")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.MapClaims{"id": "u1", "exp": time.Now().Add(-time.Minute).Unix()}
		_, err := parseToken(signToken(t, "s3cret", expired), "s3cret")
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		_, err = parseToken(signToken(t, "s3cret", expired), "")
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("subject fallback", func(t *testing.T) {
		u, err := parseToken(signToken(t, "s3cret", jwt.MapClaims{"sub": "u9"}), "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "u9", u.ID)
	})

	t.Run("no user id", func(t *testing.T) {
		_, err := parseToken(signToken(t, "s3cret", jwt.MapClaims{"email": "x@example.com"}), "s3cret")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseToken("not-a-token", "")
		assert.Error(t, err)
	})
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &api.Error{Status: 400, Message: "Submission failed"}, "Submission failed"},
		{"wrapped backend message", fmt.Errorf("submit: %w", &api.Error{Status: 422, Message: "Price too low"}), "Price too low"},
		{"uploads pending", service.ErrUploadsPending, msgUploadsPending},
		{"incomplete step", &service.StepError{Step: 1, Label: "Features"}, msgIncomplete},
		{"validation", &service.ValidationError{Fields: map[string]string{"email": "bad"}}, msgFixFields},
		{"report incomplete", fmt.Errorf("%w: %w", service.ErrReportIncomplete, &service.ValidationError{}), "Add a description for every document before submitting"},
		{"unauthorized", api.ErrUnauthorized, msgSignIn},
		{"transport", fmt.Errorf("%w: dial tcp: refused", service.ErrBackendUnavailable), msgGeneric},
		{"unknown", errors.New("boom"), msgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.err))
		})
	}
}

func TestFlashRoundTrip(t *testing.T) {
	s := &Server{opts: Options{}}

	rec := httptest.NewRecorder()
	s.setFlash(rec, "error", "Submission failed")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	f := s.popFlash(rec, req)
	require.NotNil(t, f)
	assert.Equal(t, Flash{Kind: "error", Message: "Submission failed"}, *f)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, flashCookie, cleared[0].Name)
	assert.Negative(t, cleared[0].MaxAge)
}

func TestPopFlashWithoutCookie(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, s.popFlash(httptest.NewRecorder(), req))
}
