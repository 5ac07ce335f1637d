package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardcore-quiz-service/internal/domain"
)

func TestHeaderAuthenticatorIgnoresQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/wallet?userId=victim", nil)
	_, err := HeaderAuthenticator{}.Authenticate(r)
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.KindUnauthorized, derr.Kind)

	r.Header.Set(UserHeader, " u1 ")
	userID, err := HeaderAuthenticator{}.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestSocketAuthenticatorPrefersHeader(t *testing.T) {
	auth := SocketAuthenticator{}

	r := httptest.NewRequest(http.MethodGet, "/ws?userId=from-query", nil)
	userID, err := auth.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "from-query", userID)

	r.Header.Set(UserHeader, "from-header")
	userID, err = auth.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "from-header", userID)

	_, err = auth.Authenticate(httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://play.example.com/"})
	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://play.example.com", true},
		{"http://example.com", true},
		{"https://evil.example.com", false},
		{"::not a url", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		assert.Equal(t, tc.want, check(r), tc.origin)
	}
}
