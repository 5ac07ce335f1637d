package http

import (
	"net/http"
	"net/url"
	"strings"

	"hardcore-quiz-service/internal/domain"
)

// UserHeader is set by the upstream gateway after it authenticated the caller.
const UserHeader = "X-User-ID"

// Authenticator resolves the user behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// HeaderAuthenticator trusts the gateway header and nothing else.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(UserHeader))
	if userID == "" {
		return "", domain.Errorf(domain.KindUnauthorized, "missing %s header", UserHeader)
	}
	return userID, nil
}

// SocketAuthenticator is used only for the WebSocket handshake. Browsers
// cannot set headers there, so after Base fails the userId query parameter
// is accepted.
type SocketAuthenticator struct {
	Base Authenticator
}

func (a SocketAuthenticator) Authenticate(r *http.Request) (string, error) {
	base := a.Base
	if base == nil {
		base = HeaderAuthenticator{}
	}
	userID, err := base.Authenticate(r)
	if err == nil {
		return userID, nil
	}
	if userID = strings.TrimSpace(r.URL.Query().Get("userId")); userID != "" {
		return userID, nil
	}
	return "", err
}

// originChecker allows handshakes without an Origin header (non-browser
// clients), same-host origins and the configured allow list.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		if _, ok := set[strings.TrimRight(strings.ToLower(origin), "/")]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
