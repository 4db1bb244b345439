package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginScript configures the scripted platform endpoints for one test.
type loginScript struct {
	csrfFromPage    bool   // login page sets the csrftoken cookie
	csrfFromProfile string // profile JSON csrf_token fallback value
	precheckStatus  string
	precheckMessage string
	loginStatus     string
	setSessionID    string // sessionid cookie value set by login submit, "" = none
}

func newLoginServer(t *testing.T, script loginScript) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login-register/", func(w http.ResponseWriter, r *http.Request) {
		if script.csrfFromPage {
			w.Header().Add("Set-Cookie", "csrftoken=tok123; Path=/; Secure")
		}
		w.Header().Add("Set-Cookie", "tracking=ignored; Path=/")
		fmt.Fprint(w, "<html>login</html>")
	})
	mux.HandleFunc("GET /api/v1/profiles/profile/", func(w http.ResponseWriter, r *http.Request) {
		authenticated := strings.Contains(r.Header.Get("Cookie"), "sessionid="+script.setSessionID) && script.setSessionID != ""
		fmt.Fprintf(w, `{"is_authenticated": %t, "csrf_token": %q}`, authenticated, script.csrfFromProfile)
	})
	mux.HandleFunc("POST /api/v1/auth/check-active-user/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.Header.Get("X-Csrftoken"))
		assert.Equal(t, r.Header.Get("X-Csrftoken"), r.PostForm.Get("csrfmiddlewaretoken"))
		assert.NotEmpty(t, r.PostForm.Get("email"))
		assert.Contains(t, r.PostForm, "g-recaptcha-response")
		fmt.Fprintf(w, `{"status": %q, "message": %q}`, script.precheckStatus, script.precheckMessage)
	})
	mux.HandleFunc("POST /api/v1/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("password"))
		assert.Equal(t, r.PostForm.Get("email"), r.PostForm.Get("hidden_username"))
		if script.setSessionID != "" {
			w.Header().Add("Set-Cookie", "sessionid="+script.setSessionID+"; HttpOnly")
		}
		fmt.Fprintf(w, `{"status": %q, "message": ""}`, script.loginStatus)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newAuthenticator(serverURL string) *authenticator {
	client := utils.NewMaktabHTTPClient(utils.HTTPClientConfig{})
	return &authenticator{client: client, baseURL: serverURL}
}

func TestFreshLoginSuccess(t *testing.T) {
	server := newLoginServer(t, loginScript{
		csrfFromPage:    true,
		precheckStatus:  "success",
		precheckMessage: "get-pass",
		loginStatus:     "success",
		setSessionID:    "sess456",
	})

	cookie, err := newAuthenticator(server.URL).freshLogin("someone@example.com", "hunter2")
	require.NoError(t, err)
	// Exactly the csrf and session cookies, nothing collected along the way
	assert.Equal(t, "csrftoken=tok123; sessionid=sess456", cookie)
}

func TestFreshLoginCSRFFallbackFromProfile(t *testing.T) {
	server := newLoginServer(t, loginScript{
		csrfFromPage:    false,
		csrfFromProfile: "fromjson",
		precheckStatus:  "success",
		precheckMessage: "get-pass",
		loginStatus:     "success",
		setSessionID:    "sess456",
	})

	cookie, err := newAuthenticator(server.URL).freshLogin("someone@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "csrftoken=fromjson; sessionid=sess456", cookie)
}

func TestFreshLoginCSRFUnavailable(t *testing.T) {
	server := newLoginServer(t, loginScript{
		csrfFromPage: false,
	})

	_, err := newAuthenticator(server.URL).freshLogin("someone@example.com", "hunter2")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindCSRFUnavailable, authErr.Kind)
}

func TestFreshLoginPrecheckFailed(t *testing.T) {
	server := newLoginServer(t, loginScript{
		csrfFromPage:    true,
		precheckStatus:  "success",
		precheckMessage: "get-token", // account not in the password flow
	})

	_, err := newAuthenticator(server.URL).freshLogin("someone@example.com", "hunter2")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindPrecheckFailed, authErr.Kind)
	assert.Contains(t, authErr.Detail, "get-token")
}

func TestFreshLoginRejected(t *testing.T) {
	server := newLoginServer(t, loginScript{
		csrfFromPage:    true,
		precheckStatus:  "success",
		precheckMessage: "get-pass",
		loginStatus:     "error",
	})

	_, err := newAuthenticator(server.URL).freshLogin("someone@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindLoginRejected, authErr.Kind)
}

func TestFreshLoginNoSessionCookie(t *testing.T) {
	// Server reports success but never sets a session cookie: a real
	// observed failure mode that must be fatal.
	server := newLoginServer(t, loginScript{
		csrfFromPage:    true,
		precheckStatus:  "success",
		precheckMessage: "get-pass",
		loginStatus:     "success",
		setSessionID:    "",
	})

	_, err := newAuthenticator(server.URL).freshLogin("someone@example.com", "hunter2")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindNoSessionCookie, authErr.Kind)
}
