package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/maktabdl/maktabdl/internal/cookies"
	"github.com/maktabdl/maktabdl/internal/utils"
)

// freshLogin performs the full login protocol against the platform:
// CSRF retrieval, active-user precheck, credential submission. Cookies
// accumulate in one jar passed through every step. No step is retried;
// the first failure aborts the whole attempt.
func (a *authenticator) freshLogin(email, password string) (string, error) {
	log := utils.GetLogger("auth")
	jar := cookies.NewJar()

	// Step 1: anonymous login page visit establishes session cookies and
	// usually the CSRF token.
	if resp, err := a.anonymousGet(loginPagePath, jar); err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	} else {
		return "", fmt.Errorf("login page request: %w", err)
	}
	token, _ := jar.Get(csrfCookieName)

	// Step 2: some deployments only hand the token out in the profile JSON.
	if token == "" {
		if resp, err := a.anonymousGet(profilePath, jar); err == nil {
			var profile Profile
			json.NewDecoder(resp.Body).Decode(&profile)
			resp.Body.Close()
			if profile.CSRFToken != "" {
				token = profile.CSRFToken
				jar.Set(csrfCookieName, token)
			}
		}
	}
	if token == "" {
		return "", &AuthError{Kind: KindCSRFUnavailable, Detail: "no csrf token from login page or profile endpoint"}
	}

	// Step 3: ask whether the account is active and ready for a password.
	form := url.Values{
		"csrfmiddlewaretoken":  {token},
		"email":                {email},
		"g-recaptcha-response": {""},
	}
	status, message, err := a.postForm(precheckPath, form, token, jar)
	if err != nil {
		return "", fmt.Errorf("active-user check: %w", err)
	}
	if status != "success" || message != "get-pass" {
		return "", &AuthError{Kind: KindPrecheckFailed, Detail: fmt.Sprintf("status=%q message=%q", status, message)}
	}

	// Step 4: submit credentials.
	form = url.Values{
		"csrfmiddlewaretoken":  {token},
		"email":                {email},
		"hidden_username":      {email},
		"password":             {password},
		"g-recaptcha-response": {""},
	}
	status, message, err = a.postForm(loginPath, form, token, jar)
	if err != nil {
		return "", fmt.Errorf("login submit: %w", err)
	}
	if status != "success" {
		return "", &AuthError{Kind: KindLoginRejected, Detail: fmt.Sprintf("status=%q message=%q", status, message)}
	}

	// Step 5: a success response without a session cookie is a real
	// observed failure mode and is treated as fatal.
	sessionValue, ok := jar.Get(sessionCookieName)
	if !ok || sessionValue == "" {
		return "", &AuthError{Kind: KindNoSessionCookie, Detail: "server reported success without setting " + sessionCookieName}
	}

	// Step 6: downstream requests need exactly these two cookies.
	csrfValue, _ := jar.Get(csrfCookieName)
	final := cookies.NewJar()
	final.Set(csrfCookieName, csrfValue)
	final.Set(sessionCookieName, sessionValue)
	log.Debug().Int("jarSize", jar.Len()).Msg("Login protocol completed")
	return final.Render(), nil
}

// anonymousGet issues a GET carrying only the jar's accumulated cookies and
// records any cookies the response sets.
func (a *authenticator) anonymousGet(path string, jar *cookies.Jar) (*http.Response, error) {
	req, err := http.NewRequest("GET", a.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if header := jar.Render(); header != "" {
		req.Header.Set("Cookie", header)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	jar.ApplyResponse(resp)
	return resp, nil
}

// postForm submits a form-encoded body with the CSRF header and cookie
// discipline every authenticated platform endpoint expects, returning the
// JSON status/message pair.
func (a *authenticator) postForm(path string, form url.Values, token string, jar *cookies.Jar) (string, string, error) {
	req, err := http.NewRequest("POST", a.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Csrftoken", token)
	req.Header.Set("Referer", a.baseURL+loginPagePath)
	if header := jar.Render(); header != "" {
		req.Header.Set("Cookie", header)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	jar.ApplyResponse(resp)
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return body.Status, body.Message, nil
}
