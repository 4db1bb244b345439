// Package auth establishes the authenticated HTTP context every content
// request depends on. It tries session sources in priority order (override,
// stored user, last used, fresh login) and installs the first cookie header
// that verifies against the profile endpoint.
package auth

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/maktabdl/maktabdl/internal/cookies"
	"github.com/maktabdl/maktabdl/internal/utils"
)

const (
	DefaultBaseURL = "https://maktabkhooneh.org"

	loginPagePath = "/login-register/"
	profilePath   = "/api/v1/profiles/profile/"
	precheckPath  = "/api/v1/auth/check-active-user/"
	loginPath     = "/api/v1/auth/login/"

	csrfCookieName    = "csrftoken"
	sessionCookieName = "sessionid"

	// OverrideEnv supplies the Active Session before any login is attempted:
	// a raw cookie string, or a path to a file containing one.
	OverrideEnv = "MAKTABDL_COOKIE"

	overridePlaceholder = "PASTE-COOKIE-HERE"
)

// Session is the process-wide authenticated header state. It is created
// once here and read by every subsequent request; downloads never mutate it.
type Session struct {
	CookieHeader string
	Source       string // override | stored-user | stored-last | fresh-login
	UserKey      string
}

type Options struct {
	BaseURL    string
	Email      string
	Password   string
	ForceLogin bool
	RecordPath string
	// Override preempts every other source when non-empty; usually filled
	// from OverrideEnv by the caller.
	Override string
}

// Profile is the identity endpoint's JSON body. Field paths are an external
// contract consumed here, not defined here.
type Profile struct {
	IsAuthenticated   bool   `json:"is_authenticated"`
	CSRFToken         string `json:"csrf_token"`
	UserID            int64  `json:"user_id"`
	StudentID         int64  `json:"student_id"`
	Email             string `json:"email"`
	HasSubscription   bool   `json:"has_subscription"`
	HasCoursePurchase bool   `json:"has_course_purchase"`
}

type authenticator struct {
	client  utils.HTTPDoer
	baseURL string
}

// Acquire drives the session state machine and, on success, installs the
// verified cookie header on the client. Sources short-circuit in priority
// order; a failed verification clears the candidate and falls through.
func Acquire(client utils.HTTPDoer, opts Options) (*Session, error) {
	log := utils.GetLogger("auth")
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	a := &authenticator{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}

	if cookie := resolveOverride(opts.Override); cookie != "" {
		if a.verify(cookie) {
			log.Debug().Str("source", "override").Msg("Session verified")
			return a.install(cookie, "override", ""), nil
		}
		log.Warn().Msg("Override cookie failed verification, falling through")
	}

	// The record is loaded only once the override is out of the picture,
	// so a valid override never touches the file.
	record, _ := cookies.LoadRecord(opts.RecordPath)
	if opts.Email != "" && !opts.ForceLogin {
		if entry, ok := record.Lookup(opts.Email); ok {
			if a.verify(entry.Cookie) {
				log.Debug().Str("source", "stored-user").Msg("Session verified")
				return a.install(entry.Cookie, "stored-user", cookies.NormalizeUserKey(opts.Email)), nil
			}
			log.Warn().Str("user", opts.Email).Msg("Stored session failed verification")
		}
	} else if opts.Email == "" && record != nil && record.LastUsed != "" {
		if entry, ok := record.Lookup(record.LastUsed); ok {
			if a.verify(entry.Cookie) {
				log.Debug().Str("source", "stored-last").Msg("Session verified")
				return a.install(entry.Cookie, "stored-last", record.LastUsed), nil
			}
			log.Warn().Str("user", record.LastUsed).Msg("Last-used session failed verification")
		}
	}

	if opts.Email != "" && opts.Password != "" {
		cookie, err := a.freshLogin(opts.Email, opts.Password)
		if err != nil {
			return nil, err
		}
		key := cookies.NormalizeUserKey(opts.Email)
		if err := cookies.SaveEntry(opts.RecordPath, key, cookie, record); err != nil {
			log.Warn().Err(err).Msg("Could not persist session record")
		}
		if a.verify(cookie) {
			log.Info().Str("user", key).Msg("Logged in")
			return a.install(cookie, "fresh-login", key), nil
		}
		log.Warn().Msg("Fresh login cookie failed verification")
	}

	return nil, ErrNoSession
}

func (a *authenticator) install(cookie, source, userKey string) *Session {
	a.client.SetHeader("Cookie", cookie)
	return &Session{CookieHeader: cookie, Source: source, UserKey: userKey}
}

// verify asks the profile endpoint whether the candidate cookie header
// belongs to an authenticated principal. Network or parse errors count as
// "not verified", never as fatal.
func (a *authenticator) verify(cookieHeader string) bool {
	profile, err := a.fetchProfile(cookieHeader)
	if err != nil {
		return false
	}
	return profile.IsAuthenticated
}

func (a *authenticator) fetchProfile(cookieHeader string) (*Profile, error) {
	req, err := http.NewRequest("GET", a.baseURL+profilePath, nil)
	if err != nil {
		return nil, err
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// resolveOverride turns the override value into a cookie string. A value
// naming a readable file is replaced by the file's first line.
func resolveOverride(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == overridePlaceholder {
		return ""
	}
	if data, err := os.ReadFile(value); err == nil {
		value = strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	}
	if !strings.Contains(value, "=") {
		return ""
	}
	return value
}
