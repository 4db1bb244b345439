package auth

import (
	"errors"
	"fmt"
)

type AuthErrorKind string

const (
	KindCSRFUnavailable AuthErrorKind = "csrf-unavailable"
	KindPrecheckFailed  AuthErrorKind = "precheck-failed"
	KindLoginRejected   AuthErrorKind = "login-rejected"
	KindNoSessionCookie AuthErrorKind = "no-session-cookie"
)

// AuthError is fatal to the login attempt it occurred in and is never
// retried automatically.
type AuthError struct {
	Kind   AuthErrorKind
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("login failed (%s)", e.Kind)
	}
	return fmt.Sprintf("login failed (%s): %s", e.Kind, e.Detail)
}

// ErrNoSession means every session source was exhausted without producing
// a verified session. Callers exit with a credentials instruction.
var ErrNoSession = errors.New("no usable session: supply credentials with --user and --password")
