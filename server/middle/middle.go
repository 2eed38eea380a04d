// Package middle contains middleware for use with the clrviz server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/clrviz/server/result"
	"github.com/dekarrin/clrviz/server/token"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	// AuthLoggedIn holds a bool: whether the request carried a valid admin
	// token.
	AuthLoggedIn AuthKey = iota
)

// AuthHandler checks the bearer token of a request against the admin
// credentials and records the outcome under AuthLoggedIn in the request
// context. If required is set, a request without a valid token gets an
// HTTP-401 and never reaches next.
type AuthHandler struct {
	secret        []byte
	passwordHash  []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	err := ah.check(req)
	if err != nil && ah.required {
		time.Sleep(ah.unauthedDelay)
		result.Unauthorized("", err.Error()).WriteResponse(w)
		return
	}

	ctx := context.WithValue(req.Context(), AuthLoggedIn, err == nil)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

func (ah *AuthHandler) check(req *http.Request) error {
	tok, err := token.Get(req)
	if err != nil {
		return err
	}
	return token.Validate(tok, ah.secret, ah.passwordHash)
}

func adminMiddleware(secret, passwordHash []byte, unauthDelay time.Duration, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			passwordHash:  passwordHash,
			unauthedDelay: unauthDelay,
			required:      required,
			next:          next,
		}
	}
}

// RequireAdmin gives middleware that refuses any request without a valid
// admin token with an HTTP-401.
func RequireAdmin(secret []byte, passwordHash []byte, unauthDelay time.Duration) Middleware {
	return adminMiddleware(secret, passwordHash, unauthDelay, true)
}

// OptionalAdmin gives middleware that records whether the request carries a
// valid admin token but lets it through either way.
func OptionalAdmin(secret []byte, passwordHash []byte, unauthDelay time.Duration) Middleware {
	return adminMiddleware(secret, passwordHash, unauthDelay, false)
}
