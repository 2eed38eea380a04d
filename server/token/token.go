// Package token issues and checks the bearer tokens that grant admin access
// to the clrviz server.
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer  = "clrs"
	subject = "admin"
)

// Lifetime is how long a generated token stays valid.
const Lifetime = time.Hour

// Generate creates a signed token for the admin. The token is signed with both
// the server secret and the admin password hash, so changing the password
// invalidates every token issued before the change.
func Generate(secret []byte, passwordHash []byte) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        issuer,
		"exp":        time.Now().Add(Lifetime).Unix(),
		"sub":        subject,
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, passwordHash))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// Validate checks that tok is an unexpired admin token signed with the given
// secret and password hash. No token is valid if passwordHash is empty.
func Validate(tok string, secret []byte, passwordHash []byte) error {
	if len(passwordHash) == 0 {
		return fmt.Errorf("admin login is disabled")
	}

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}
		if subj != subject {
			return nil, fmt.Errorf("subject is not %s", subject)
		}

		return signingKey(secret, passwordHash), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	return err
}

// Get gets the token from the Authorization header of req. The header must be
// in Bearer format.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

func signingKey(secret []byte, passwordHash []byte) []byte {
	var signKey []byte
	signKey = append(signKey, secret...)
	signKey = append(signKey, passwordHash...)
	return signKey
}
