package svc

import (
	"context"
	"errors"

	"github.com/dekarrin/clrviz/server/serr"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword gives the bcrypt hash of password for use as
// Service.AdminPassword.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Login verifies the provided password against the admin password.
//
// The returned error, if non-nil, will match serr.ErrBadCredentials if the
// password is incorrect or no admin password is set.
func (svc Service) Login(ctx context.Context, password string) error {
	if len(svc.AdminPassword) == 0 {
		return serr.New("admin login is disabled", serr.ErrBadCredentials)
	}

	err := bcrypt.CompareHashAndPassword(svc.AdminPassword, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return serr.ErrBadCredentials
		}
		return serr.New("could not check password", err)
	}

	return nil
}
