package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/clrviz/server/result"
	"github.com/dekarrin/clrviz/server/serr"
	"github.com/dekarrin/clrviz/server/token"
)

// HTTPCreateLogin returns a HandlerFunc that uses the API to log in as admin
// with a password and return the auth token.
func (api API) HTTPCreateLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateLogin)
}

func (api API) epCreateLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	err = api.Backend.Login(req.Context(), loginData.Password)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "admin login: %s", err.Error())
		} else {
			return result.InternalServerError(err.Error())
		}
	}

	// password is valid, generate token and return it.
	tok, err := token.Generate(api.Secret, api.Backend.AdminPassword)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{
		Token: tok,
	}
	return result.Created(resp, "admin successfully logged in")
}
