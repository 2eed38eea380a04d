package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/clrviz/server/api"
	"github.com/dekarrin/clrviz/server/middle"
	"github.com/dekarrin/clrviz/server/result"
	"github.com/go-chi/chi/v5"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount(api.PathPrefix, newAPIRouter(a))

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount("/parse", newParseRouter(a))
	r.Mount("/grammars", newGrammarsRouter(a))
	r.Mount("/login", newLoginRouter(a))
	r.Mount("/info", newInfoRouter(a))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		result.NotFound().WriteResponse(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(a.UnauthDelay)
		result.MethodNotAllowed(r).WriteResponse(w)
	})

	return r
}

func newParseRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Post("/", a.HTTPParse())

	return r
}

func newGrammarsRouter(a api.API) chi.Router {
	reqAdmin := middle.RequireAdmin(a.Secret, a.Backend.AdminPassword, a.UnauthDelay)

	r := chi.NewRouter()

	r.Get("/", a.HTTPGetAllGrammars())
	r.Post("/", a.HTTPCreateGrammar())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetGrammar())
		r.Get("/dot", a.HTTPGetGrammarDOT())
		r.Post("/traces", a.HTTPCreateTrace())
		r.With(reqAdmin).Delete("/", a.HTTPDeleteGrammar())
	})

	return r
}

func newLoginRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Post("/", a.HTTPCreateLogin())

	return r
}

func newInfoRouter(a api.API) chi.Router {
	optAdmin := middle.OptionalAdmin(a.Secret, a.Backend.AdminPassword, a.UnauthDelay)

	r := chi.NewRouter()

	r.With(optAdmin).Get("/", a.HTTPGetInfo())

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	result.Redirection(redirPath).WriteResponse(w)
}
