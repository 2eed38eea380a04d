// Package server provides an HTTP REST server that builds canonical LR(1)
// tables for grammars, stores them, and parses input with them.
//
// The API has the following endpoints, all under /api/v1:
//
//	POST   /parse                  - build tables for a grammar and optionally parse input. Nothing is stored.
//	POST   /grammars               - build and store a grammar.
//	GET    /grammars               - list stored grammars.
//	GET    /grammars/{id}          - get a stored grammar and its tables (?format=text for plain text).
//	GET    /grammars/{id}/dot      - get the automaton of a stored grammar in Graphviz DOT format.
//	POST   /grammars/{id}/traces   - parse input with a stored grammar and get the trace.
//	DELETE /grammars/{id}          - delete a stored grammar (admin auth required).
//	POST   /login                  - log in as admin and get a token.
//	GET    /info                   - get version info on the server.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dekarrin/clrviz/server/api"
	"github.com/dekarrin/clrviz/server/dao"
	"github.com/dekarrin/clrviz/server/svc"
	"github.com/go-chi/chi/v5"
)

// Server is an HTTP REST server that provides canonical LR(1) tables and
// parse traces. The zero-value of a Server should not be used directly; call
// New() to get one ready for use.
type Server struct {
	router chi.Router
	db     dao.Store
	cfg    Config
}

// New creates a new Server from the given config. Unset values in cfg are
// given their defaults before it is validated. The returned Server holds an
// open connection to its store; call Close when done with it.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var pwHash []byte
	if cfg.AdminPassword != "" {
		var err error
		pwHash, err = svc.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, err
	}

	a := api.API{
		Backend:       svc.New(db, pwHash, cfg.CacheSize),
		UnauthDelay:   cfg.UnauthDelay(),
		Secret:        cfg.TokenSecret,
		DefaultPolicy: cfg.DefaultPolicy,
	}

	return &Server{
		router: newRouter(a),
		db:     db,
		cfg:    cfg,
	}, nil
}

// Handler returns the handler that serves every route of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeForever begins listening on the configured address for HTTP REST client
// requests. It only returns if the listener fails.
func (s *Server) ServeForever() error {
	log.Printf("INFO  Listening on %s", s.cfg.Listen)
	return http.ListenAndServe(s.cfg.Listen, s.router)
}

// Close closes the store of the server.
func (s *Server) Close() error {
	return s.db.Close()
}
