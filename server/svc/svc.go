// Package svc has services for building, storing and running grammars on the
// clrviz server decoupled from the API that accesses it.
package svc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dekarrin/clrviz/internal/grammar"
	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/server/dao"
	"github.com/dekarrin/clrviz/server/serr"
	"github.com/google/uuid"
)

// Service is a service for interacting with and modifying the clrviz server
// backend. It performs the actions requested and makes calls to server
// persistence to preserve the backend state.
//
// The zero-value of Service is not ready to be used; call New to get one.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// AdminPassword is the bcrypt hash of the admin password. If it is
	// empty, no login will succeed.
	AdminPassword []byte

	cache *tableCache
}

// New creates a Service that stores grammars in db and keeps up to cacheSize
// built tables in memory. If cacheSize is less than 1, DefaultCacheSize is
// used.
func New(db dao.Store, adminPasswordHash []byte, cacheSize int) Service {
	return Service{
		DB:            db,
		AdminPassword: adminPasswordHash,
		cache:         newTableCache(cacheSize),
	}
}

// CompileGrammar builds the tables for the grammar in text without storing
// it. Tables already built for the same canonical rules and policy are reused.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If text holds no rules, it
// will match serr.ErrBadArgument. If the grammar could not be built, it will
// match serr.ErrGrammar along with the error that caused it, such as
// grammar.ErrFormat or parse.ErrTableConflict.
func (svc Service) CompileGrammar(ctx context.Context, text string, policy parse.ConflictPolicy) (*parse.Tables, error) {
	rules, key, err := svc.canonicalize(text, policy)
	if err != nil {
		return nil, err
	}

	if t, ok := svc.cache.get(key); ok {
		return t, nil
	}

	t, err := buildTables(rules, policy)
	if err != nil {
		return nil, err
	}
	svc.cache.put(key, t)
	return t, nil
}

// BuildGrammar builds the tables for the grammar in text and stores them. If
// the same canonical rules were already stored under the same policy, the
// stored grammar is returned instead and nothing new is built.
//
// The returned error, if non-nil, will match the same errors as
// CompileGrammar, and additionally serr.ErrDB if there is a problem with
// persistence.
func (svc Service) BuildGrammar(ctx context.Context, text string, policy parse.ConflictPolicy) (dao.Grammar, *parse.Tables, error) {
	rules, key, err := svc.canonicalize(text, policy)
	if err != nil {
		return dao.Grammar{}, nil, err
	}

	existing, err := svc.DB.Grammars().GetByKey(ctx, key)
	if err == nil {
		existing, err = svc.DB.Grammars().Touch(ctx, existing.ID)
		if err != nil {
			return dao.Grammar{}, nil, serr.WrapDB("could not update grammar", err)
		}
		t, err := svc.tablesFor(existing)
		if err != nil {
			return dao.Grammar{}, nil, err
		}
		return existing, t, nil
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.Grammar{}, nil, serr.WrapDB("could not look up grammar", err)
	}

	t, ok := svc.cache.get(key)
	if !ok {
		t, err = buildTables(rules, policy)
		if err != nil {
			return dao.Grammar{}, nil, err
		}
	}

	data, err := t.MarshalBinary()
	if err != nil {
		return dao.Grammar{}, nil, fmt.Errorf("encode tables: %w", err)
	}

	created, err := svc.DB.Grammars().Create(ctx, dao.Grammar{
		Key:       key,
		Rules:     rules,
		Policy:    policy.String(),
		Tables:    data,
		States:    t.NumStates(),
		Conflicts: len(t.Conflicts()),
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			// stored by a concurrent request since the lookup
			created, err = svc.DB.Grammars().GetByKey(ctx, key)
		}
		if err != nil {
			return dao.Grammar{}, nil, serr.WrapDB("could not create grammar", err)
		}
	}

	svc.cache.put(key, t)
	return created, t, nil
}

// GetGrammar returns the stored grammar with the given ID along with its
// tables.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the ID is not valid, it will
// match serr.ErrBadArgument. If the error occured due to an unexpected problem
// with the DB, it will match serr.ErrDB.
func (svc Service) GetGrammar(ctx context.Context, id string) (dao.Grammar, *parse.Tables, error) {
	g, err := svc.lookup(ctx, id)
	if err != nil {
		return dao.Grammar{}, nil, err
	}

	t, err := svc.tablesFor(g)
	if err != nil {
		return dao.Grammar{}, nil, err
	}
	return g, t, nil
}

// GetAllGrammars returns all grammars currently in persistence.
func (svc Service) GetAllGrammars(ctx context.Context) ([]dao.Grammar, error) {
	all, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return all, nil
}

// DeleteGrammar deletes the grammar with the given ID and returns it.
//
// The returned error, if non-nil, will match the same errors as GetGrammar.
func (svc Service) DeleteGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not delete grammar", err)
	}

	svc.cache.remove(g.Key)
	return g, nil
}

// ParseWith runs the tables of the stored grammar with the given ID over the
// given tokens and returns the grammar along with the trace. A rejected input
// is not an error.
//
// The returned error, if non-nil, will match the same errors as GetGrammar.
// If the stored tables are inconsistent it will match
// parse.ErrInternalTableInconsistency.
func (svc Service) ParseWith(ctx context.Context, id string, tokens []string) (dao.Grammar, parse.Trace, error) {
	g, err := svc.lookup(ctx, id)
	if err != nil {
		return dao.Grammar{}, parse.Trace{}, err
	}

	t, err := svc.tablesFor(g)
	if err != nil {
		return dao.Grammar{}, parse.Trace{}, err
	}

	g, err = svc.DB.Grammars().Touch(ctx, g.ID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, parse.Trace{}, serr.ErrNotFound
		}
		return dao.Grammar{}, parse.Trace{}, serr.WrapDB("could not update grammar", err)
	}

	trace, err := parse.Parse(t, tokens)
	if err != nil {
		return dao.Grammar{}, parse.Trace{}, fmt.Errorf("parse: %w", err)
	}

	return g, trace, nil
}

func (svc Service) lookup(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not get grammar", err)
	}

	return g, nil
}

// tablesFor gives the tables of a stored grammar, decoding them only when they
// are not already cached.
func (svc Service) tablesFor(g dao.Grammar) (*parse.Tables, error) {
	if t, ok := svc.cache.get(g.Key); ok {
		return t, nil
	}

	t := &parse.Tables{}
	if err := t.UnmarshalBinary(g.Tables); err != nil {
		return nil, fmt.Errorf("decode stored tables of grammar %s: %w", g.ID, err)
	}

	svc.cache.put(g.Key, t)
	return t, nil
}

func (svc Service) canonicalize(text string, policy parse.ConflictPolicy) ([]string, string, error) {
	rules := CanonicalRules(text)
	if len(rules) == 0 {
		return nil, "", serr.New("no grammar rules provided", serr.ErrBadArgument)
	}
	return rules, GrammarKey(rules, policy.String()), nil
}

func buildTables(rules []string, policy parse.ConflictPolicy) (*parse.Tables, error) {
	g, err := grammar.Parse(rules)
	if err != nil {
		return nil, serr.New("", err, serr.ErrGrammar)
	}

	t, err := parse.Build(g, parse.Options{Policy: policy})
	if err != nil {
		return nil, serr.New("", err, serr.ErrGrammar)
	}
	return t, nil
}
