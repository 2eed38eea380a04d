// Package inmem provides a dao.Store that keeps everything in memory and
// loses it when the process exits.
package inmem

import (
	"github.com/dekarrin/clrviz/server/dao"
)

type store struct {
	grammars *InMemoryGrammarsRepository
}

func NewDatastore() dao.Store {
	return &store{
		grammars: NewGrammarsRepository(),
	}
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) Close() error {
	return s.grammars.Close()
}
