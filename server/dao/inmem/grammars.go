package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/clrviz/internal/util"
	"github.com/dekarrin/clrviz/server/dao"
	"github.com/google/uuid"
)

func NewGrammarsRepository() *InMemoryGrammarsRepository {
	return &InMemoryGrammarsRepository{
		grammars:   make(map[uuid.UUID]dao.Grammar),
		byKeyIndex: make(map[string]uuid.UUID),
		seqByID:    make(map[uuid.UUID]int64),
	}
}

type InMemoryGrammarsRepository struct {
	mtx        sync.RWMutex
	grammars   map[uuid.UUID]dao.Grammar
	byKeyIndex map[string]uuid.UUID

	// seq orders grammars created within the same clock tick
	seq     int64
	seqByID map[uuid.UUID]int64
}

func (imgr *InMemoryGrammarsRepository) Close() error {
	return nil
}

func (imgr *InMemoryGrammarsRepository) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	// make sure it's not already in the DB
	if _, ok := imgr.byKeyIndex[g.Key]; ok {
		return dao.Grammar{}, dao.ErrConstraintViolation
	}

	g.ID = newUUID
	g.Created = time.Now()
	g.LastUsed = g.Created
	g = copyGrammar(g)

	imgr.seq++
	imgr.seqByID[g.ID] = imgr.seq

	imgr.grammars[g.ID] = g
	imgr.byKeyIndex[g.Key] = g.ID

	return copyGrammar(g), nil
}

func (imgr *InMemoryGrammarsRepository) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	all := make([]dao.Grammar, 0, len(imgr.grammars))
	for k := range imgr.grammars {
		all = append(all, copyGrammar(imgr.grammars[k]))
	}

	all = util.SortBy(all, func(l, r dao.Grammar) bool {
		return imgr.seqByID[l.ID] < imgr.seqByID[r.ID]
	})

	return all, nil
}

func (imgr *InMemoryGrammarsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	g, ok := imgr.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return copyGrammar(g), nil
}

func (imgr *InMemoryGrammarsRepository) GetByKey(ctx context.Context, key string) (dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	id, ok := imgr.byKeyIndex[key]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return copyGrammar(imgr.grammars[id]), nil
}

func (imgr *InMemoryGrammarsRepository) Touch(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	g, ok := imgr.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	g.LastUsed = time.Now()
	imgr.grammars[id] = g

	return copyGrammar(g), nil
}

func (imgr *InMemoryGrammarsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	g, ok := imgr.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	delete(imgr.byKeyIndex, g.Key)
	delete(imgr.grammars, g.ID)
	delete(imgr.seqByID, g.ID)

	return g, nil
}

// copyGrammar gives a Grammar that shares no slices with g.
func copyGrammar(g dao.Grammar) dao.Grammar {
	c := g
	c.Rules = append([]string(nil), g.Rules...)
	c.Tables = append([]byte(nil), g.Tables...)
	return c
}
