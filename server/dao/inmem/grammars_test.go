package inmem

import (
	"context"
	"testing"

	"github.com/dekarrin/clrviz/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) dao.Store {
	store := NewDatastore()
	t.Cleanup(func() { store.Close() })
	return store
}

func Test_Grammars_Create(t *testing.T) {
	testCases := []struct {
		name      string
		existing  []dao.Grammar
		create    dao.Grammar
		expectErr error
	}{
		{
			name:   "new grammar",
			create: dao.Grammar{Key: "k1", Rules: []string{"S -> a"}, Policy: "resolve", Tables: []byte{1, 2, 3}, States: 3},
		},
		{
			name:      "duplicate key",
			existing:  []dao.Grammar{{Key: "k1", Rules: []string{"S -> b"}, Policy: "resolve", Tables: []byte{9}}},
			create:    dao.Grammar{Key: "k1", Rules: []string{"S -> a"}, Policy: "resolve", Tables: []byte{1}},
			expectErr: dao.ErrConstraintViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			ctx := context.Background()
			repo := newTestStore(t).Grammars()
			for _, g := range tc.existing {
				_, err := repo.Create(ctx, g)
				if !assert.NoError(err) {
					return
				}
			}

			// execute
			actual, err := repo.Create(ctx, tc.create)

			// assert
			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.NotEqual(uuid.Nil, actual.ID)
			assert.Equal(tc.create.Key, actual.Key)
			assert.Equal(tc.create.Rules, actual.Rules)
			assert.Equal(tc.create.Policy, actual.Policy)
			assert.Equal(tc.create.Tables, actual.Tables)
			assert.Equal(tc.create.States, actual.States)
			assert.False(actual.Created.IsZero())
			assert.False(actual.LastUsed.Before(actual.Created))
		})
	}
}

func Test_Grammars_Lookup(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := newTestStore(t).Grammars()

	first, err := repo.Create(ctx, dao.Grammar{Key: "k1", Rules: []string{"S -> a"}, Policy: "resolve", Tables: []byte{1}})
	if !assert.NoError(err) {
		return
	}
	second, err := repo.Create(ctx, dao.Grammar{Key: "k2", Rules: []string{"S -> C C", "C -> d"}, Policy: "reject-all", Tables: []byte{2}})
	if !assert.NoError(err) {
		return
	}

	byID, err := repo.GetByID(ctx, second.ID)
	assert.NoError(err)
	assert.Equal("k2", byID.Key)
	assert.Equal([]string{"S -> C C", "C -> d"}, byID.Rules)

	byKey, err := repo.GetByKey(ctx, "k1")
	assert.NoError(err)
	assert.Equal(first.ID, byKey.ID)

	all, err := repo.GetAll(ctx)
	assert.NoError(err)
	if assert.Len(all, 2) {
		assert.Equal(first.ID, all[0].ID)
		assert.Equal(second.ID, all[1].ID)
	}

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(err, dao.ErrNotFound)
	_, err = repo.GetByKey(ctx, "nope")
	assert.ErrorIs(err, dao.ErrNotFound)
}

func Test_Grammars_Touch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := newTestStore(t).Grammars()

	created, err := repo.Create(ctx, dao.Grammar{Key: "k1", Rules: []string{"S -> a"}, Policy: "resolve", Tables: []byte{1}})
	if !assert.NoError(err) {
		return
	}

	touched, err := repo.Touch(ctx, created.ID)

	assert.NoError(err)
	assert.Equal(created.ID, touched.ID)
	assert.False(touched.LastUsed.Before(created.LastUsed))

	_, err = repo.Touch(ctx, uuid.New())
	assert.ErrorIs(err, dao.ErrNotFound)
}

func Test_Grammars_Delete(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := newTestStore(t).Grammars()

	created, err := repo.Create(ctx, dao.Grammar{Key: "k1", Rules: []string{"S -> a"}, Policy: "resolve", Tables: []byte{1}})
	if !assert.NoError(err) {
		return
	}

	deleted, err := repo.Delete(ctx, created.ID)
	assert.NoError(err)
	assert.Equal(created.ID, deleted.ID)

	_, err = repo.GetByKey(ctx, "k1")
	assert.ErrorIs(err, dao.ErrNotFound)

	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(err, dao.ErrNotFound)

	// key is free again
	_, err = repo.Create(ctx, dao.Grammar{Key: "k1", Rules: []string{"S -> a"}, Policy: "resolve", Tables: []byte{1}})
	assert.NoError(err)
}
