package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/clrviz/server/dao"
	"github.com/google/uuid"
)

type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		cache_key TEXT NOT NULL UNIQUE,
		rules TEXT NOT NULL,
		policy TEXT NOT NULL,
		tables BLOB NOT NULL,
		states INTEGER NOT NULL,
		conflicts INTEGER NOT NULL,
		created INTEGER NOT NULL,
		last_used INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *GrammarsDB) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.PrepareContext(ctx, `INSERT INTO grammars (id, cache_key, rules, policy, tables, states, conflicts, created, last_used) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		g.Key,
		convertToDB_Rules(g.Rules),
		g.Policy,
		g.Tables,
		g.States,
		g.Conflicts,
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, cache_key, rules, policy, tables, states, conflicts, created, last_used FROM grammars ORDER BY created, rowid;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Grammar

	for rows.Next() {
		g, err := scanGrammar(rows)
		if err != nil {
			return all, err
		}
		all = append(all, g)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, cache_key, rules, policy, tables, states, conflicts, created, last_used FROM grammars WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return scanGrammar(row)
}

func (repo *GrammarsDB) GetByKey(ctx context.Context, key string) (dao.Grammar, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, cache_key, rules, policy, tables, states, conflicts, created, last_used FROM grammars WHERE cache_key = ?;`,
		key,
	)
	return scanGrammar(row)
}

func (repo *GrammarsDB) Touch(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE grammars SET last_used=? WHERE id=?;`,
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, id)
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGrammar(row scanner) (dao.Grammar, error) {
	var g dao.Grammar
	var id string
	var rules string
	var created int64
	var lastUsed int64

	err := row.Scan(
		&id,
		&g.Key,
		&rules,
		&g.Policy,
		&g.Tables,
		&g.States,
		&g.Conflicts,
		&created,
		&lastUsed,
	)
	if err != nil {
		return g, wrapDBError(err)
	}

	err = convertFromDB_UUID(id, &g.ID)
	if err != nil {
		return g, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	err = convertFromDB_Rules(rules, &g.Rules)
	if err != nil {
		return g, fmt.Errorf("stored rules are invalid: %w", err)
	}
	err = convertFromDB_Time(created, &g.Created)
	if err != nil {
		return g, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	err = convertFromDB_Time(lastUsed, &g.LastUsed)
	if err != nil {
		return g, fmt.Errorf("stored last_used time %d is invalid: %w", lastUsed, err)
	}

	return g, nil
}
