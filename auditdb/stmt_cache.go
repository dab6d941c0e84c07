// Copyright (c) 2020 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auditdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// stmtCache keeps prepared statements by query. Filter queries come in a
// fixed set of shapes, so the cache stays small.
type stmtCache struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, stmts: make(map[string]*sql.Stmt)}
}

// prepare must not be called while holding the connection, e.g. inside a
// transaction, since preparing needs it too.
func (sc *stmtCache) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt, ok := sc.stmts[query]; ok {
		return stmt, nil
	}
	stmt, err := sc.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "prepare %q", query)
	}
	sc.stmts[query] = stmt
	return stmt, nil
}

func (sc *stmtCache) len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.stmts)
}

func (sc *stmtCache) close() (err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for query, stmt := range sc.stmts {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(sc.stmts, query)
	}
	return err
}
