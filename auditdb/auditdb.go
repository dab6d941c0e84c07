// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auditdb persists storage audit records in SQLite.
package auditdb

import (
	"context"
	"database/sql"

	"github.com/ethereum/go-ethereum/log"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/thor"
)

var logger = log.New("pkg", "auditdb")

const insertRecord = "INSERT INTO audit(caller, contract, slot, byteOffset, byteLength, oldValue, newValue) VALUES (?, ?, ?, ?, ?, ?, ?)"

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Filter selects audit records. Nil fields match everything.
type Filter struct {
	Caller   *thor.Address
	Contract *thor.Address
	Slot     *thor.Bytes32
	Order    Order // default asc
	Offset   uint64
	Limit    uint64 // 0 for no limit
}

// Entry is a stored audit record with its sequence number.
type Entry struct {
	Seq uint64
	gate.Record
}

type AuditDB struct {
	path      string
	db        *sql.DB
	stmtCache *stmtCache
}

var _ gate.Sink = (*AuditDB)(nil)

// New creates or opens the audit db at the given path.
func New(path string) (auditDB *AuditDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if auditDB == nil {
			db.Close()
		}
	}()
	// an in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(auditTableSchema); err != nil {
		return nil, errors.Wrap(err, "create audit schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("audit db opened", "path", path, "sqlite", driverVer)
	return &AuditDB{
		path:      path,
		db:        db,
		stmtCache: newStmtCache(db),
	}, nil
}

// NewMem creates an audit db in ram.
func NewMem() (*AuditDB, error) {
	return New(":memory:")
}

func (db *AuditDB) Path() string {
	return db.path
}

func (db *AuditDB) Close() error {
	err := db.stmtCache.close()
	if cerr := db.db.Close(); cerr != nil {
		return cerr
	}
	return err
}

// Audit implements gate.Sink. Records that cannot be stored are logged.
func (db *AuditDB) Audit(rec gate.Record) {
	if err := db.Insert(context.Background(), rec); err != nil {
		logger.Error("failed to store audit record", "contract", rec.Contract, "slot", rec.Slot, "err", err)
	}
}

// Insert stores records in one transaction.
func (db *AuditDB) Insert(ctx context.Context, recs ...gate.Record) error {
	// prepared outside the transaction, which holds the only connection
	stmt, err := db.stmtCache.prepare(ctx, insertRecord)
	if err != nil {
		return err
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txStmt := tx.StmtContext(ctx, stmt)
	for _, r := range recs {
		if _, err := txStmt.ExecContext(ctx,
			r.Caller.Bytes(),
			r.Contract.Bytes(),
			r.Slot.Bytes(),
			r.Offset,
			r.Length,
			r.Old.Bytes(),
			r.New.Bytes(),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter returns the records matching the filter in insertion order.
func (db *AuditDB) Filter(ctx context.Context, filter *Filter) ([]*Entry, error) {
	if filter == nil {
		filter = &Filter{}
	}
	var args []any
	stmt := "SELECT seq, caller, contract, slot, byteOffset, byteLength, oldValue, newValue FROM audit WHERE 1"
	if filter.Caller != nil {
		args = append(args, filter.Caller.Bytes())
		stmt += " AND caller = ?"
	}
	if filter.Contract != nil {
		args = append(args, filter.Contract.Bytes())
		stmt += " AND contract = ?"
	}
	if filter.Slot != nil {
		args = append(args, filter.Slot.Bytes())
		stmt += " AND slot = ?"
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	switch {
	case filter.Limit > 0:
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Offset, filter.Limit)
	case filter.Offset > 0:
		// sqlite takes an offset only with a limit; -1 is none
		stmt += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	prepared, err := db.stmtCache.prepare(ctx, stmt)
	if err != nil {
		return nil, err
	}
	rows, err := prepared.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e                                  Entry
			caller, contract, slot, old, value []byte
		)
		if err := rows.Scan(&e.Seq, &caller, &contract, &slot, &e.Offset, &e.Length, &old, &value); err != nil {
			return nil, err
		}
		e.Caller = thor.BytesToAddress(caller)
		e.Contract = thor.BytesToAddress(contract)
		e.Slot = thor.BytesToBytes32(slot)
		e.Old = thor.BytesToBytes32(old)
		e.New = thor.BytesToBytes32(value)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
