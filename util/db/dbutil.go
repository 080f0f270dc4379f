// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

// Package db defines database utility functions.
//
// These functions currently work on a sqlite database.
// Other databases may not work with functions in this package.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/algorand/autooptin/logging"
)

/* database utils */

// busy is the time to wait for a sqlite lock from another process, in ms.
const busy = 1000

// maxRetries bounds how many times a contended transaction is re-run.
const maxRetries = 1000

const warnTxRetries = 1

// SynchronousMode is the sqlite synchronous pragma value.
type SynchronousMode int

// Synchronous modes, matching the sqlite PRAGMA synchronous values.
const (
	SynchronousModeOff    SynchronousMode = 0
	SynchronousModeNormal SynchronousMode = 1
	SynchronousModeFull   SynchronousMode = 2
	SynchronousModeExtra  SynchronousMode = 3
)

// An Accessor manages a sqlite database handle.
type Accessor struct {
	Handle   *sqlx.DB
	readOnly bool
	log      logging.Logger
}

// MakeAccessor creates a new Accessor.
func MakeAccessor(dbfilename string, readOnly bool, inMemory bool) (Accessor, error) {
	var db Accessor
	db.readOnly = readOnly
	db.log = logging.Base()

	var err error
	uri := URI(dbfilename, readOnly, inMemory)
	if !inMemory {
		uri += "&_journal_mode=wal"
	}
	db.Handle, err = sqlx.Open("sqlite3", uri)
	if err != nil {
		return db, err
	}
	return db, db.Handle.Ping()
}

// SetLogger sets the logger used to report slow or retried transactions.
func (db *Accessor) SetLogger(log logging.Logger) {
	db.log = log
}

// SetSynchronousMode updates the synchronous mode of the connection.
func (db Accessor) SetSynchronousMode(ctx context.Context, mode SynchronousMode, fullfsync bool) error {
	if mode < SynchronousModeOff || mode > SynchronousModeExtra {
		return fmt.Errorf("invalid value(%d) was provided to mode", mode)
	}
	_, err := db.Handle.ExecContext(ctx, fmt.Sprintf("PRAGMA synchronous=%d", mode))
	if err != nil {
		return err
	}
	if fullfsync {
		_, err = db.Handle.ExecContext(ctx, "PRAGMA fullfsync=1")
	} else {
		_, err = db.Handle.ExecContext(ctx, "PRAGMA fullfsync=0")
	}
	return err
}

// Close closes the connection.
func (db Accessor) Close() {
	db.Handle.Close()
}

// Retry executes a function repeatedly as long as it returns an error
// that indicates database contention that warrants a retry.
func Retry(fn func() error) (err error) {
	for i := 0; ; i++ {
		if i > 0 && i%warnTxRetries == 0 {
			if i >= maxRetries {
				logging.Base().Errorf("db.Retry: %d retries (last err: %v)", i, err)
				return
			}
			logging.Base().Warnf("db.Retry: %d retries (last err: %v)", i, err)
		}

		err = fn()
		if dbretry(err) {
			continue
		}

		return
	}
}

// Atomic executes a piece of code with respect to the database atomically.
// The transaction is committed when fn returns nil and rolled back otherwise.
func (db Accessor) Atomic(ctx context.Context, fnDescription string, fn idemFn) (err error) {
	descr := "w"
	if db.readOnly {
		descr = "r"
	}

	start := time.Now()
	defer func() {
		delta := time.Since(start)
		if delta > time.Second {
			db.log.With("description", fnDescription).Warnf("dbatomic(%v): tx took %v", descr, delta)
		} else if delta > time.Millisecond {
			db.log.With("description", fnDescription).Debugf("dbatomic(%v): tx took %v", descr, delta)
		}
	}()

	// note that the sql library will drop panics inside an active transaction
	guardedFn := func(tx *sqlx.Tx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				var ok bool
				err, ok = r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
			}
		}()

		err = fn(ctx, tx)
		return
	}

	for i := 0; ; i++ {
		if i > 0 && i%warnTxRetries == 0 {
			if i >= maxRetries {
				db.log.Errorf("dbatomic(%v): %d retries (last err: %v)", descr, i, err)
				return
			}
			db.log.With("description", fnDescription).Warnf("dbatomic(%v): %d retries (last err: %v)", descr, i, err)
		}

		var tx *sqlx.Tx
		tx, err = db.Handle.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: db.readOnly})
		if dbretry(err) {
			continue
		} else if err != nil {
			return
		}

		err = guardedFn(tx)
		if err != nil {
			tx.Rollback()
			if dbretry(err) {
				continue
			}
			return
		}

		err = tx.Commit()
		if err == nil || !dbretry(err) {
			return
		}
	}
}

// URI returns the sqlite URI given a db filename as an input.
func URI(filename string, readOnly bool, memory bool) string {
	uri := fmt.Sprintf("file:%s?_busy_timeout=%d&_synchronous=full", filename, busy)
	if !readOnly {
		uri += "&_txlock=immediate"
	}
	if memory {
		uri += "&mode=memory"
		uri += "&cache=shared"
	}
	return uri
}

// dbretry returns true if the error might be temporary
func dbretry(obj error) bool {
	var err sqlite3.Error
	return errors.As(obj, &err) && (err.Code == sqlite3.ErrLocked || err.Code == sqlite3.ErrBusy)
}

type idemFn func(ctx context.Context, tx *sqlx.Tx) error
