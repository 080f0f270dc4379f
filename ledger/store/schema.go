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

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/protocol"
)

// accountsSchema is the schema of the ledger database.
//
// acctrounds holds two singleton rows: 'acctbase' is the round the
// database reflects and 'txncounter' is the number of transactions applied
// so far, which seeds new asset and application indices.
//
// creatables maps every live asset or application index to the account
// that holds its parameters.
//
// txns holds every committed transaction, inner transactions included in
// their parent's apply data, keyed by txid.
var accountsSchema = []string{
	`CREATE TABLE IF NOT EXISTS acctrounds (
		id string primary key,
		rnd integer)`,
	`CREATE TABLE IF NOT EXISTS accountbase (
		address blob primary key,
		data blob)`,
	`CREATE TABLE IF NOT EXISTS creatables (
		creatable integer primary key,
		ctype integer,
		creator blob)`,
	`CREATE TABLE IF NOT EXISTS txns (
		txid blob primary key,
		rnd integer,
		intra integer,
		data blob)`,
	`CREATE INDEX IF NOT EXISTS txns_rnd_idx ON txns (rnd, intra)`,
}

const (
	roundID   = "acctbase"
	counterID = "txncounter"
)

// AccountsInit creates the ledger tables and, if the database is new,
// fills it with initAccounts at round 0. It reports whether the database
// was initialized by this call.
func AccountsInit(ctx context.Context, tx *sqlx.Tx, initAccounts map[basics.Address]basics.AccountData) (newDatabase bool, err error) {
	for _, tableCreate := range accountsSchema {
		_, err = tx.ExecContext(ctx, tableCreate)
		if err != nil {
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO acctrounds (id, rnd) VALUES (?, 0)", roundID)
	if err != nil {
		var serr sqlite3.Error
		// a constraint violation means the database was initialized before
		if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
			return false, nil
		}
		return false, err
	}

	var counter uint64
	for addr, data := range initAccounts {
		if data.IsZero() {
			continue
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO accountbase (address, data) VALUES (?, ?)",
			addr[:], protocol.Encode(&data))
		if err != nil {
			return false, err
		}

		for aidx := range data.AssetParams {
			counter = max(counter, uint64(aidx))
			err = insertCreatable(ctx, tx, basics.CreatableIndex(aidx), basics.AssetCreatable, addr)
			if err != nil {
				return false, err
			}
		}
		for aidx := range data.AppParams {
			counter = max(counter, uint64(aidx))
			err = insertCreatable(ctx, tx, basics.CreatableIndex(aidx), basics.AppCreatable, addr)
			if err != nil {
				return false, err
			}
		}
	}

	// new indices must not collide with creatables present at genesis
	_, err = tx.ExecContext(ctx, "INSERT INTO acctrounds (id, rnd) VALUES (?, ?)", counterID, counter)
	if err != nil {
		return false, err
	}

	return true, nil
}

func insertCreatable(ctx context.Context, e sqlx.ExecerContext, cidx basics.CreatableIndex, ctype basics.CreatableType, creator basics.Address) error {
	_, err := e.ExecContext(ctx, "INSERT INTO creatables (creatable, ctype, creator) VALUES (?, ?, ?)",
		uint64(cidx), uint64(ctype), creator[:])
	if err != nil {
		return fmt.Errorf("creatable %d: %w", cidx, err)
	}
	return nil
}
