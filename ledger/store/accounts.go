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
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/protocol"
)

// ModifiedCreatable records the creation or deletion of an asset or
// application in a round.
type ModifiedCreatable struct {
	Ctype   basics.CreatableType
	Created bool
	Creator basics.Address
}

// RoundDelta is everything a committed round changes.
type RoundDelta struct {
	Round      basics.Round
	TxnCounter uint64

	// Accounts holds the new state of every account the round touched.
	// An account whose new state is empty is removed.
	Accounts   map[basics.Address]basics.AccountData
	Creatables map[basics.CreatableIndex]ModifiedCreatable
	Txns       []transactions.SignedTxnWithAD
}

// TxnRecord is a committed transaction and where it was committed.
type TxnRecord struct {
	Round basics.Round
	Intra int
	Txn   transactions.SignedTxnWithAD
}

type txnRow struct {
	Rnd   uint64 `db:"rnd"`
	Intra int    `db:"intra"`
	Data  []byte `db:"data"`
}

func (row txnRow) record() (TxnRecord, error) {
	rec := TxnRecord{Round: basics.Round(row.Rnd), Intra: row.Intra}
	err := protocol.Decode(row.Data, &rec.Txn)
	return rec, err
}

type creatorRow struct {
	Ctype   uint64 `db:"ctype"`
	Creator []byte `db:"creator"`
}

// AccountsRound returns the round the database reflects.
func AccountsRound(ctx context.Context, q sqlx.QueryerContext) (rnd basics.Round, err error) {
	err = sqlx.GetContext(ctx, q, &rnd, "SELECT rnd FROM acctrounds WHERE id=?", roundID)
	return
}

// TxnCounter returns the number of transactions applied so far.
func TxnCounter(ctx context.Context, q sqlx.QueryerContext) (counter uint64, err error) {
	err = sqlx.GetContext(ctx, q, &counter, "SELECT rnd FROM acctrounds WHERE id=?", counterID)
	return
}

// LookupAccount returns the data of an account. An unknown account has
// empty data.
func LookupAccount(ctx context.Context, q sqlx.QueryerContext, addr basics.Address) (data basics.AccountData, err error) {
	var buf []byte
	err = sqlx.GetContext(ctx, q, &buf, "SELECT data FROM accountbase WHERE address=?", addr[:])
	if errors.Is(err, sql.ErrNoRows) {
		return basics.AccountData{}, nil
	}
	if err != nil {
		return
	}
	err = protocol.Decode(buf, &data)
	return
}

// LookupCreator returns the account that holds the parameters of a live
// creatable of the given type.
func LookupCreator(ctx context.Context, q sqlx.QueryerContext, cidx basics.CreatableIndex, ctype basics.CreatableType) (creator basics.Address, ok bool, err error) {
	var row creatorRow
	err = sqlx.GetContext(ctx, q, &row, "SELECT ctype, creator FROM creatables WHERE creatable=?", uint64(cidx))
	if errors.Is(err, sql.ErrNoRows) {
		return basics.Address{}, false, nil
	}
	if err != nil {
		return
	}
	if basics.CreatableType(row.Ctype) != ctype {
		return basics.Address{}, false, nil
	}
	if len(row.Creator) != len(creator) {
		return basics.Address{}, false, fmt.Errorf("creatable %d: stored creator has %d bytes", cidx, len(row.Creator))
	}
	copy(creator[:], row.Creator)
	return creator, true, nil
}

// LookupTxn returns a committed top-level transaction by id.
func LookupTxn(ctx context.Context, q sqlx.QueryerContext, txid transactions.Txid) (rec TxnRecord, ok bool, err error) {
	var row txnRow
	err = sqlx.GetContext(ctx, q, &row, "SELECT rnd, intra, data FROM txns WHERE txid=?", txid[:])
	if errors.Is(err, sql.ErrNoRows) {
		return TxnRecord{}, false, nil
	}
	if err != nil {
		return
	}
	rec, err = row.record()
	return rec, err == nil, err
}

// RoundTxns returns the transactions committed in a round, in order.
func RoundTxns(ctx context.Context, q sqlx.QueryerContext, rnd basics.Round) ([]TxnRecord, error) {
	var rows []txnRow
	err := sqlx.SelectContext(ctx, q, &rows, "SELECT rnd, intra, data FROM txns WHERE rnd=? ORDER BY intra", uint64(rnd))
	if err != nil {
		return nil, err
	}
	res := make([]TxnRecord, len(rows))
	for i, row := range rows {
		res[i], err = row.record()
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// CommitRound writes delta and advances the database to delta.Round. The
// round must directly follow the one the database reflects.
func CommitRound(ctx context.Context, tx *sqlx.Tx, delta RoundDelta) error {
	base, err := AccountsRound(ctx, tx)
	if err != nil {
		return err
	}
	if delta.Round != base+1 {
		return fmt.Errorf("round %d does not follow database round %d", delta.Round, base)
	}

	for addr, data := range delta.Accounts {
		if data.IsZero() {
			_, err = tx.ExecContext(ctx, "DELETE FROM accountbase WHERE address=?", addr[:])
		} else {
			_, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO accountbase (address, data) VALUES (?, ?)",
				addr[:], protocol.Encode(&data))
		}
		if err != nil {
			return fmt.Errorf("account %v: %w", addr, err)
		}
	}

	for cidx, mc := range delta.Creatables {
		if mc.Created {
			err = insertCreatable(ctx, tx, cidx, mc.Ctype, mc.Creator)
		} else {
			_, err = tx.ExecContext(ctx, "DELETE FROM creatables WHERE creatable=? AND ctype=?",
				uint64(cidx), uint64(mc.Ctype))
		}
		if err != nil {
			return err
		}
	}

	for intra, stxn := range delta.Txns {
		txid := stxn.ID()
		_, err = tx.ExecContext(ctx, "INSERT INTO txns (txid, rnd, intra, data) VALUES (?, ?, ?, ?)",
			txid[:], uint64(delta.Round), intra, protocol.Encode(&stxn))
		if err != nil {
			return fmt.Errorf("txn %v: %w", txid, err)
		}
	}

	_, err = tx.ExecContext(ctx, "UPDATE acctrounds SET rnd=? WHERE id=?", uint64(delta.Round), roundID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE acctrounds SET rnd=? WHERE id=?", delta.TxnCounter, counterID)
	return err
}
