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
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/txntest"
	ledgertesting "github.com/algorand/autooptin/ledger/testing"
	"github.com/algorand/autooptin/logging"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/test/partitiontest"
	"github.com/algorand/autooptin/util/db"
)

var allowAllUnexported = cmp.Exporter(func(f reflect.Type) bool { return true })

func dbOpenTest(t *testing.T) db.Accessor {
	fn := strings.ReplaceAll(t.Name(), "/", "_") + ".sqlite"
	acc, err := db.MakeAccessor(fn, false, true)
	require.NoError(t, err)
	acc.SetLogger(logging.TestingLog(t))
	t.Cleanup(acc.Close)
	return acc
}

func initTestDB(t *testing.T, acc db.Accessor, accts map[basics.Address]basics.AccountData) bool {
	var newDatabase bool
	err := acc.Atomic(context.Background(), "init", func(ctx context.Context, tx *sqlx.Tx) (err error) {
		newDatabase, err = AccountsInit(ctx, tx, accts)
		return
	})
	require.NoError(t, err)
	return newDatabase
}

func TestAccountsInit(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc := dbOpenTest(t)
	accts := ledgertesting.RandomAccounts(20)
	require.True(t, initTestDB(t, acc, accts))

	ctx := context.Background()
	rnd, err := AccountsRound(ctx, acc.Handle)
	require.NoError(t, err)
	require.Zero(t, rnd)

	for addr, data := range accts {
		got, err := LookupAccount(ctx, acc.Handle, addr)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}

	got, err := LookupAccount(ctx, acc.Handle, ledgertesting.RandomAddress())
	require.NoError(t, err)
	require.True(t, got.IsZero())

	// initializing again keeps the existing state
	require.False(t, initTestDB(t, acc, map[basics.Address]basics.AccountData{}))
	for addr := range accts {
		got, err := LookupAccount(ctx, acc.Handle, addr)
		require.NoError(t, err)
		require.Equal(t, accts[addr], got)
	}
}

func TestAccountsInitCreatables(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc := dbOpenTest(t)
	creator := ledgertesting.RandomAddress()
	accts := map[basics.Address]basics.AccountData{
		creator: {
			MicroAlgos:  basics.MicroAlgos{Raw: 1_000_000},
			AssetParams: map[basics.AssetIndex]basics.AssetParams{5: {Total: 10}},
			AppParams:   map[basics.AppIndex]basics.AppParams{9: {Program: "approve"}},
		},
	}
	initTestDB(t, acc, accts)

	ctx := context.Background()
	got, ok, err := LookupCreator(ctx, acc.Handle, 5, basics.AssetCreatable)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, creator, got)

	_, ok, err = LookupCreator(ctx, acc.Handle, 5, basics.AppCreatable)
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err = LookupCreator(ctx, acc.Handle, 9, basics.AppCreatable)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, creator, got)

	_, ok, err = LookupCreator(ctx, acc.Handle, 77, basics.AssetCreatable)
	require.NoError(t, err)
	require.False(t, ok)

	counter, err := TxnCounter(ctx, acc.Handle)
	require.NoError(t, err)
	require.EqualValues(t, 9, counter)
}

func TestCommitRound(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc := dbOpenTest(t)
	a := ledgertesting.RandomAddress()
	b := ledgertesting.RandomAddress()
	initTestDB(t, acc, map[basics.Address]basics.AccountData{
		a: {MicroAlgos: basics.MicroAlgos{Raw: 5_000_000}},
		b: {MicroAlgos: basics.MicroAlgos{Raw: 1_000_000}},
	})

	pay := txntest.Txn{
		Type:      protocol.PaymentTx,
		Sender:    a,
		Receiver:  b,
		Amount:    1_000_000,
		Fee:       1000,
		LastValid: 1000,
	}
	create := txntest.Txn{
		Type:        protocol.AssetConfigTx,
		Sender:      a,
		AssetParams: basics.AssetParams{Total: 100},
		Fee:         1000,
		LastValid:   1000,
	}
	stxns := []transactions.SignedTxnWithAD{pay.SignedTxnWithAD(), create.SignedTxnWithAD()}
	stxns[1].ConfigAsset = 2

	delta := RoundDelta{
		Round:      1,
		TxnCounter: 2,
		Accounts: map[basics.Address]basics.AccountData{
			a: {
				MicroAlgos:  basics.MicroAlgos{Raw: 3_998_000},
				AssetParams: map[basics.AssetIndex]basics.AssetParams{2: {Total: 100}},
				Assets:      map[basics.AssetIndex]basics.AssetHolding{2: {Amount: 100}},
			},
			b: {MicroAlgos: basics.MicroAlgos{Raw: 2_000_000}},
		},
		Creatables: map[basics.CreatableIndex]ModifiedCreatable{
			2: {Ctype: basics.AssetCreatable, Created: true, Creator: a},
		},
		Txns: stxns,
	}

	ctx := context.Background()
	err := acc.Atomic(ctx, "commit", func(ctx context.Context, tx *sqlx.Tx) error {
		return CommitRound(ctx, tx, delta)
	})
	require.NoError(t, err)

	rnd, err := AccountsRound(ctx, acc.Handle)
	require.NoError(t, err)
	require.EqualValues(t, 1, rnd)

	counter, err := TxnCounter(ctx, acc.Handle)
	require.NoError(t, err)
	require.EqualValues(t, 2, counter)

	for addr, data := range delta.Accounts {
		got, err := LookupAccount(ctx, acc.Handle, addr)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}

	creator, ok, err := LookupCreator(ctx, acc.Handle, 2, basics.AssetCreatable)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, a, creator)

	rec, ok, err := LookupTxn(ctx, acc.Handle, stxns[1].ID())
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, rec.Round)
	require.Equal(t, 1, rec.Intra)
	require.Equal(t, stxns[1], rec.Txn)

	_, ok, err = LookupTxn(ctx, acc.Handle, transactions.Txid{})
	require.NoError(t, err)
	require.False(t, ok)

	recs, err := RoundTxns(ctx, acc.Handle, 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for i, rec := range recs {
		require.Equal(t, i, rec.Intra)
		require.Empty(t, cmp.Diff(stxns[i], rec.Txn, allowAllUnexported))
	}

	recs, err = RoundTxns(ctx, acc.Handle, 2)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestCommitRoundRemovesEmptyAccounts(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc := dbOpenTest(t)
	a := ledgertesting.RandomAddress()
	initTestDB(t, acc, map[basics.Address]basics.AccountData{
		a: {
			MicroAlgos:  basics.MicroAlgos{Raw: 5_000_000},
			AssetParams: map[basics.AssetIndex]basics.AssetParams{3: {Total: 1}},
		},
	})

	ctx := context.Background()
	err := acc.Atomic(ctx, "commit", func(ctx context.Context, tx *sqlx.Tx) error {
		return CommitRound(ctx, tx, RoundDelta{
			Round:    1,
			Accounts: map[basics.Address]basics.AccountData{a: {}},
			Creatables: map[basics.CreatableIndex]ModifiedCreatable{
				3: {Ctype: basics.AssetCreatable, Creator: a},
			},
		})
	})
	require.NoError(t, err)

	var n int
	err = acc.Handle.GetContext(ctx, &n, "SELECT count(*) FROM accountbase")
	require.NoError(t, err)
	require.Zero(t, n)

	_, ok, err := LookupCreator(ctx, acc.Handle, 3, basics.AssetCreatable)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCommitRoundOutOfOrder(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc := dbOpenTest(t)
	a := ledgertesting.RandomAddress()
	initTestDB(t, acc, map[basics.Address]basics.AccountData{
		a: {MicroAlgos: basics.MicroAlgos{Raw: 5_000_000}},
	})

	ctx := context.Background()
	err := acc.Atomic(ctx, "commit", func(ctx context.Context, tx *sqlx.Tx) error {
		return CommitRound(ctx, tx, RoundDelta{
			Round:    2,
			Accounts: map[basics.Address]basics.AccountData{a: {MicroAlgos: basics.MicroAlgos{Raw: 1}}},
		})
	})
	require.ErrorContains(t, err, "does not follow")

	// the failed commit left nothing behind
	got, err := LookupAccount(ctx, acc.Handle, a)
	require.NoError(t, err)
	require.EqualValues(t, 5_000_000, got.MicroAlgos.Raw)
}
