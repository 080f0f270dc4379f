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

package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/algorand/autooptin/logging"
	"github.com/algorand/autooptin/test/partitiontest"
)

func TestInMemoryUniqueDB(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc, err := MakeAccessor("fn.db", false, true)
	require.NoError(t, err)
	defer acc.Close()
	acc.SetLogger(logging.TestingLog(t))

	ctx := context.Background()
	err = acc.Atomic(ctx, "create", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "CREATE TABLE tb (id INT)")
		return err
	})
	require.NoError(t, err)

	acc2, err := MakeAccessor("fn2.db", false, true)
	require.NoError(t, err)
	defer acc2.Close()

	var n int
	err = acc2.Handle.GetContext(ctx, &n, "SELECT count(*) FROM sqlite_master WHERE name='tb'")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAtomicRollback(t *testing.T) {
	partitiontest.PartitionTest(t)

	acc, err := MakeAccessor(filepath.Join(t.TempDir(), "atomic.sqlite"), false, false)
	require.NoError(t, err)
	defer acc.Close()

	ctx := context.Background()
	require.NoError(t, acc.SetSynchronousMode(ctx, SynchronousModeNormal, false))
	require.Error(t, acc.SetSynchronousMode(ctx, SynchronousMode(9), false))

	require.NoError(t, acc.Atomic(ctx, "create", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v INTEGER)")
		return err
	}))

	boom := errors.New("boom")
	err = acc.Atomic(ctx, "insert then fail", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES ('a', 1)"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = acc.Atomic(ctx, "panic", func(ctx context.Context, tx *sqlx.Tx) error {
		tx.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES ('b', 2)")
		panic("oops")
	})
	require.ErrorContains(t, err, "oops")

	var count int
	require.NoError(t, acc.Handle.GetContext(ctx, &count, "SELECT count(*) FROM kv"))
	require.Zero(t, count)
}

func TestRetry(t *testing.T) {
	partitiontest.PartitionTest(t)

	calls := 0
	err := Retry(func() error {
		calls++
		if calls < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	err = Retry(func() error { return fmt.Errorf("permanent") })
	require.Error(t, err)
	require.False(t, dbretry(err))
	require.True(t, dbretry(fmt.Errorf("wrapped: %w", sqlite3.Error{Code: sqlite3.ErrLocked})))
}
