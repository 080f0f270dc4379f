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

package ledger

import (
	"errors"
	"fmt"

	"github.com/algorand/autooptin/data/transactions"
)

// ErrEmptyGroup is returned when a group with no transactions is submitted.
var ErrEmptyGroup = errors.New("empty transaction group")

// TransactionInLedgerError is returned when a transaction cannot be added because it has already been committed
type TransactionInLedgerError struct {
	Txid transactions.Txid
}

// Error satisfies builtin interface `error`
func (tile TransactionInLedgerError) Error() string {
	return fmt.Sprintf("transaction already in ledger: %v", tile.Txid)
}

// GroupRejectedError is returned when a transaction group is not committed.
// Index is the position of the member that failed, or -1 when the group
// as a whole is invalid.
type GroupRejectedError struct {
	Index int
	Err   error
}

func (e *GroupRejectedError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("group rejected: %v", e.Err)
	}
	return fmt.Sprintf("group rejected at transaction %d: %v", e.Index, e.Err)
}

// Unwrap returns the error that caused the rejection.
func (e *GroupRejectedError) Unwrap() error {
	return e.Err
}
