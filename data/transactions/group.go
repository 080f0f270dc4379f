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

package transactions

import (
	"fmt"

	"github.com/algorand/autooptin/crypto"
)

// GroupID computes the group identifier of an ordered list of transactions.
// Each member is hashed with its Group field cleared.
func GroupID(txgroup []Transaction) crypto.Digest {
	var group TxGroup
	for _, tx := range txgroup {
		tx.Group = crypto.Digest{}
		group.TxGroupHashes = append(group.TxGroupHashes, crypto.Digest(tx.ID()))
	}
	return crypto.HashObj(group)
}

// CheckGroup verifies that every member of a multi-transaction group carries
// the group identifier computed over the whole group. A group of one may
// leave the identifier empty.
func CheckGroup(txgroup []SignedTxnWithAD) error {
	if len(txgroup) == 0 {
		return fmt.Errorf("empty transaction group")
	}
	if len(txgroup) == 1 && txgroup[0].Txn.Group.IsZero() {
		return nil
	}

	txns := make([]Transaction, len(txgroup))
	for i := range txgroup {
		txns[i] = txgroup[i].Txn
	}
	gid := GroupID(txns)
	for i, stxn := range txgroup {
		if stxn.Txn.Group != gid {
			return fmt.Errorf("transaction %d has group %v, expected %v", i, stxn.Txn.Group, gid)
		}
	}
	return nil
}
