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

package txntest

import (
	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/crypto"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/protocol"
)

// Txn exists to simplify writing tests where transaction.Transaction might be unwieldy.
// Txn simplifies testing in these ways:
// * Provides a flat structure to simplify object construction.
// * Defines convenience methods to help setup test state.
type Txn struct {
	Type protocol.TxType

	Sender     basics.Address
	Fee        interface{} // basics.MicroAlgos, uint64, int, or nil
	FirstValid basics.Round
	LastValid  basics.Round
	Note       []byte
	GenesisID  string
	Group      crypto.Digest

	Receiver         basics.Address
	Amount           uint64
	CloseRemainderTo basics.Address

	ConfigAsset basics.AssetIndex
	AssetParams basics.AssetParams

	XferAsset     basics.AssetIndex
	AssetAmount   uint64
	AssetReceiver basics.Address
	AssetCloseTo  basics.Address

	ApplicationID   basics.AppIndex
	OnCompletion    transactions.OnCompletion
	ApplicationArgs [][]byte
	ForeignAssets   []basics.AssetIndex
	Program         string
}

// internalCopy "finishes" a shallow copy done by a simple Go assignment by
// copying all of the slice fields
func (tx *Txn) internalCopy() {
	tx.Note = append([]byte(nil), tx.Note...)
	if tx.ApplicationArgs != nil {
		tx.ApplicationArgs = append([][]byte(nil), tx.ApplicationArgs...)
		for i := range tx.ApplicationArgs {
			tx.ApplicationArgs[i] = append([]byte(nil), tx.ApplicationArgs[i]...)
		}
	}
	tx.ForeignAssets = append([]basics.AssetIndex(nil), tx.ForeignAssets...)
}

// Noted returns a new Txn with the given note field.
func (tx Txn) Noted(note string) *Txn {
	tx.internalCopy()
	tx.Note = []byte(note)
	return &tx
}

// Args returns a new Txn with the given strings as app args
func (tx Txn) Args(strings ...string) *Txn {
	tx.internalCopy()
	bytes := make([][]byte, len(strings))
	for i, s := range strings {
		bytes[i] = []byte(s)
	}
	tx.ApplicationArgs = bytes
	return &tx
}

// FillDefaults populates some obvious defaults from config params,
// unless they have already been set.
func (tx *Txn) FillDefaults(params config.ConsensusParams) {
	if tx.Fee == nil {
		tx.Fee = params.MinTxnFee
	}
	if tx.LastValid == 0 {
		tx.LastValid = tx.FirstValid + basics.Round(params.MaxTxnLife)
	}

	if tx.Type == protocol.ApplicationCallTx && tx.ApplicationID == 0 && tx.Program == "" {
		tx.Program = logic.AutoOptInProgramName
	}
}

// Txn produces a transactions.Transaction from the fields in this Txn
func (tx Txn) Txn() transactions.Transaction {
	var fee basics.MicroAlgos
	switch f := tx.Fee.(type) {
	case basics.MicroAlgos:
		fee = f
	case uint64:
		fee = basics.MicroAlgos{Raw: f}
	case int:
		if f >= 0 {
			fee = basics.MicroAlgos{Raw: uint64(f)}
		}
	}

	return transactions.Transaction{
		Type: tx.Type,
		Header: transactions.Header{
			Sender:     tx.Sender,
			Fee:        fee,
			FirstValid: tx.FirstValid,
			LastValid:  tx.LastValid,
			Note:       tx.Note,
			GenesisID:  tx.GenesisID,
			Group:      tx.Group,
		},
		PaymentTxnFields: transactions.PaymentTxnFields{
			Receiver:         tx.Receiver,
			Amount:           basics.MicroAlgos{Raw: tx.Amount},
			CloseRemainderTo: tx.CloseRemainderTo,
		},
		AssetConfigTxnFields: transactions.AssetConfigTxnFields{
			ConfigAsset: tx.ConfigAsset,
			AssetParams: tx.AssetParams,
		},
		AssetTransferTxnFields: transactions.AssetTransferTxnFields{
			XferAsset:     tx.XferAsset,
			AssetAmount:   tx.AssetAmount,
			AssetReceiver: tx.AssetReceiver,
			AssetCloseTo:  tx.AssetCloseTo,
		},
		ApplicationCallTxnFields: transactions.ApplicationCallTxnFields{
			ApplicationID:   tx.ApplicationID,
			OnCompletion:    tx.OnCompletion,
			ApplicationArgs: tx.ApplicationArgs,
			ForeignAssets:   tx.ForeignAssets,
			Program:         tx.Program,
		},
	}
}

// SignedTxn produces a transactions.SignedTxn from the fields in this Txn.
// This seemingly pointless operation exists, again, for convenience when
// driving tests.
func (tx Txn) SignedTxn() transactions.SignedTxn {
	return transactions.SignedTxn{Txn: tx.Txn()}
}

// SignedTxnWithAD produces transactions.SignedTxnWithAD from the fields in
// this Txn.
func (tx Txn) SignedTxnWithAD() transactions.SignedTxnWithAD {
	return transactions.SignedTxnWithAD{SignedTxn: tx.SignedTxn()}
}

// Group turns a list of Txns into a slice of SignedTxns with
// GroupIDs set properly to make them a transaction group. The input
// Txns are modified with the calculated GroupID.
func Group(txns ...*Txn) []transactions.SignedTxn {
	plain := make([]transactions.Transaction, len(txns))
	for i, txn := range txns {
		plain[i] = txn.Txn()
	}
	group := transactions.GroupID(plain)

	stxns := make([]transactions.SignedTxn, len(txns))
	for i, txn := range txns {
		txn.Group = group
		stxns[i] = txn.SignedTxn()
	}
	return stxns
}
