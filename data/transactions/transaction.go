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
	"encoding/binary"
	"fmt"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/crypto"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/protocol"
)

// Txid is a hash used to uniquely identify individual transactions
type Txid crypto.Digest

// String converts txid to a pretty-printable string
func (txid Txid) String() string {
	return fmt.Sprintf("%v", crypto.Digest(txid))
}

// FromString initializes the Txid from a string
func (txid *Txid) FromString(text string) error {
	d, err := crypto.DigestFromString(text)
	*txid = Txid(d)
	return err
}

// SpecialAddresses holds addresses with nonstandard properties.
type SpecialAddresses struct {
	FeeSink     basics.Address
	RewardsPool basics.Address
}

// Header captures the fields common to every transaction type.
type Header struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Sender     basics.Address    `codec:"snd"`
	Fee        basics.MicroAlgos `codec:"fee"`
	FirstValid basics.Round      `codec:"fv"`
	LastValid  basics.Round      `codec:"lv"`
	Note       []byte            `codec:"note"` // Uniqueness or app-level data about txn
	GenesisID  string            `codec:"gen"`

	// Group specifies that this transaction is part of a
	// transaction group (and, if so, specifies the hash
	// of a TxGroup).
	Group crypto.Digest `codec:"grp"`
}

// Transaction describes a transaction that can appear in the ledger.
type Transaction struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Type of transaction
	Type protocol.TxType `codec:"type"`

	// Common fields for all types of transactions
	Header

	// Fields for different types of transactions
	PaymentTxnFields
	AssetConfigTxnFields
	AssetTransferTxnFields
	ApplicationCallTxnFields
}

// ApplyData contains information about the transaction's execution.
type ApplyData struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Closing amount for transaction.
	ClosingAmount basics.MicroAlgos `codec:"ca"`

	// Closing amount for asset transaction.
	AssetClosingAmount uint64 `codec:"aca"`

	EvalDelta EvalDelta `codec:"dt"`

	// If asa or app is being created, the id used. Else 0.
	ConfigAsset   basics.AssetIndex `codec:"caid"`
	ApplicationID basics.AppIndex   `codec:"apid"`
}

// TxGroup describes a group of transactions that must appear
// together in a specific order.
type TxGroup struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// TxGroupHashes specifies a list of hashes of transactions that must appear
	// together, sequentially, in order for the group to be valid.  Each hash
	// in the list is a hash of a transaction with the `Group` field omitted.
	TxGroupHashes []crypto.Digest `codec:"txlist"`
}

// ToBeHashed implements the crypto.Hashable interface.
func (tg TxGroup) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.TxGroup, protocol.Encode(&tg)
}

// ToBeHashed implements the crypto.Hashable interface.
func (tx Transaction) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Transaction, protocol.Encode(&tx)
}

// ID returns the Txid (i.e., hash) of the transaction.
func (tx Transaction) ID() Txid {
	return Txid(crypto.HashObj(tx))
}

// InnerID returns something akin to Txid, but folds in the parent Txid and the
// index of the inner call.
func (tx Transaction) InnerID(parent Txid, index int) Txid {
	input := append([]byte(protocol.Transaction), parent[:]...)
	var indexBuf [8]byte
	binary.BigEndian.PutUint64(indexBuf[:], uint64(index))
	input = append(input, indexBuf[:]...)
	input = append(input, protocol.Encode(&tx)...)
	return Txid(crypto.Hash(input))
}

// Src returns the address that posted the transaction.
// This is the account that pays the associated Fee.
func (tx Header) Src() basics.Address {
	return tx.Sender
}

// TxFee returns the fee associated with this transaction.
func (tx Header) TxFee() basics.MicroAlgos {
	return tx.Fee
}

// Alive checks that the txn is valid in round rnd.
func (tx Header) Alive(rnd basics.Round) error {
	if rnd < tx.FirstValid || rnd > tx.LastValid {
		return &TxnDeadError{
			Round:      rnd,
			FirstValid: tx.FirstValid,
			LastValid:  tx.LastValid,
		}
	}
	return nil
}

// MatchAddress checks if the transaction touches a given address.  The feesink
// and rewards pool are not considered matches.
func (tx Transaction) MatchAddress(addr basics.Address) bool {
	if addr == tx.Sender {
		return true
	}

	switch tx.Type {
	case protocol.PaymentTx:
		if addr == tx.PaymentTxnFields.Receiver {
			return true
		}
		if !tx.PaymentTxnFields.CloseRemainderTo.IsZero() &&
			addr == tx.PaymentTxnFields.CloseRemainderTo {
			return true
		}
	case protocol.AssetTransferTx:
		if addr == tx.AssetTransferTxnFields.AssetReceiver {
			return true
		}
		if !tx.AssetTransferTxnFields.AssetCloseTo.IsZero() &&
			addr == tx.AssetTransferTxnFields.AssetCloseTo {
			return true
		}
	}
	return false
}

// WellFormed checks that the transaction looks reasonable on its own (but not
// necessarily valid against the actual ledger).
func (tx Transaction) WellFormed(spec SpecialAddresses, proto config.ConsensusParams) error {
	switch tx.Type {
	case protocol.PaymentTx:
		err := tx.PaymentTxnFields.wellFormed(tx.Header, spec, proto)
		if err != nil {
			return err
		}

	case protocol.AssetConfigTx:
		if !proto.Asset {
			return fmt.Errorf("asset transaction not supported")
		}

		err := tx.AssetConfigTxnFields.wellFormed(proto)
		if err != nil {
			return err
		}

	case protocol.AssetTransferTx:
		if !proto.Asset {
			return fmt.Errorf("asset transaction not supported")
		}

		err := tx.AssetTransferTxnFields.wellFormed()
		if err != nil {
			return err
		}

	case protocol.ApplicationCallTx:
		if !proto.Application {
			return fmt.Errorf("application transaction not supported")
		}

		err := tx.ApplicationCallTxnFields.wellFormed(proto)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown tx type %v", tx.Type)
	}

	nonZeroFields := make(map[protocol.TxType]bool)
	if tx.PaymentTxnFields != (PaymentTxnFields{}) {
		nonZeroFields[protocol.PaymentTx] = true
	}

	if tx.AssetConfigTxnFields != (AssetConfigTxnFields{}) {
		nonZeroFields[protocol.AssetConfigTx] = true
	}

	if tx.AssetTransferTxnFields != (AssetTransferTxnFields{}) {
		nonZeroFields[protocol.AssetTransferTx] = true
	}

	if !tx.ApplicationCallTxnFields.Empty() {
		nonZeroFields[protocol.ApplicationCallTx] = true
	}

	for t, nonZero := range nonZeroFields {
		if nonZero && t != tx.Type {
			return fmt.Errorf("transaction of type %v has non-zero fields for type %v", tx.Type, t)
		}
	}

	if !proto.EnableFeePooling && tx.Fee.LessThan(basics.MicroAlgos{Raw: proto.MinTxnFee}) {
		return makeMinFeeErrorf("transaction had fee %d, which is less than the minimum %d", tx.Fee.Raw, proto.MinTxnFee)
	}
	if tx.LastValid < tx.FirstValid {
		return fmt.Errorf("transaction invalid range (%v--%v)", tx.FirstValid, tx.LastValid)
	}
	if tx.LastValid-tx.FirstValid > basics.Round(proto.MaxTxnLife) {
		return fmt.Errorf("transaction window size excessive (%v--%v)", tx.FirstValid, tx.LastValid)
	}
	if len(tx.Note) > proto.MaxTxnNoteBytes {
		return fmt.Errorf("transaction note too big: %d > %d", len(tx.Note), proto.MaxTxnNoteBytes)
	}
	if tx.Sender == spec.RewardsPool {
		return fmt.Errorf("transaction from incentive pool is invalid")
	}
	if tx.Sender.IsZero() {
		return fmt.Errorf("transaction cannot have zero sender")
	}
	if !proto.SupportTxGroups && (tx.Group != crypto.Digest{}) {
		return fmt.Errorf("transaction has group but groups not yet enabled")
	}
	return nil
}

// TxAmount returns the amount paid to the recipient in this payment
func (tx Transaction) TxAmount() basics.MicroAlgos {
	switch tx.Type {
	case protocol.PaymentTx:
		return tx.PaymentTxnFields.Amount

	default:
		return basics.MicroAlgos{Raw: 0}
	}
}
