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

package libgoal

import (
	"context"
	"errors"
	"fmt"

	"github.com/algorand/autooptin/crypto"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/ledger"
	"github.com/algorand/autooptin/ledger/store"
	"github.com/algorand/autooptin/protocol"
)

// MakeUnsignedPaymentTx builds a payment transaction.
// If the fee is 0, the minimum fee is used.
// if the lastValid is 0, firstValid + maxTxnLifetime will be used
// if the firstValid is 0, the latest round will be used
func (c *Client) MakeUnsignedPaymentTx(from, to string, fee, amount uint64, note []byte, closeTo string, firstValid, lastValid basics.Round) (transactions.Transaction, error) {
	var toAddr basics.Address
	if to != "" {
		var err error
		toAddr, err = basics.UnmarshalChecksumAddress(to)
		if err != nil {
			return transactions.Transaction{}, err
		}
	}

	tx := transactions.Transaction{
		Type: protocol.PaymentTx,
		Header: transactions.Header{
			Note: note,
		},
		PaymentTxnFields: transactions.PaymentTxnFields{
			Receiver: toAddr,
			Amount:   basics.MicroAlgos{Raw: amount},
		},
	}

	// If requesting closing, put it in the transaction. Better to fail the
	// transaction than to silently drop what the user explicitly asked for.
	if closeTo != "" {
		closeToAddr, err := basics.UnmarshalChecksumAddress(closeTo)
		if err != nil {
			return transactions.Transaction{}, err
		}
		tx.PaymentTxnFields.CloseRemainderTo = closeToAddr
	}

	return c.FillUnsignedTxTemplate(from, firstValid, lastValid, fee, tx)
}

// MakeUnsignedAssetCreateTx creates a tx template for creating
// an asset.
//
// Call FillUnsignedTxTemplate afterwards to fill out common fields in
// the resulting transaction template.
func (c *Client) MakeUnsignedAssetCreateTx(total uint64, defaultFrozen bool, manager string, reserve string, freeze string, clawback string, unitName string, assetName string, url string, decimals uint32) (transactions.Transaction, error) {
	var tx transactions.Transaction
	var err error

	tx.Type = protocol.AssetConfigTx
	tx.AssetParams = basics.AssetParams{
		Total:         total,
		DefaultFrozen: defaultFrozen,
		Decimals:      decimals,
		UnitName:      unitName,
		AssetName:     assetName,
		URL:           url,
	}

	for _, role := range []struct {
		addr string
		dst  *basics.Address
	}{
		{manager, &tx.AssetParams.Manager},
		{reserve, &tx.AssetParams.Reserve},
		{freeze, &tx.AssetParams.Freeze},
		{clawback, &tx.AssetParams.Clawback},
	} {
		if role.addr == "" {
			continue
		}
		*role.dst, err = basics.UnmarshalChecksumAddress(role.addr)
		if err != nil {
			return tx, err
		}
	}

	return tx, nil
}

// MakeUnsignedAssetSendTx creates a tx template for sending assets.
// To allocate a slot for a particular asset, send a zero amount to self.
//
// Call FillUnsignedTxTemplate afterwards to fill out common fields in
// the resulting transaction template.
func (c *Client) MakeUnsignedAssetSendTx(index basics.AssetIndex, amount uint64, recipient string, closeTo string) (transactions.Transaction, error) {
	var tx transactions.Transaction
	var err error

	if recipient != "" {
		tx.AssetReceiver, err = basics.UnmarshalChecksumAddress(recipient)
		if err != nil {
			return tx, err
		}
	}

	if closeTo != "" {
		tx.AssetCloseTo, err = basics.UnmarshalChecksumAddress(closeTo)
		if err != nil {
			return tx, err
		}
	}

	tx.Type = protocol.AssetTransferTx
	tx.XferAsset = index
	tx.AssetAmount = amount

	return tx, nil
}

// MakeUnsignedAppCreateTx makes a transaction for creating an application
// that runs the registered program.
//
// Call FillUnsignedTxTemplate afterwards to fill out common fields in
// the resulting transaction template.
func (c *Client) MakeUnsignedAppCreateTx(program string, appArgs [][]byte, foreignAssets []basics.AssetIndex) (transactions.Transaction, error) {
	if program == "" {
		return transactions.Transaction{}, errors.New("cannot create an application without a program")
	}
	return c.makeUnsignedApplicationCallTx(0, appArgs, foreignAssets, transactions.NoOpOC, program), nil
}

// MakeUnsignedAppNoOpTx makes a transaction for calling an application.
//
// Call FillUnsignedTxTemplate afterwards to fill out common fields in
// the resulting transaction template.
func (c *Client) MakeUnsignedAppNoOpTx(appIdx basics.AppIndex, appArgs [][]byte, foreignAssets []basics.AssetIndex) (transactions.Transaction, error) {
	if appIdx == 0 {
		return transactions.Transaction{}, errors.New("cannot call application 0")
	}
	return c.makeUnsignedApplicationCallTx(appIdx, appArgs, foreignAssets, transactions.NoOpOC, ""), nil
}

// MakeUnsignedAppOptInTx makes a transaction for opting into an
// application.
//
// Call FillUnsignedTxTemplate afterwards to fill out common fields in
// the resulting transaction template.
func (c *Client) MakeUnsignedAppOptInTx(appIdx basics.AppIndex, appArgs [][]byte, foreignAssets []basics.AssetIndex) (transactions.Transaction, error) {
	if appIdx == 0 {
		return transactions.Transaction{}, errors.New("cannot opt into application 0")
	}
	return c.makeUnsignedApplicationCallTx(appIdx, appArgs, foreignAssets, transactions.OptInOC, ""), nil
}

// MakeUnsignedAppClearStateTx makes a transaction that clears the sender's
// state in an application. It is always approved.
func (c *Client) MakeUnsignedAppClearStateTx(appIdx basics.AppIndex) (transactions.Transaction, error) {
	if appIdx == 0 {
		return transactions.Transaction{}, errors.New("cannot clear state of application 0")
	}
	return c.makeUnsignedApplicationCallTx(appIdx, nil, nil, transactions.ClearStateOC, ""), nil
}

func (c *Client) makeUnsignedApplicationCallTx(appIdx basics.AppIndex, appArgs [][]byte, foreignAssets []basics.AssetIndex, onCompletion transactions.OnCompletion, program string) transactions.Transaction {
	var tx transactions.Transaction

	tx.Type = protocol.ApplicationCallTx
	tx.ApplicationID = appIdx
	tx.OnCompletion = onCompletion
	tx.ApplicationArgs = appArgs
	tx.ForeignAssets = foreignAssets
	tx.Program = program

	return tx
}

// FillUnsignedTxTemplate fills in header fields in a partially-filled-in transaction.
func (c *Client) FillUnsignedTxTemplate(sender string, firstValid, lastValid basics.Round, fee uint64, tx transactions.Transaction) (transactions.Transaction, error) {
	// Parse the address
	parsedAddr, err := basics.UnmarshalChecksumAddress(sender)
	if err != nil {
		return transactions.Transaction{}, err
	}

	params := c.SuggestedParams()
	fv, lv, err := computeValidityRounds(firstValid, lastValid, 0, params.LastRound, params.MaxTxnLife)
	if err != nil {
		return transactions.Transaction{}, err
	}

	tx.Header.Sender = parsedAddr
	tx.Header.FirstValid = fv
	tx.Header.LastValid = lv
	tx.Header.GenesisID = params.GenesisID

	// Default to the minimum fee if the caller didn't supply one.
	tx.Header.Fee = basics.MicroAlgos{Raw: fee}
	if tx.Header.Fee.Raw < params.MinFee {
		tx.Header.Fee.Raw = params.MinFee
	}

	return tx, nil
}

// GroupID computes a group ID for the given transactions, in the order
// given.
func (c *Client) GroupID(txgroup []transactions.Transaction) (gid crypto.Digest, err error) {
	if len(txgroup) == 0 {
		return gid, errors.New("cannot group zero transactions")
	}
	proto := c.ledger.ConsensusParams()
	if len(txgroup) > proto.MaxTxGroupSize {
		return gid, fmt.Errorf("group size %d exceeds maximum %d", len(txgroup), proto.MaxTxGroupSize)
	}
	return transactions.GroupID(txgroup), nil
}

// AssignGroupID sets the group ID of every transaction in txgroup. The
// order of txgroup is significant and is never changed.
func (c *Client) AssignGroupID(txgroup []transactions.Transaction) error {
	gid, err := c.GroupID(txgroup)
	if err != nil {
		return err
	}
	for i := range txgroup {
		txgroup[i].Group = gid
	}
	return nil
}

// SendTransaction submits a single transaction and returns its txid.
func (c *Client) SendTransaction(ctx context.Context, tx transactions.Transaction) (transactions.Txid, error) {
	res, err := c.SendGroup(ctx, []transactions.Transaction{tx})
	if err != nil {
		return transactions.Txid{}, err
	}
	return res.Txns[0].ID(), nil
}

// SendGroup submits txgroup as one atomic group, in the order given. A
// group of more than one transaction must have had AssignGroupID called.
func (c *Client) SendGroup(ctx context.Context, txgroup []transactions.Transaction) (ledger.GroupResult, error) {
	stxns := make([]transactions.SignedTxn, len(txgroup))
	for i, tx := range txgroup {
		stxns[i] = transactions.SignedTxn{Txn: tx}
	}

	res, err := c.ledger.EvalGroup(ctx, stxns)
	if err != nil {
		return ledger.GroupResult{}, err
	}
	c.log.With("round", uint64(res.Round)).Infof("sent group of %d, first txid %v", len(txgroup), res.Txns[0].ID())
	return res, nil
}

// WaitForConfirmation waits until txid is committed, giving up once
// ConfirmationWaitRounds rounds have passed without it or ctx is done.
func (c *Client) WaitForConfirmation(ctx context.Context, txid transactions.Txid) (store.TxnRecord, error) {
	roundTimeout := c.ledger.Latest() + basics.Round(c.cfg.ConfirmationWaitRounds)
	for {
		// Read the round before looking: a commit in between is seen on
		// the next pass rather than missed.
		curRound := c.ledger.Latest()

		rec, ok, err := c.ledger.LookupTxn(txid)
		if err != nil {
			return store.TxnRecord{}, err
		}
		if ok {
			return rec, nil
		}

		if curRound >= roundTimeout {
			return store.TxnRecord{}, fmt.Errorf("failed to see confirmed transaction %v by round %v", txid, roundTimeout)
		}

		select {
		case <-c.ledger.Wait(curRound + 1):
		case <-ctx.Done():
			return store.TxnRecord{}, ctx.Err()
		}
	}
}
