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

package logictest

import (
	"fmt"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/protocol"
)

type balanceRecord struct {
	addr     basics.Address
	balance  uint64
	holdings map[basics.AssetIndex]basics.AssetHolding
}

func makeBalanceRecord(addr basics.Address, balance uint64) balanceRecord {
	return balanceRecord{
		addr:     addr,
		balance:  balance,
		holdings: make(map[basics.AssetIndex]basics.AssetHolding),
	}
}

// In our test ledger, we don't store the creatables with their
// creators, so we need to carry the creator around with them.
type appParams struct {
	basics.AppParams
	Creator basics.Address
}

type asaParams struct {
	basics.AssetParams
	Creator basics.Address
}

// Ledger is a convenient mock ledger that is used by
// data/transactions/logic. It is in its own package so that it can be
// used by people developing programs that need a fast testing setup,
// rather than running against a full ledger. Only payments and asset
// transfers can be performed.
type Ledger struct {
	balances     map[basics.Address]balanceRecord
	applications map[basics.AppIndex]appParams
	assets       map[basics.AssetIndex]asaParams
	performed    []transactions.Transaction
	failPerform  error
	appID        basics.AppIndex
}

// MakeLedger constructs a Ledger with the given balances.
func MakeLedger(balances map[basics.Address]uint64) *Ledger {
	l := new(Ledger)
	l.balances = make(map[basics.Address]balanceRecord)
	for addr, balance := range balances {
		l.NewAccount(addr, balance)
	}
	l.applications = make(map[basics.AppIndex]appParams)
	l.assets = make(map[basics.AssetIndex]asaParams)
	return l
}

// NewAccount adds a new account with a given balance to the Ledger.
func (l *Ledger) NewAccount(addr basics.Address, balance uint64) {
	l.balances[addr] = makeBalanceRecord(addr, balance)
}

// NewApp adds a new app running the named registered program.
func (l *Ledger) NewApp(creator basics.Address, appID basics.AppIndex, program string) {
	l.appID = appID
	l.applications[appID] = appParams{
		Creator:   creator,
		AppParams: basics.AppParams{Program: program},
	}
	if _, ok := l.balances[creator]; !ok {
		l.balances[creator] = makeBalanceRecord(creator, 0)
	}
}

// NewAsset adds an asset with the given id and params to the ledger.
func (l *Ledger) NewAsset(creator basics.Address, assetID basics.AssetIndex, params basics.AssetParams) {
	l.assets[assetID] = asaParams{
		Creator:     creator,
		AssetParams: params,
	}
	br, ok := l.balances[creator]
	if !ok {
		br = makeBalanceRecord(creator, 0)
	}
	br.holdings[assetID] = basics.AssetHolding{Amount: params.Total, Frozen: params.DefaultFrozen}
	l.balances[creator] = br
}

// NewHolding sets the ASA balance of a given account.
func (l *Ledger) NewHolding(addr basics.Address, assetID basics.AssetIndex, amount uint64, frozen bool) {
	br, ok := l.balances[addr]
	if !ok {
		br = makeBalanceRecord(addr, 0)
	}
	br.holdings[assetID] = basics.AssetHolding{Amount: amount, Frozen: frozen}
	l.balances[addr] = br
}

// FailPerform makes every later Perform return err. A nil err restores
// normal behavior.
func (l *Ledger) FailPerform(err error) {
	l.failPerform = err
}

// Performed returns the transactions performed so far, in order.
func (l *Ledger) Performed() []transactions.Transaction {
	return l.performed
}

// Balance returns the value in an account, as MicroAlgos
func (l *Ledger) Balance(addr basics.Address) basics.MicroAlgos {
	return basics.MicroAlgos{Raw: l.balances[addr].balance}
}

// AssetHolding gives the amount of an ASA held by an account, or
// false if the account is not opted in.
func (l *Ledger) AssetHolding(addr basics.Address, assetID basics.AssetIndex) (basics.AssetHolding, bool, error) {
	br, ok := l.balances[addr]
	if !ok {
		return basics.AssetHolding{}, false, nil
	}
	holding, ok := br.holdings[assetID]
	return holding, ok, nil
}

// AssetParams gives the parameters of an ASA if it exists
func (l *Ledger) AssetParams(assetID basics.AssetIndex) (basics.AssetParams, basics.Address, error) {
	if asset, ok := l.assets[assetID]; ok {
		return asset.AssetParams, asset.Creator, nil
	}
	return basics.AssetParams{}, basics.Address{}, fmt.Errorf("no such asset %d", assetID)
}

// AppParams gives the parameters of an App if it exists
func (l *Ledger) AppParams(appID basics.AppIndex) (basics.AppParams, basics.Address, error) {
	if app, ok := l.applications[appID]; ok {
		return app.AppParams, app.Creator, nil
	}
	return basics.AppParams{}, basics.Address{}, fmt.Errorf("no such app %d", appID)
}

// ApplicationID gives ID of the most recently created app.
func (l *Ledger) ApplicationID() basics.AppIndex {
	return l.appID
}

func (l *Ledger) move(from basics.Address, to basics.Address, amount uint64) error {
	fbr, ok := l.balances[from]
	if !ok {
		fbr = makeBalanceRecord(from, 0)
	}
	tbr, ok := l.balances[to]
	if !ok {
		tbr = makeBalanceRecord(to, 0)
	}
	if fbr.balance < amount {
		return fmt.Errorf("insufficient balance")
	}
	fbr.balance -= amount
	tbr.balance += amount
	// We do not check min balances. The real ledger does that when the group is complete.
	l.balances[from] = fbr
	l.balances[to] = tbr
	return nil
}

func (l *Ledger) pay(from basics.Address, pay transactions.PaymentTxnFields) error {
	err := l.move(from, pay.Receiver, pay.Amount.Raw)
	if err != nil {
		return err
	}
	if !pay.CloseRemainderTo.IsZero() {
		sbr := l.balances[from]
		if len(sbr.holdings) > 0 {
			return fmt.Errorf("unable to close, Sender (%s) has holdings", from)
		}
		remainder := sbr.balance
		if remainder > 0 {
			return l.move(from, pay.CloseRemainderTo, remainder)
		}
	}
	return nil
}

func (l *Ledger) axfer(from basics.Address, xfer transactions.AssetTransferTxnFields) error {
	to := xfer.AssetReceiver
	aid := xfer.XferAsset
	amount := xfer.AssetAmount

	fbr, ok := l.balances[from]
	if !ok {
		fbr = makeBalanceRecord(from, 0)
	}
	fholding, ok := fbr.holdings[aid]
	if !ok {
		if from == to && amount == 0 {
			// opt in
			if params, exists := l.assets[aid]; exists {
				fbr.holdings[aid] = basics.AssetHolding{
					Frozen: params.DefaultFrozen,
				}
				l.balances[from] = fbr
				return nil
			}
			return fmt.Errorf("asset %d does not exist", aid)
		}
		return fmt.Errorf("sender %s not opted in to %d", from, aid)
	}
	if fholding.Frozen {
		return fmt.Errorf("sender %s is frozen for %d", from, aid)
	}
	if from == to || amount == 0 {
		return nil
	}
	tbr, ok := l.balances[to]
	if !ok {
		tbr = makeBalanceRecord(to, 0)
	}
	tholding, ok := tbr.holdings[aid]
	if !ok {
		return fmt.Errorf("receiver %s not opted in to %d", to, aid)
	}
	if fholding.Amount < amount {
		return fmt.Errorf("insufficient asset balance")
	}
	fholding.Amount -= amount
	tholding.Amount += amount
	fbr.holdings[aid] = fholding
	tbr.holdings[aid] = tholding
	l.balances[from] = fbr
	l.balances[to] = tbr
	return nil
}

// Perform causes ep.TxnGroup[gi] to "occur" against the ledger.
func (l *Ledger) Perform(gi int, ep *logic.EvalParams) error {
	if l.failPerform != nil {
		return l.failPerform
	}
	txn := &ep.TxnGroup[gi].Txn
	var specials transactions.SpecialAddresses
	if ep.Specials != nil {
		specials = *ep.Specials
	}
	err := l.move(txn.Sender, specials.FeeSink, txn.Fee.Raw)
	if err != nil {
		return err
	}
	switch txn.Type {
	case protocol.PaymentTx:
		err = l.pay(txn.Sender, txn.PaymentTxnFields)
	case protocol.AssetTransferTx:
		err = l.axfer(txn.Sender, txn.AssetTransferTxnFields)
	default:
		err = fmt.Errorf("%s txn in test ledger", txn.Type)
	}
	if err != nil {
		return err
	}
	l.performed = append(l.performed, *txn)
	return nil
}
