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
	"fmt"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/ledger/store"
)

//   ___________________
// < cow = Copy On Write >
//   -------------------
//          \   ^__^
//           \  (oo)\_______
//              (__)\       )\/\
//                  ||----w |
//                  ||     ||

type roundCowParent interface {
	lookup(basics.Address) (basics.AccountData, error)
	isDup(transactions.Txid) (bool, error)
	txnCounter() uint64
	getCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (basics.Address, bool, error)
}

// stateDelta is what a cow adds on top of its parent.
type stateDelta struct {
	accts      map[basics.Address]basics.AccountData
	txids      map[transactions.Txid]struct{}
	creatables map[basics.CreatableIndex]store.ModifiedCreatable

	// txns counts every transaction applied, inner ones included.
	txns uint64
}

func makeStateDelta() stateDelta {
	return stateDelta{
		accts:      make(map[basics.Address]basics.AccountData),
		txids:      make(map[transactions.Txid]struct{}),
		creatables: make(map[basics.CreatableIndex]store.ModifiedCreatable),
	}
}

type roundCowState struct {
	lookupParent roundCowParent
	commitParent *roundCowState
	proto        config.ConsensusParams
	mods         stateDelta
}

func makeRoundCowState(b roundCowParent, proto config.ConsensusParams) *roundCowState {
	return &roundCowState{
		lookupParent: b,
		commitParent: nil,
		proto:        proto,
		mods:         makeStateDelta(),
	}
}

func (cb *roundCowState) getCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (creator basics.Address, ok bool, err error) {
	delta, ok := cb.mods.creatables[cidx]
	if ok {
		if delta.Created && delta.Ctype == ctype {
			return delta.Creator, true, nil
		}
		return basics.Address{}, false, nil
	}
	return cb.lookupParent.getCreator(cidx, ctype)
}

func (cb *roundCowState) lookup(addr basics.Address) (data basics.AccountData, err error) {
	d, ok := cb.mods.accts[addr]
	if ok {
		return d, nil
	}

	return cb.lookupParent.lookup(addr)
}

func (cb *roundCowState) isDup(txid transactions.Txid) (bool, error) {
	if _, present := cb.mods.txids[txid]; present {
		return true, nil
	}
	return cb.lookupParent.isDup(txid)
}

func (cb *roundCowState) txnCounter() uint64 {
	return cb.lookupParent.txnCounter() + cb.mods.txns
}

func (cb *roundCowState) incTxnCount() {
	cb.mods.txns++
}

func (cb *roundCowState) put(addr basics.Address, data basics.AccountData) {
	cb.mods.accts[addr] = data
}

func (cb *roundCowState) addTx(txid transactions.Txid) {
	cb.mods.txids[txid] = struct{}{}
}

func (cb *roundCowState) child() *roundCowState {
	return &roundCowState{
		lookupParent: cb,
		commitParent: cb,
		proto:        cb.proto,
		mods:         makeStateDelta(),
	}
}

func (cb *roundCowState) commitToParent() {
	for addr, data := range cb.mods.accts {
		cb.commitParent.mods.accts[addr] = data
	}
	for txid := range cb.mods.txids {
		cb.commitParent.mods.txids[txid] = struct{}{}
	}
	for cidx, delta := range cb.mods.creatables {
		cb.commitParent.mods.creatables[cidx] = delta
	}
	cb.commitParent.mods.txns += cb.mods.txns
}

func (cb *roundCowState) modifiedAccounts() []basics.Address {
	res := make([]basics.Address, 0, len(cb.mods.accts))
	for addr := range cb.mods.accts {
		res = append(res, addr)
	}
	return res
}

// Get implements apply.Balances.
func (cb *roundCowState) Get(addr basics.Address) (basics.AccountData, error) {
	data, err := cb.lookup(addr)
	if err != nil {
		return basics.AccountData{}, err
	}
	return data.Clone(), nil
}

// Put implements apply.Balances.
func (cb *roundCowState) Put(addr basics.Address, data basics.AccountData) error {
	cb.put(addr, data)
	return nil
}

// GetCreator implements apply.Balances.
func (cb *roundCowState) GetCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (basics.Address, bool, error) {
	return cb.getCreator(cidx, ctype)
}

// Allocate implements apply.Balances.
func (cb *roundCowState) Allocate(creator basics.Address, cidx basics.CreatableIndex, ctype basics.CreatableType) error {
	cb.mods.creatables[cidx] = store.ModifiedCreatable{Ctype: ctype, Created: true, Creator: creator}
	return nil
}

// Deallocate implements apply.Balances.
func (cb *roundCowState) Deallocate(creator basics.Address, cidx basics.CreatableIndex, ctype basics.CreatableType) error {
	cb.mods.creatables[cidx] = store.ModifiedCreatable{Ctype: ctype, Created: false, Creator: creator}
	return nil
}

// StatefulEval implements apply.Balances. The program runs against a child
// of cb, which is folded in only if the program approves; inner
// transactions of a rejecting program leave no trace.
func (cb *roundCowState) StatefulEval(gi int, params *logic.EvalParams, aidx basics.AppIndex) (bool, error) {
	calf := cb.child()
	defer func() {
		params.Ledger = cb
	}()
	params.Ledger = calf

	pass, _, err := logic.EvalContract(gi, aidx, params)
	if err != nil {
		return false, err
	}
	if pass {
		calf.commitToParent()
	}
	return pass, nil
}

// Move implements apply.Balances.
func (cb *roundCowState) Move(from basics.Address, to basics.Address, amt basics.MicroAlgos) error {
	fromBal, err := cb.lookup(from)
	if err != nil {
		return err
	}

	var ot basics.OverflowTracker
	fromBalNew := fromBal
	fromBalNew.MicroAlgos = ot.SubA(fromBal.MicroAlgos, amt)
	if ot.Overflowed {
		return fmt.Errorf("overspend (account %v, data %+v, tried to spend %v)", from, fromBal, amt)
	}
	cb.put(from, fromBalNew)

	toBal, err := cb.lookup(to)
	if err != nil {
		return err
	}

	toBalNew := toBal
	toBalNew.MicroAlgos = ot.AddA(toBal.MicroAlgos, amt)
	if ot.Overflowed {
		return fmt.Errorf("balance overflow (account %v, data %+v, was going to receive %v)", to, toBal, amt)
	}
	cb.put(to, toBalNew)

	return nil
}

// ConsensusParams implements apply.Balances.
func (cb *roundCowState) ConsensusParams() config.ConsensusParams {
	return cb.proto
}

// AssetHolding implements logic.LedgerForLogic.
func (cb *roundCowState) AssetHolding(addr basics.Address, aidx basics.AssetIndex) (basics.AssetHolding, bool, error) {
	data, err := cb.lookup(addr)
	if err != nil {
		return basics.AssetHolding{}, false, err
	}
	holding, ok := data.Assets[aidx]
	return holding, ok, nil
}

// AppParams implements logic.LedgerForLogic.
func (cb *roundCowState) AppParams(aidx basics.AppIndex) (basics.AppParams, basics.Address, error) {
	creator, ok, err := cb.getCreator(basics.CreatableIndex(aidx), basics.AppCreatable)
	if err != nil {
		return basics.AppParams{}, basics.Address{}, err
	}
	if !ok {
		return basics.AppParams{}, basics.Address{}, fmt.Errorf("app %d does not exist", aidx)
	}
	data, err := cb.lookup(creator)
	if err != nil {
		return basics.AppParams{}, basics.Address{}, err
	}
	params, ok := data.AppParams[aidx]
	if !ok {
		return basics.AppParams{}, basics.Address{}, fmt.Errorf("app %d has no params at creator %v", aidx, creator)
	}
	return params, creator, nil
}

// Perform implements logic.LedgerForLogic. It applies an inner transaction
// to a child of this cow and folds it in only once the transaction has fully
// applied, fee included.
func (cb *roundCowState) Perform(gi int, ep *logic.EvalParams) error {
	if !ep.IsInner() {
		return fmt.Errorf("perform called for a top-level group")
	}
	txn := &ep.TxnGroup[gi]
	calf := cb.child()

	err := calf.Move(txn.Txn.Sender, ep.Specials.FeeSink, txn.Txn.Fee)
	if err != nil {
		return err
	}

	// Count the inner transaction before applying it, so that anything it
	// creates gets an index past the one its caller may have taken.
	calf.incTxnCount()

	err = calf.applyFields(gi, ep, calf.txnCounter())
	if err != nil {
		return err
	}
	calf.commitToParent()
	return nil
}
