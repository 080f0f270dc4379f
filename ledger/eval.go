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
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/ledger/apply"
	"github.com/algorand/autooptin/ledger/store"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/util/db"
)

// roundCowBase reads committed state from the ledger database.
type roundCowBase struct {
	ctx     context.Context
	l       *Ledger
	counter uint64
}

func (x *roundCowBase) lookup(addr basics.Address) (data basics.AccountData, err error) {
	err = db.Retry(func() (err error) {
		data, err = store.LookupAccount(x.ctx, x.l.trackerDB.Handle, addr)
		return
	})
	return
}

func (x *roundCowBase) isDup(txid transactions.Txid) (dup bool, err error) {
	err = db.Retry(func() (err error) {
		_, dup, err = store.LookupTxn(x.ctx, x.l.trackerDB.Handle, txid)
		return
	})
	return
}

func (x *roundCowBase) txnCounter() uint64 {
	return x.counter
}

func (x *roundCowBase) getCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (creator basics.Address, ok bool, err error) {
	err = db.Retry(func() (err error) {
		creator, ok, err = store.LookupCreator(x.ctx, x.l.trackerDB.Handle, cidx, ctype)
		return
	})
	return
}

// GroupResult describes a committed transaction group.
type GroupResult struct {
	Round basics.Round

	// Txns holds the group members with the apply data they produced,
	// including any inner transactions.
	Txns []transactions.SignedTxnWithAD
}

// EvalGroup evaluates a transaction group against the latest state and, if
// every member applies, commits the group as the next round. A rejected
// group leaves the ledger unchanged and is reported as a
// *GroupRejectedError.
func (l *Ledger) EvalGroup(ctx context.Context, group []transactions.SignedTxn) (GroupResult, error) {
	l.trackerMu.Lock()
	defer l.trackerMu.Unlock()

	res, err := l.evalGroup(ctx, group)
	if err != nil {
		l.metrics.rejected()
		l.log.With("size", len(group)).Infof("rejected group: %v", err)
		return GroupResult{}, err
	}
	return res, nil
}

func (l *Ledger) evalGroup(ctx context.Context, group []transactions.SignedTxn) (GroupResult, error) {
	proto := l.proto
	spec := l.specials
	rnd := l.latest + 1

	if len(group) == 0 {
		return GroupResult{}, &GroupRejectedError{Index: -1, Err: ErrEmptyGroup}
	}
	if len(group) > proto.MaxTxGroupSize {
		return GroupResult{}, &GroupRejectedError{Index: -1,
			Err: fmt.Errorf("group size %d exceeds maximum %d", len(group), proto.MaxTxGroupSize)}
	}

	txgroup := transactions.WrapSignedTxnsWithAD(group)
	err := transactions.CheckGroup(txgroup)
	if err != nil {
		return GroupResult{}, &GroupRejectedError{Index: -1, Err: err}
	}

	base := &roundCowBase{ctx: ctx, l: l, counter: l.txnCounter}
	cow := makeRoundCowState(base, proto)

	var ot basics.OverflowTracker
	feesPaid := uint64(0)
	for gi, stxn := range txgroup {
		txn := stxn.Txn
		txid := txn.ID()

		// Transaction valid (not expired)?
		err = txn.Alive(rnd)
		if err != nil {
			return GroupResult{}, &GroupRejectedError{Index: gi, Err: err}
		}

		if txn.GenesisID != "" && txn.GenesisID != l.genesisID {
			return GroupResult{}, &GroupRejectedError{Index: gi,
				Err: fmt.Errorf("transaction %v: genesis id %q does not match %q", txid, txn.GenesisID, l.genesisID)}
		}

		// Well-formed on its own?
		err = txn.WellFormed(spec, proto)
		if err != nil {
			return GroupResult{}, &GroupRejectedError{Index: gi,
				Err: fmt.Errorf("transaction %v: malformed: %w", txid, err)}
		}

		// Transaction already in the ledger, or twice in this group?
		dup, err := cow.isDup(txid)
		if err != nil {
			return GroupResult{}, err
		}
		if dup {
			return GroupResult{}, &GroupRejectedError{Index: gi, Err: TransactionInLedgerError{Txid: txid}}
		}
		cow.addTx(txid)

		feesPaid = ot.Add(feesPaid, txn.Fee.Raw)
	}

	if proto.EnableFeePooling {
		feeNeeded, overflowed := basics.OMul(proto.MinTxnFee, uint64(len(txgroup)))
		if ot.Overflowed || overflowed {
			return GroupResult{}, &GroupRejectedError{Index: -1, Err: fmt.Errorf("overflow adding up group fees")}
		}
		if feesPaid < feeNeeded {
			return GroupResult{}, &GroupRejectedError{Index: -1,
				Err: transactions.MakeMinFeeErrorf("group fees %d are less than the minimum %d", feesPaid, feeNeeded)}
		}
	}

	ep := logic.NewAppEvalParams(txgroup, &proto, &spec)
	ep.SetLogger(l.log)

	for gi := range txgroup {
		err = l.transaction(cow, gi, ep)
		if err != nil {
			return GroupResult{}, &GroupRejectedError{Index: gi, Err: err}
		}
	}

	delta := store.RoundDelta{
		Round:      rnd,
		TxnCounter: cow.txnCounter(),
		Accounts:   cow.mods.accts,
		Creatables: cow.mods.creatables,
		Txns:       txgroup,
	}
	err = l.trackerDB.Atomic(ctx, "commitRound", func(ctx context.Context, tx *sqlx.Tx) error {
		return store.CommitRound(ctx, tx, delta)
	})
	if err != nil {
		return GroupResult{}, fmt.Errorf("committing round %d: %w", rnd, err)
	}

	l.latest = rnd
	l.txnCounter = delta.TxnCounter
	l.bulletin.committedUpTo(rnd)
	l.metrics.committed(rnd, txgroup)
	l.log.With("round", uint64(rnd)).Debugf("committed group of %d", len(txgroup))

	return GroupResult{Round: rnd, Txns: txgroup}, nil
}

// transaction applies ep.TxnGroup[gi] on a child of cow and folds the
// child in only if every touched account still meets its minimum balance.
func (l *Ledger) transaction(cow *roundCowState, gi int, ep *logic.EvalParams) error {
	child := cow.child()
	ep.Ledger = child

	stxn := &ep.TxnGroup[gi]
	err := child.Move(stxn.Txn.Sender, ep.Specials.FeeSink, stxn.Txn.Fee)
	if err != nil {
		return fmt.Errorf("transaction %v: %w", stxn.ID(), err)
	}

	err = child.applyFields(gi, ep, child.txnCounter())
	if err != nil {
		return fmt.Errorf("transaction %v: %w", stxn.ID(), err)
	}
	child.incTxnCount()

	// Check if any affected accounts dipped below MinBalance (unless they are
	// completely zero, which means the account will be deleted.)
	for _, addr := range child.modifiedAccounts() {
		data, err := child.lookup(addr)
		if err != nil {
			return err
		}

		if data.IsZero() {
			continue
		}

		// The fee sink and rewards pool are exempt.
		if addr == ep.Specials.FeeSink || addr == ep.Specials.RewardsPool {
			continue
		}

		minBal := child.proto.MinBalanceReq(data)
		if data.MicroAlgos.Raw < minBal.Raw {
			return fmt.Errorf("transaction %v: account %v balance %d below min %d (%d assets)",
				stxn.ID(), addr, data.MicroAlgos.Raw, minBal.Raw, len(data.Assets))
		}
	}

	child.commitToParent()
	return nil
}

// applyFields applies the type-specific effects of ep.TxnGroup[gi]. The
// fee has already been moved.
func (cb *roundCowState) applyFields(gi int, ep *logic.EvalParams, counter uint64) error {
	stxn := &ep.TxnGroup[gi]
	tx := stxn.Txn
	ad := &stxn.ApplyData
	spec := *ep.Specials

	switch tx.Type {
	case protocol.PaymentTx:
		return apply.Payment(tx.PaymentTxnFields, tx.Header, cb, spec, ad)

	case protocol.AssetConfigTx:
		return apply.AssetConfig(tx.AssetConfigTxnFields, tx.Header, cb, spec, ad, counter)

	case protocol.AssetTransferTx:
		return apply.AssetTransfer(tx.AssetTransferTxnFields, tx.Header, cb, spec, ad)

	case protocol.ApplicationCallTx:
		return apply.ApplicationCall(tx.ApplicationCallTxnFields, tx.Header, cb, ad, gi, ep, counter)

	default:
		return fmt.Errorf("unknown transaction type %v", tx.Type)
	}
}
