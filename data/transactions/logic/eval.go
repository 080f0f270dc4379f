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

package logic

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/logging"
	"github.com/algorand/autooptin/protocol"
)

// ExecutionContext is everything a program can see and do while it runs.
type ExecutionContext interface {
	// GroupIndex is the position of the running application call in its group.
	GroupIndex() int
	// GroupSize is the number of transactions in the group.
	GroupSize() int
	// GroupTxn returns the transaction at position gi of the group.
	GroupTxn(gi int) transactions.Transaction
	// AppAddress is the account controlled by the running application.
	AppAddress() basics.Address
	// AssetHolding reports the holding of addr for aidx. ok is false when
	// the account has never opted into the asset.
	AssetHolding(addr basics.Address, aidx basics.AssetIndex) (holding basics.AssetHolding, ok bool, err error)
	// SubmitInner performs txn on behalf of the application account.
	SubmitInner(txn transactions.Transaction) error
	// Creating is true during the call that creates the application.
	Creating() bool
}

// LedgerForLogic represents ledger API for applications
type LedgerForLogic interface {
	AssetHolding(addr basics.Address, aidx basics.AssetIndex) (basics.AssetHolding, bool, error)
	AppParams(aidx basics.AppIndex) (basics.AppParams, basics.Address, error)

	// Perform applies ep.TxnGroup[gi] and fills in its ApplyData.
	Perform(gi int, ep *EvalParams) error
}

// EvalParams contains data that comes into program evaluation.
type EvalParams struct {
	Proto *config.ConsensusParams

	Specials *transactions.SpecialAddresses

	TxnGroup []transactions.SignedTxnWithAD

	Ledger LedgerForLogic

	// Amount "overpaid" by the transactions of the group.  Often 0.  When
	// positive, it can be spent by inner transactions.  Shared across a group's
	// txns, so that it can be updated (including upward, by overpaying inner
	// transactions). nil is treated as 0 (used before fee pooling is enabled).
	FeeCredit *uint64

	// Total allowable inner txns in a group transaction (nil before inner pooling enabled)
	pooledAllowedInners *int

	// The calling context, if this is an inner group
	caller *EvalContext

	log logging.Logger
}

// NewAppEvalParams creates an EvalParams to use while evaluating a top-level txgroup
func NewAppEvalParams(txgroup []transactions.SignedTxnWithAD, proto *config.ConsensusParams, specials *transactions.SpecialAddresses) *EvalParams {
	apps := 0
	for _, tx := range txgroup {
		if tx.Txn.Type == protocol.ApplicationCallTx {
			apps++
		}
	}

	var credit *uint64
	if proto.EnableFeePooling {
		credit = new(uint64)
		*credit = feeCredit(txgroup, proto.MinTxnFee)
	}

	var pooledAllowedInners *int
	if proto.EnableInnerTransactionPooling && apps > 0 {
		pooledAllowedInners = new(int)
		*pooledAllowedInners = proto.MaxTxGroupSize * proto.MaxInnerTransactions
	}

	return &EvalParams{
		TxnGroup:            txgroup,
		Proto:               proto,
		Specials:            specials,
		FeeCredit:           credit,
		pooledAllowedInners: pooledAllowedInners,
		log:                 logging.Base(),
	}
}

// feeCredit returns the extra fee supplied in this top-level txgroup compared
// to required minfee.
func feeCredit(txgroup []transactions.SignedTxnWithAD, minFee uint64) uint64 {
	feesPaid := uint64(0)
	for _, stxn := range txgroup {
		feesPaid = basics.AddSaturate(feesPaid, stxn.Txn.Fee.Raw)
	}
	feeNeeded := basics.MulSaturate(minFee, uint64(len(txgroup)))
	return basics.SubSaturate(feesPaid, feeNeeded)
}

// NewInnerEvalParams creates an EvalParams to be used while evaluating an inner group txgroup
func NewInnerEvalParams(txg []transactions.SignedTxnWithAD, caller *EvalContext) *EvalParams {
	// Unlike NewAppEvalParams, do not add fee credit here. SubmitInner has already done so.
	return &EvalParams{
		Proto:               caller.Proto,
		TxnGroup:            txg,
		FeeCredit:           caller.FeeCredit,
		Specials:            caller.Specials,
		pooledAllowedInners: caller.pooledAllowedInners,
		Ledger:              caller.Ledger,
		caller:              caller,
		log:                 caller.log,
	}
}

// SetLogger sets the logger programs and inner submissions report to.
func (ep *EvalParams) SetLogger(log logging.Logger) {
	ep.log = log
}

// IsInner reports whether the params describe an inner group.
func (ep *EvalParams) IsInner() bool {
	return ep.caller != nil
}

// RemainingInners returns how many more inner transactions the group may issue,
// or -1 when inner pooling is disabled.
func (ep *EvalParams) RemainingInners() int {
	if ep.pooledAllowedInners == nil {
		return -1
	}
	return *ep.pooledAllowedInners
}

// EvalContext is the execution context of an application call.
type EvalContext struct {
	*EvalParams

	// the index of the transaction being evaluated
	groupIndex int
	// the transaction being evaluated (initialized from groupIndex + ep.TxnGroup)
	Txn *transactions.SignedTxnWithAD

	appID   basics.AppIndex
	appAddr basics.Address
}

// EvalContract executes the program of application aid for the call at
// position gi of params.TxnGroup. pass reports whether the call is approved;
// when it is not, err holds the reason.
func EvalContract(gi int, aid basics.AppIndex, params *EvalParams) (pass bool, cx *EvalContext, err error) {
	if params.Ledger == nil {
		return false, nil, errors.New("no ledger in contract eval")
	}
	if aid == 0 {
		return false, nil, errors.New("0 appId in contract eval")
	}
	if gi < 0 || gi >= len(params.TxnGroup) {
		return false, nil, fmt.Errorf("group index %d out of range for group of %d", gi, len(params.TxnGroup))
	}

	cx = &EvalContext{
		EvalParams: params,
		groupIndex: gi,
		Txn:        &params.TxnGroup[gi],
		appID:      aid,
		appAddr:    aid.Address(),
	}

	app, _, err := params.Ledger.AppParams(aid)
	if err != nil {
		return false, cx, err
	}
	program, ok := LookupProgram(app.Program)
	if !ok {
		return false, cx, fmt.Errorf("app %d runs unknown program %q", aid, app.Program)
	}

	run := program.Approval
	if cx.Txn.Txn.OnCompletion == transactions.ClearStateOC {
		run = program.ClearState
	}

	err = cx.run(run)
	if err != nil {
		cx.log.Debugf("app %d rejected txn %d: %v", aid, gi, err)
		return false, cx, err
	}
	return true, cx, nil
}

func (cx *EvalContext) run(fn func(ExecutionContext) error) (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = PanicError{x, string(debug.Stack())}
		}
	}()
	return fn(cx)
}

// AppID is the application being run.
func (cx *EvalContext) AppID() basics.AppIndex {
	return cx.appID
}

// GroupIndex implements ExecutionContext.
func (cx *EvalContext) GroupIndex() int {
	return cx.groupIndex
}

// GroupSize implements ExecutionContext.
func (cx *EvalContext) GroupSize() int {
	return len(cx.TxnGroup)
}

// GroupTxn implements ExecutionContext.
func (cx *EvalContext) GroupTxn(gi int) transactions.Transaction {
	return cx.TxnGroup[gi].Txn
}

// AppAddress implements ExecutionContext.
func (cx *EvalContext) AppAddress() basics.Address {
	return cx.appAddr
}

// AssetHolding implements ExecutionContext.
func (cx *EvalContext) AssetHolding(addr basics.Address, aidx basics.AssetIndex) (basics.AssetHolding, bool, error) {
	return cx.Ledger.AssetHolding(addr, aidx)
}

// Creating implements ExecutionContext.
func (cx *EvalContext) Creating() bool {
	return cx.Txn.Txn.ApplicationID == 0
}

func (cx *EvalContext) remainingInners() int {
	if cx.Proto.EnableInnerTransactionPooling && cx.pooledAllowedInners != nil {
		return *cx.pooledAllowedInners
	}
	return cx.Proto.MaxInnerTransactions - len(cx.Txn.EvalDelta.InnerTxns)
}

// SubmitInner implements ExecutionContext. The transaction is checked the
// way a top-level transaction would be, its fee shortfall is taken from the
// group's fee credit, and it is performed against the ledger immediately.
// Every failure is reported as a *SubmitError.
func (cx *EvalContext) SubmitInner(txn transactions.Transaction) error {
	err := cx.submitInner(txn)
	if err != nil {
		return &SubmitError{Err: err}
	}
	return nil
}

func (cx *EvalContext) submitInner(txn transactions.Transaction) error {
	if cx.remainingInners() < 1 {
		return fmt.Errorf("too many inner transactions %d with %d left",
			len(cx.Txn.EvalDelta.InnerTxns)+1, cx.remainingInners())
	}

	if txn.Sender != cx.appAddr {
		return fmt.Errorf("unauthorized sender %v, app %d controls %v", txn.Sender, cx.appID, cx.appAddr)
	}
	if txn.Type == protocol.ApplicationCallTx {
		return fmt.Errorf("inner application calls are not supported")
	}
	if !txn.Group.IsZero() {
		return fmt.Errorf("inner transaction cannot set a group")
	}

	// Inherit the validity window of the outer transaction.
	if txn.FirstValid == 0 && txn.LastValid == 0 {
		txn.FirstValid = cx.Txn.Txn.FirstValid
		txn.LastValid = cx.Txn.Txn.LastValid
	}
	if txn.GenesisID == "" {
		txn.GenesisID = cx.Txn.Txn.GenesisID
	}

	minFee := cx.Proto.MinTxnFee
	if txn.Fee.Raw < minFee {
		// See if the FeeCredit is enough to cover the shortfall
		shortfall := minFee - txn.Fee.Raw
		if cx.FeeCredit == nil || *cx.FeeCredit < shortfall {
			credit := uint64(0)
			if cx.FeeCredit != nil {
				credit = *cx.FeeCredit
			}
			return fmt.Errorf("fee too small: paid %d, need %d with %d credit", txn.Fee.Raw, minFee, credit)
		}
		*cx.FeeCredit -= shortfall
	} else {
		overpay := txn.Fee.Raw - minFee
		if cx.FeeCredit == nil {
			cx.FeeCredit = new(uint64)
		}
		*cx.FeeCredit = basics.AddSaturate(*cx.FeeCredit, overpay)
	}

	// Recall that WellFormed does not care about individual
	// transaction fees because of fee pooling. Checked above.
	var specials transactions.SpecialAddresses
	if cx.Specials != nil {
		specials = *cx.Specials
	}
	err := txn.WellFormed(specials, *cx.Proto)
	if err != nil {
		return err
	}

	// Decrement allowed inners *before* execution.
	if cx.pooledAllowedInners != nil {
		*cx.pooledAllowedInners--
	}

	ep := NewInnerEvalParams([]transactions.SignedTxnWithAD{{SignedTxn: transactions.SignedTxn{Txn: txn}}}, cx)
	err = cx.Ledger.Perform(0, ep)
	if err != nil {
		return err
	}
	cx.Txn.EvalDelta.InnerTxns = append(cx.Txn.EvalDelta.InnerTxns, ep.TxnGroup...)
	cx.log.Debugf("app %d issued inner %s from %v", cx.appID, txn.Type, txn.Sender)
	return nil
}
