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

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/protocol"
)

// AutoOptInProgramName is the registered name of AutoOptInProgram.
const AutoOptInProgramName = "auto-optin"

// AutoOptInProgram approves a call only when it is immediately followed by an
// asset transfer to the application account, opting the account into the
// asset first when needed.
var AutoOptInProgram = Program{
	Approval:   ApproveAutoOptIn,
	ClearState: approveAlways,
}

func init() {
	if err := Register(AutoOptInProgramName, AutoOptInProgram); err != nil {
		panic(err)
	}
}

// ApproveAutoOptIn is the approval logic of AutoOptInProgram. The creation
// call is approved unconditionally. Later calls require the next transaction
// in the group to be an asset transfer to the application account; if that
// account holds no record for the asset, one zero-amount self transfer is
// submitted as an inner transaction before approving.
func ApproveAutoOptIn(cx ExecutionContext) error {
	if cx.Creating() {
		return nil
	}

	own := cx.GroupIndex()
	sibling := own + 1
	if sibling >= cx.GroupSize() {
		return &GroupStructureError{GroupIndex: own, SiblingIndex: sibling, GroupSize: cx.GroupSize()}
	}

	xfer := cx.GroupTxn(sibling)
	if xfer.Type != protocol.AssetTransferTx {
		return &WrongTransactionKindError{Index: sibling, Expected: protocol.AssetTransferTx, Got: xfer.Type}
	}

	appAddr := cx.AppAddress()
	if xfer.AssetReceiver != appAddr {
		return &WrongDestinationError{Index: sibling, Receiver: xfer.AssetReceiver, Expected: appAddr}
	}

	_, ok, err := cx.AssetHolding(appAddr, xfer.XferAsset)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	optIn := transactions.Transaction{
		Type: protocol.AssetTransferTx,
		Header: transactions.Header{
			Sender: appAddr,
			Fee:    basics.MicroAlgos{Raw: 0},
		},
		AssetTransferTxnFields: transactions.AssetTransferTxnFields{
			XferAsset:     xfer.XferAsset,
			AssetAmount:   0,
			AssetReceiver: appAddr,
		},
	}
	if err := cx.SubmitInner(optIn); err != nil {
		var se *SubmitError
		if errors.As(err, &se) {
			return err
		}
		return &SubmitError{Err: err}
	}
	return nil
}
