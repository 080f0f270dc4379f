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

package apply

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	ledgertesting "github.com/algorand/autooptin/ledger/testing"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/test/partitiontest"
)

func createApp(t *testing.T, bal *mockBalances, creator basics.Address, txnCounter uint64) basics.AppIndex {
	ac := transactions.ApplicationCallTxnFields{Program: logic.AutoOptInProgramName}
	var ad transactions.ApplyData
	require.NoError(t, ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, txnCounter))
	return ad.ApplicationID
}

func TestAppCallApplyCreate(t *testing.T) {
	partitiontest.PartitionTest(t)

	a := require.New(t)
	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)

	var ep logic.EvalParams
	ac := transactions.ApplicationCallTxnFields{Program: logic.AutoOptInProgramName}
	err := ApplicationCall(ac, transactions.Header{Sender: creator}, bal, nil, 0, &ep, 9)
	a.ErrorContains(err, "empty ApplyData")
	a.Zero(bal.put)

	appIdx := createApp(t, bal, creator, 9)
	a.Equal(basics.AppIndex(10), appIdx)
	a.Equal(logic.AutoOptInProgramName, bal.b[creator].AppParams[appIdx].Program)
	a.Equal(1, bal.allocated)
	a.Equal([]basics.AppIndex{appIdx}, bal.evals)
}

func TestAppCallCreateUnknownProgram(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)

	ac := transactions.ApplicationCallTxnFields{Program: "does-not-exist"}
	var ad transactions.ApplyData
	err := ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 1)
	require.ErrorContains(t, err, "unknown program")
	require.Zero(t, bal.put)
	require.Empty(t, bal.evals)
}

func TestAppCallCreateLimit(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	maxApps := bal.ConsensusParams().MaxAppsCreated
	for i := 0; i < maxApps; i++ {
		createApp(t, bal, creator, uint64(100+i))
	}

	ac := transactions.ApplicationCallTxnFields{Program: logic.AutoOptInProgramName}
	var ad transactions.ApplyData
	err := ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 1)
	require.ErrorContains(t, err, "max created apps")

	// The future protocol lifts the limit.
	bal.ConsensusVersion = protocol.ConsensusFuture
	require.NoError(t, ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 1))
}

func TestAppCallRejected(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	appIdx := createApp(t, bal, creator, 1)

	ac := transactions.ApplicationCallTxnFields{ApplicationID: appIdx}
	var ad transactions.ApplyData
	ad.EvalDelta.InnerTxns = []transactions.SignedTxnWithAD{{}}

	bal.pass = false
	err := ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 5)
	require.ErrorContains(t, err, "rejected")
	require.Empty(t, ad.EvalDelta.InnerTxns)

	cause := &logic.WrongDestinationError{Index: 1}
	bal.evalErr = cause
	err = ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 5)
	var wde *logic.WrongDestinationError
	require.ErrorAs(t, err, &wde)
	require.Same(t, cause, wde)

	ac.ApplicationID = appIdx + 1000
	bal.pass, bal.evalErr = true, nil
	err = ApplicationCall(ac, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 5)
	require.ErrorContains(t, err, "does not exist")
}

func TestAppCallOptInCloseOut(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	user := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	appIdx := createApp(t, bal, creator, 1)

	var ad transactions.ApplyData
	optIn := transactions.ApplicationCallTxnFields{ApplicationID: appIdx, OnCompletion: transactions.OptInOC}
	require.NoError(t, ApplicationCall(optIn, transactions.Header{Sender: user}, bal, &ad, 0, nil, 5))
	require.True(t, bal.b[user].AppOptIns[appIdx])

	err := ApplicationCall(optIn, transactions.Header{Sender: user}, bal, &ad, 0, nil, 6)
	require.ErrorContains(t, err, "already opted in")

	closeOut := transactions.ApplicationCallTxnFields{ApplicationID: appIdx, OnCompletion: transactions.CloseOutOC}
	require.NoError(t, ApplicationCall(closeOut, transactions.Header{Sender: user}, bal, &ad, 0, nil, 7))
	require.False(t, bal.b[user].AppOptIns[appIdx])

	err = ApplicationCall(closeOut, transactions.Header{Sender: user}, bal, &ad, 0, nil, 8)
	require.ErrorContains(t, err, "not opted in")
}

func TestAppCallClearState(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	user := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	appIdx := createApp(t, bal, creator, 1)

	var ad transactions.ApplyData
	clearState := transactions.ApplicationCallTxnFields{ApplicationID: appIdx, OnCompletion: transactions.ClearStateOC}
	err := ApplicationCall(clearState, transactions.Header{Sender: user}, bal, &ad, 0, nil, 5)
	require.ErrorContains(t, err, "not currently opted in")

	bal.b[user] = basics.AccountData{AppOptIns: map[basics.AppIndex]bool{appIdx: true}}

	// A failing clear state program does not stop the clear.
	bal.pass, bal.evalErr = false, errors.New("clear failed")
	evals := len(bal.evals)
	require.NoError(t, ApplicationCall(clearState, transactions.Header{Sender: user}, bal, &ad, 0, nil, 6))
	require.Len(t, bal.evals, evals+1)
	require.False(t, bal.b[user].AppOptIns[appIdx])

	// Clearing out of a deleted app does not run anything.
	bal.b[user] = basics.AccountData{AppOptIns: map[basics.AppIndex]bool{appIdx + 50: true}}
	clearState.ApplicationID = appIdx + 50
	require.NoError(t, ApplicationCall(clearState, transactions.Header{Sender: user}, bal, &ad, 0, nil, 7))
	require.Len(t, bal.evals, evals+1)
	require.Empty(t, bal.b[user].AppOptIns)
}

func TestAppCallDelete(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	appIdx := createApp(t, bal, creator, 1)

	var ad transactions.ApplyData
	del := transactions.ApplicationCallTxnFields{ApplicationID: appIdx, OnCompletion: transactions.DeleteApplicationOC}
	require.NoError(t, ApplicationCall(del, transactions.Header{Sender: creator}, bal, &ad, 0, nil, 5))
	require.NotContains(t, bal.b[creator].AppParams, appIdx)
	require.Equal(t, 1, bal.deallocated)

	_, ok, err := bal.GetCreator(basics.CreatableIndex(appIdx), basics.AppCreatable)
	require.NoError(t, err)
	require.False(t, ok)
}
