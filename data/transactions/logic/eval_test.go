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

package logic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/data/transactions/logictest"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/test/partitiontest"
)

const (
	testApp   basics.AppIndex   = 888
	testAsset basics.AssetIndex = 7
)

var (
	user     = basics.Address{0x75, 0x73, 0x65, 0x72}
	creator  = basics.Address{0x63, 0x72}
	feeSink  = basics.Address{0xfe, 0xe5}
	appAddr  = testApp.Address()
	specials = transactions.SpecialAddresses{FeeSink: feeSink, RewardsPool: basics.Address{0x77}}
)

func testProto() *config.ConsensusParams {
	proto := config.Consensus[protocol.ConsensusCurrentVersion]
	return &proto
}

func makeTestLedger(program string) *logictest.Ledger {
	ledger := logictest.MakeLedger(map[basics.Address]uint64{
		user:    10_000_000,
		appAddr: 1_000_000,
	})
	ledger.NewApp(creator, testApp, program)
	ledger.NewAsset(creator, testAsset, basics.AssetParams{Total: 1000, UnitName: "T"})
	return ledger
}

func callTxn(fee uint64) transactions.SignedTxnWithAD {
	var stxn transactions.SignedTxnWithAD
	stxn.Txn = transactions.Transaction{
		Type: protocol.ApplicationCallTx,
		Header: transactions.Header{
			Sender:     user,
			Fee:        basics.MicroAlgos{Raw: fee},
			FirstValid: 10,
			LastValid:  1010,
			GenesisID:  "test-v1",
		},
		ApplicationCallTxnFields: transactions.ApplicationCallTxnFields{ApplicationID: testApp},
	}
	return stxn
}

func depositTxn(fee uint64) transactions.SignedTxnWithAD {
	var stxn transactions.SignedTxnWithAD
	stxn.Txn = transactions.Transaction{
		Type: protocol.AssetTransferTx,
		Header: transactions.Header{
			Sender:     user,
			Fee:        basics.MicroAlgos{Raw: fee},
			FirstValid: 10,
			LastValid:  1010,
		},
		AssetTransferTxnFields: transactions.AssetTransferTxnFields{
			XferAsset:     testAsset,
			AssetAmount:   0,
			AssetReceiver: appAddr,
		},
	}
	return stxn
}

func evalParams(ledger logic.LedgerForLogic, group ...transactions.SignedTxnWithAD) *logic.EvalParams {
	ep := logic.NewAppEvalParams(group, testProto(), &specials)
	ep.Ledger = ledger
	return ep
}

func TestEvalContractOptIn(t *testing.T) {
	partitiontest.PartitionTest(t)

	ledger := makeTestLedger(logic.AutoOptInProgramName)
	ep := evalParams(ledger, callTxn(2000), depositTxn(1000))
	require.Equal(t, uint64(1000), *ep.FeeCredit)

	pass, cx, err := logic.EvalContract(0, testApp, ep)
	require.NoError(t, err)
	require.True(t, pass)
	require.Equal(t, testApp, cx.AppID())

	_, ok, err := ledger.AssetHolding(appAddr, testAsset)
	require.NoError(t, err)
	require.True(t, ok)

	// The opt-in was paid for by the caller's overpayment.
	require.Zero(t, *ep.FeeCredit)
	require.Equal(t, uint64(1_000_000), ledger.Balance(appAddr).Raw)

	inners := ep.TxnGroup[0].EvalDelta.InnerTxns
	require.Len(t, inners, 1)
	inner := inners[0].Txn
	require.Equal(t, appAddr, inner.Sender)
	require.True(t, inner.IsOptIn(appAddr))
	require.Equal(t, basics.Round(10), inner.FirstValid)
	require.Equal(t, basics.Round(1010), inner.LastValid)
	require.Equal(t, "test-v1", inner.GenesisID)
	require.Len(t, ledger.Performed(), 1)

	// A second deposit of the same asset needs nothing more.
	ep = evalParams(ledger, callTxn(2000), depositTxn(1000))
	pass, _, err = logic.EvalContract(0, testApp, ep)
	require.NoError(t, err)
	require.True(t, pass)
	require.Empty(t, ep.TxnGroup[0].EvalDelta.InnerTxns)
	require.Len(t, ledger.Performed(), 1)
}

func TestEvalContractFeeShortfall(t *testing.T) {
	partitiontest.PartitionTest(t)

	ledger := makeTestLedger(logic.AutoOptInProgramName)
	ep := evalParams(ledger, callTxn(1000), depositTxn(1000))

	pass, _, err := logic.EvalContract(0, testApp, ep)
	require.False(t, pass)
	var se *logic.SubmitError
	require.ErrorAs(t, err, &se)
	require.Contains(t, err.Error(), "fee too small")
	require.Empty(t, ledger.Performed())
}

func TestEvalContractPerformFailure(t *testing.T) {
	partitiontest.PartitionTest(t)

	boom := errors.New("ledger unavailable")
	ledger := makeTestLedger(logic.AutoOptInProgramName)
	ledger.FailPerform(boom)
	ep := evalParams(ledger, callTxn(2000), depositTxn(1000))

	pass, _, err := logic.EvalContract(0, testApp, ep)
	require.False(t, pass)
	var se *logic.SubmitError
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, boom)
}

func TestEvalContractRejections(t *testing.T) {
	partitiontest.PartitionTest(t)

	ledger := makeTestLedger(logic.AutoOptInProgramName)

	pass, _, err := logic.EvalContract(0, testApp, evalParams(ledger, callTxn(1000)))
	require.False(t, pass)
	var gse *logic.GroupStructureError
	require.ErrorAs(t, err, &gse)

	deposit := depositTxn(1000)
	deposit.Txn.AssetReceiver = user
	pass, _, err = logic.EvalContract(0, testApp, evalParams(ledger, callTxn(1000), deposit))
	require.False(t, pass)
	var wde *logic.WrongDestinationError
	require.ErrorAs(t, err, &wde)

	require.Empty(t, ledger.Performed())
}

func TestEvalContractClearState(t *testing.T) {
	partitiontest.PartitionTest(t)

	ledger := makeTestLedger(logic.AutoOptInProgramName)
	call := callTxn(1000)
	call.Txn.OnCompletion = transactions.ClearStateOC

	pass, _, err := logic.EvalContract(0, testApp, evalParams(ledger, call))
	require.NoError(t, err)
	require.True(t, pass)
}

func TestEvalContractSetup(t *testing.T) {
	partitiontest.PartitionTest(t)

	ledger := makeTestLedger("no-such-program")

	_, _, err := logic.EvalContract(0, testApp, logic.NewAppEvalParams(
		[]transactions.SignedTxnWithAD{callTxn(1000)}, testProto(), &specials))
	require.ErrorContains(t, err, "no ledger")

	_, _, err = logic.EvalContract(0, 0, evalParams(ledger, callTxn(1000)))
	require.ErrorContains(t, err, "0 appId")

	_, _, err = logic.EvalContract(3, testApp, evalParams(ledger, callTxn(1000)))
	require.ErrorContains(t, err, "out of range")

	_, _, err = logic.EvalContract(0, testApp, evalParams(ledger, callTxn(1000)))
	require.ErrorContains(t, err, "unknown program")

	_, _, err = logic.EvalContract(0, 999, evalParams(ledger, callTxn(1000)))
	require.ErrorContains(t, err, "no such app")
}

func registerTestProgram(t *testing.T, name string, approval func(logic.ExecutionContext) error) {
	if _, ok := logic.LookupProgram(name); ok {
		return
	}
	require.NoError(t, logic.Register(name, logic.Program{
		Approval:   approval,
		ClearState: func(logic.ExecutionContext) error { return nil },
	}))
}

func TestEvalContractPanic(t *testing.T) {
	partitiontest.PartitionTest(t)

	registerTestProgram(t, "test-panic", func(logic.ExecutionContext) error {
		panic("kaboom")
	})
	ledger := makeTestLedger("test-panic")

	pass, _, err := logic.EvalContract(0, testApp, evalParams(ledger, callTxn(1000)))
	require.False(t, pass)
	var pe logic.PanicError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "kaboom", pe.PanicValue)
}

func selfPay(sender basics.Address, fee uint64) transactions.Transaction {
	return transactions.Transaction{
		Type:             protocol.PaymentTx,
		Header:           transactions.Header{Sender: sender, Fee: basics.MicroAlgos{Raw: fee}},
		PaymentTxnFields: transactions.PaymentTxnFields{Receiver: sender},
	}
}

func TestSubmitInnerPooledLimit(t *testing.T) {
	partitiontest.PartitionTest(t)

	proto := testProto()
	issued := 0
	registerTestProgram(t, "test-spam", func(cx logic.ExecutionContext) error {
		for {
			err := cx.SubmitInner(selfPay(cx.AppAddress(), proto.MinTxnFee))
			if err != nil {
				return err
			}
			issued++
		}
	})
	ledger := makeTestLedger("test-spam")
	ep := evalParams(ledger, callTxn(1000))
	require.Equal(t, proto.MaxTxGroupSize*proto.MaxInnerTransactions, ep.RemainingInners())

	pass, _, err := logic.EvalContract(0, testApp, ep)
	require.False(t, pass)
	require.ErrorContains(t, err, "too many inner transactions")
	require.Equal(t, proto.MaxTxGroupSize*proto.MaxInnerTransactions, issued)
	require.Zero(t, ep.RemainingInners())
}

func TestSubmitInnerChecks(t *testing.T) {
	partitiontest.PartitionTest(t)

	proto := testProto()
	var submitErr error
	var build func(cx logic.ExecutionContext) transactions.Transaction
	registerTestProgram(t, "test-submit", func(cx logic.ExecutionContext) error {
		submitErr = cx.SubmitInner(build(cx))
		return nil
	})
	ledger := makeTestLedger("test-submit")

	cases := []struct {
		name  string
		build func(cx logic.ExecutionContext) transactions.Transaction
		err   string
	}{
		{"sender", func(cx logic.ExecutionContext) transactions.Transaction {
			return selfPay(user, proto.MinTxnFee)
		}, "unauthorized sender"},
		{"appl", func(cx logic.ExecutionContext) transactions.Transaction {
			txn := selfPay(cx.AppAddress(), proto.MinTxnFee)
			txn.Type = protocol.ApplicationCallTx
			txn.PaymentTxnFields = transactions.PaymentTxnFields{}
			txn.ApplicationID = testApp
			return txn
		}, "inner application calls"},
		{"group", func(cx logic.ExecutionContext) transactions.Transaction {
			txn := selfPay(cx.AppAddress(), proto.MinTxnFee)
			txn.Group[0] = 1
			return txn
		}, "cannot set a group"},
		{"malformed", func(cx logic.ExecutionContext) transactions.Transaction {
			txn := selfPay(cx.AppAddress(), proto.MinTxnFee)
			txn.PaymentTxnFields.CloseRemainderTo = cx.AppAddress()
			return txn
		}, "close account to its sender"},
		{"unfunded", func(cx logic.ExecutionContext) transactions.Transaction {
			txn := selfPay(cx.AppAddress(), proto.MinTxnFee)
			txn.Receiver = user
			txn.Amount = basics.MicroAlgos{Raw: 1 << 40}
			return txn
		}, "insufficient balance"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			build = tc.build
			submitErr = nil
			pass, _, err := logic.EvalContract(0, testApp, evalParams(ledger, callTxn(1000)))
			require.NoError(t, err)
			require.True(t, pass)
			var se *logic.SubmitError
			require.ErrorAs(t, submitErr, &se)
			require.ErrorContains(t, submitErr, tc.err)
		})
	}
	require.Empty(t, ledger.Performed())
}

func TestSubmitInnerOverpayCredits(t *testing.T) {
	partitiontest.PartitionTest(t)

	proto := testProto()
	registerTestProgram(t, "test-overpay", func(cx logic.ExecutionContext) error {
		if err := cx.SubmitInner(selfPay(cx.AppAddress(), 3*proto.MinTxnFee)); err != nil {
			return err
		}
		return cx.SubmitInner(selfPay(cx.AppAddress(), 0))
	})
	ledger := makeTestLedger("test-overpay")
	ep := evalParams(ledger, callTxn(1000))

	pass, _, err := logic.EvalContract(0, testApp, ep)
	require.NoError(t, err)
	require.True(t, pass)
	require.Equal(t, proto.MinTxnFee, *ep.FeeCredit)
	require.Len(t, ep.TxnGroup[0].EvalDelta.InnerTxns, 2)
	require.Equal(t, uint64(1_000_000-3*proto.MinTxnFee), ledger.Balance(appAddr).Raw)
}
