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
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/test/partitiontest"
)

// mockContext records what a program asks of it.
type mockContext struct {
	gi       int
	group    []transactions.Transaction
	appAddr  basics.Address
	creating bool

	holdings   map[basics.AssetIndex]bool
	holdingErr error
	submitErr  error

	lookups   []basics.AssetIndex
	submitted []transactions.Transaction
}

func (m *mockContext) GroupIndex() int { return m.gi }
func (m *mockContext) GroupSize() int  { return len(m.group) }
func (m *mockContext) GroupTxn(gi int) transactions.Transaction {
	return m.group[gi]
}
func (m *mockContext) AppAddress() basics.Address { return m.appAddr }
func (m *mockContext) Creating() bool             { return m.creating }

func (m *mockContext) AssetHolding(addr basics.Address, aidx basics.AssetIndex) (basics.AssetHolding, bool, error) {
	m.lookups = append(m.lookups, aidx)
	if m.holdingErr != nil {
		return basics.AssetHolding{}, false, m.holdingErr
	}
	return basics.AssetHolding{}, m.holdings[aidx], nil
}

func (m *mockContext) SubmitInner(txn transactions.Transaction) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, txn)
	return nil
}

var (
	testAppAddr = basics.AppIndex(888).Address()
	testUser    = basics.Address{0x01, 0x02}
)

func appCall() transactions.Transaction {
	return transactions.Transaction{
		Type:   protocol.ApplicationCallTx,
		Header: transactions.Header{Sender: testUser},
		ApplicationCallTxnFields: transactions.ApplicationCallTxnFields{
			ApplicationID: 888,
		},
	}
}

func xferTo(receiver basics.Address, aid basics.AssetIndex) transactions.Transaction {
	return transactions.Transaction{
		Type:   protocol.AssetTransferTx,
		Header: transactions.Header{Sender: testUser},
		AssetTransferTxnFields: transactions.AssetTransferTxnFields{
			XferAsset:     aid,
			AssetAmount:   5,
			AssetReceiver: receiver,
		},
	}
}

func newMock(gi int, group ...transactions.Transaction) *mockContext {
	return &mockContext{
		gi:       gi,
		group:    group,
		appAddr:  testAppAddr,
		holdings: make(map[basics.AssetIndex]bool),
	}
}

func TestAutoOptInIssuesOptIn(t *testing.T) {
	partitiontest.PartitionTest(t)

	cx := newMock(0, appCall(), xferTo(testAppAddr, 7))
	require.NoError(t, ApproveAutoOptIn(cx))
	require.Len(t, cx.submitted, 1)

	inner := cx.submitted[0]
	require.Equal(t, protocol.AssetTransferTx, inner.Type)
	require.Equal(t, testAppAddr, inner.Sender)
	require.Equal(t, testAppAddr, inner.AssetReceiver)
	require.Equal(t, basics.AssetIndex(7), inner.XferAsset)
	require.Zero(t, inner.AssetAmount)
	require.True(t, inner.Fee.IsZero())
	require.True(t, inner.AssetCloseTo.IsZero())
	require.True(t, inner.IsOptIn(testAppAddr))
}

func TestAutoOptInAlreadyHolding(t *testing.T) {
	partitiontest.PartitionTest(t)

	cx := newMock(0, appCall(), xferTo(testAppAddr, 7))
	cx.holdings[7] = true
	require.NoError(t, ApproveAutoOptIn(cx))
	require.Empty(t, cx.submitted)
	require.Equal(t, []basics.AssetIndex{7}, cx.lookups)
}

func TestAutoOptInCreationApproves(t *testing.T) {
	partitiontest.PartitionTest(t)

	cx := newMock(0, appCall())
	cx.creating = true
	require.NoError(t, ApproveAutoOptIn(cx))
	require.Empty(t, cx.submitted)
	require.Empty(t, cx.lookups)
}

func TestAutoOptInNoSibling(t *testing.T) {
	partitiontest.PartitionTest(t)

	cx := newMock(0, appCall())
	err := ApproveAutoOptIn(cx)
	var gse *GroupStructureError
	require.ErrorAs(t, err, &gse)
	require.Equal(t, GroupStructureError{GroupIndex: 0, SiblingIndex: 1, GroupSize: 1}, *gse)
	require.Empty(t, cx.submitted)

	// A transfer before the call does not count.
	cx = newMock(1, xferTo(testAppAddr, 7), appCall())
	err = ApproveAutoOptIn(cx)
	require.ErrorAs(t, err, &gse)
	require.Equal(t, 2, gse.SiblingIndex)
	require.Empty(t, cx.submitted)
}

func TestAutoOptInWrongKind(t *testing.T) {
	partitiontest.PartitionTest(t)

	pay := transactions.Transaction{
		Type:             protocol.PaymentTx,
		Header:           transactions.Header{Sender: testUser},
		PaymentTxnFields: transactions.PaymentTxnFields{Receiver: testAppAddr},
	}
	cx := newMock(0, appCall(), pay)
	err := ApproveAutoOptIn(cx)
	var wke *WrongTransactionKindError
	require.ErrorAs(t, err, &wke)
	require.Equal(t, 1, wke.Index)
	require.Equal(t, protocol.AssetTransferTx, wke.Expected)
	require.Equal(t, protocol.PaymentTx, wke.Got)
	require.Empty(t, cx.submitted)
	require.Empty(t, cx.lookups)
}

func TestAutoOptInWrongDestination(t *testing.T) {
	partitiontest.PartitionTest(t)

	cx := newMock(0, appCall(), xferTo(testUser, 7))
	err := ApproveAutoOptIn(cx)
	var wde *WrongDestinationError
	require.ErrorAs(t, err, &wde)
	require.Equal(t, testUser, wde.Receiver)
	require.Equal(t, testAppAddr, wde.Expected)
	require.Empty(t, cx.submitted)
	require.Empty(t, cx.lookups)
}

func TestAutoOptInSubmitFailure(t *testing.T) {
	partitiontest.PartitionTest(t)

	boom := errors.New("boom")
	cx := newMock(0, appCall(), xferTo(testAppAddr, 7))
	cx.submitErr = boom
	err := ApproveAutoOptIn(cx)
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, boom)

	// An existing SubmitError is not wrapped twice.
	orig := &SubmitError{Err: boom}
	cx = newMock(0, appCall(), xferTo(testAppAddr, 7))
	cx.submitErr = orig
	err = ApproveAutoOptIn(cx)
	require.Same(t, orig, err)
}

func TestAutoOptInHoldingError(t *testing.T) {
	partitiontest.PartitionTest(t)

	boom := errors.New("lookup failed")
	cx := newMock(0, appCall(), xferTo(testAppAddr, 7))
	cx.holdingErr = boom
	require.ErrorIs(t, ApproveAutoOptIn(cx), boom)
	require.Empty(t, cx.submitted)
}

func TestAutoOptInClearStateApproves(t *testing.T) {
	partitiontest.PartitionTest(t)

	p, ok := LookupProgram(AutoOptInProgramName)
	require.True(t, ok)
	cx := newMock(0, appCall())
	require.NoError(t, p.ClearState(cx))
	require.Empty(t, cx.submitted)
}

// The program approves exactly when its sibling is an asset transfer to the
// application account, and issues at most one opt-in, only when needed.
func TestAutoOptInProperties(t *testing.T) {
	partitiontest.PartitionTest(t)

	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 16).Draw(t, "size")
		gi := rapid.IntRange(0, size-1).Draw(t, "gi")
		group := make([]transactions.Transaction, size)
		for i := range group {
			if i == gi {
				group[i] = appCall()
				continue
			}
			receiver := testUser
			if rapid.Bool().Draw(t, "toApp") {
				receiver = testAppAddr
			}
			aid := basics.AssetIndex(rapid.Uint64Range(1, 4).Draw(t, "aid"))
			group[i] = xferTo(receiver, aid)
			if rapid.Bool().Draw(t, "pay") {
				group[i].Type = protocol.PaymentTx
			}
		}
		cx := newMock(gi, group...)
		for aid := basics.AssetIndex(1); aid <= 4; aid++ {
			cx.holdings[aid] = rapid.Bool().Draw(t, "held")
		}

		err := ApproveAutoOptIn(cx)

		if gi+1 >= size {
			var gse *GroupStructureError
			require.ErrorAs(t, err, &gse)
			require.Empty(t, cx.submitted)
			return
		}
		sib := group[gi+1]
		if sib.Type != protocol.AssetTransferTx {
			var wke *WrongTransactionKindError
			require.ErrorAs(t, err, &wke)
			require.Empty(t, cx.submitted)
			return
		}
		if sib.AssetReceiver != testAppAddr {
			var wde *WrongDestinationError
			require.ErrorAs(t, err, &wde)
			require.Empty(t, cx.submitted)
			return
		}
		require.NoError(t, err)
		if cx.holdings[sib.XferAsset] {
			require.Empty(t, cx.submitted)
		} else {
			require.Len(t, cx.submitted, 1)
			require.Equal(t, sib.XferAsset, cx.submitted[0].XferAsset)
			require.True(t, cx.submitted[0].IsOptIn(testAppAddr))
		}
	})
}
