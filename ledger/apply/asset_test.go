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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	ledgertesting "github.com/algorand/autooptin/ledger/testing"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/test/partitiontest"
)

// createAsset runs an asset creation through AssetConfig and returns the
// new asset index.
func createAsset(t *testing.T, bal *mockBalances, creator basics.Address, params basics.AssetParams, txnCounter uint64) basics.AssetIndex {
	var ad transactions.ApplyData
	cc := transactions.AssetConfigTxnFields{AssetParams: params}
	require.NoError(t, AssetConfig(cc, transactions.Header{Sender: creator}, bal, spec, &ad, txnCounter))
	require.Equal(t, basics.AssetIndex(txnCounter+1), ad.ConfigAsset)
	return ad.ConfigAsset
}

func TestAssetCreate(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)

	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 100, UnitName: "T", Manager: creator}, 41)
	require.Equal(t, basics.AssetIndex(42), aidx)
	require.Equal(t, uint64(100), bal.b[creator].Assets[aidx].Amount)
	require.Equal(t, uint64(100), bal.b[creator].AssetParams[aidx].Total)

	got, ok, err := bal.GetCreator(basics.CreatableIndex(aidx), basics.AssetCreatable)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, creator, got)
}

func TestAssetReconfigureAndDestroy(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	other := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 100, Manager: creator, Reserve: creator}, 1)

	var ad transactions.ApplyData
	reconfig := transactions.AssetConfigTxnFields{
		ConfigAsset: aidx,
		AssetParams: basics.AssetParams{Manager: creator, Reserve: other},
	}
	err := AssetConfig(reconfig, transactions.Header{Sender: other}, bal, spec, &ad, 5)
	require.ErrorContains(t, err, "should be issued by the manager")

	require.NoError(t, AssetConfig(reconfig, transactions.Header{Sender: creator}, bal, spec, &ad, 5))
	params := bal.b[creator].AssetParams[aidx]
	require.Equal(t, other, params.Reserve)
	require.Equal(t, uint64(100), params.Total)

	destroy := transactions.AssetConfigTxnFields{ConfigAsset: aidx}
	require.NoError(t, AssetConfig(destroy, transactions.Header{Sender: creator}, bal, spec, &ad, 6))
	require.NotContains(t, bal.b[creator].Assets, aidx)
	require.NotContains(t, bal.b[creator].AssetParams, aidx)
	_, ok, _ := bal.GetCreator(basics.CreatableIndex(aidx), basics.AssetCreatable)
	require.False(t, ok)
}

func TestAssetOptIn(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	holder := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 100, DefaultFrozen: true}, 1)

	optIn := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetReceiver: holder}
	var ad transactions.ApplyData
	require.NoError(t, AssetTransfer(optIn, transactions.Header{Sender: holder}, bal, spec, &ad))
	holding, ok := bal.b[holder].Assets[aidx]
	require.True(t, ok)
	require.Zero(t, holding.Amount)
	require.True(t, holding.Frozen)

	// A second opt-in changes nothing.
	puts := bal.put
	require.NoError(t, AssetTransfer(optIn, transactions.Header{Sender: holder}, bal, spec, &ad))
	require.Equal(t, puts, bal.put)

	missing := transactions.AssetTransferTxnFields{XferAsset: aidx + 100, AssetReceiver: holder}
	err := AssetTransfer(missing, transactions.Header{Sender: holder}, bal, spec, &ad)
	require.ErrorContains(t, err, "does not exist")
}

func TestAssetOptInLimit(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	holder := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	maxAssets := bal.ConsensusParams().MaxAssetsPerAccount

	held := make(map[basics.AssetIndex]basics.AssetHolding, maxAssets)
	for i := 0; i < maxAssets; i++ {
		held[basics.AssetIndex(1000+i)] = basics.AssetHolding{}
	}
	bal.b[holder] = basics.AccountData{Assets: held}
	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 1}, 1)

	optIn := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetReceiver: holder}
	var ad transactions.ApplyData
	err := AssetTransfer(optIn, transactions.Header{Sender: holder}, bal, spec, &ad)
	require.ErrorContains(t, err, "too many assets")
}

func TestAssetTransfer(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	holder := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 100}, 1)

	var ad transactions.ApplyData
	optIn := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetReceiver: holder}
	require.NoError(t, AssetTransfer(optIn, transactions.Header{Sender: holder}, bal, spec, &ad))

	send := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetAmount: 10, AssetReceiver: holder}
	require.NoError(t, AssetTransfer(send, transactions.Header{Sender: creator}, bal, spec, &ad))
	require.Equal(t, uint64(90), bal.b[creator].Assets[aidx].Amount)
	require.Equal(t, uint64(10), bal.b[holder].Assets[aidx].Amount)

	send.AssetAmount = 1000
	err := AssetTransfer(send, transactions.Header{Sender: creator}, bal, spec, &ad)
	require.ErrorContains(t, err, "underflow")

	send.AssetAmount = 1
	send.AssetReceiver = ledgertesting.RandomAddress()
	err = AssetTransfer(send, transactions.Header{Sender: creator}, bal, spec, &ad)
	require.ErrorContains(t, err, "must optin")
}

func TestAssetTransferFrozen(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	holder := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 100}, 1)
	bal.b[creator].Assets[aidx] = basics.AssetHolding{Amount: 95}
	bal.b[holder] = basics.AccountData{Assets: map[basics.AssetIndex]basics.AssetHolding{aidx: {Amount: 5, Frozen: true}}}

	send := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetAmount: 1, AssetReceiver: creator}
	var ad transactions.ApplyData
	err := AssetTransfer(send, transactions.Header{Sender: holder}, bal, spec, &ad)
	require.ErrorContains(t, err, "frozen")

	// Closing out to the creator is allowed even when frozen.
	closeOut := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetCloseTo: creator}
	require.NoError(t, AssetTransfer(closeOut, transactions.Header{Sender: holder}, bal, spec, &ad))
	require.Equal(t, uint64(5), ad.AssetClosingAmount)
	require.NotContains(t, bal.b[holder].Assets, aidx)
	require.Equal(t, uint64(100), bal.b[creator].Assets[aidx].Amount)
}

func TestAssetCreatorCannotClose(t *testing.T) {
	partitiontest.PartitionTest(t)

	creator := ledgertesting.RandomAddress()
	bal := makeMockBalances(protocol.ConsensusCurrentVersion)
	aidx := createAsset(t, bal, creator, basics.AssetParams{Total: 100}, 1)

	closeOut := transactions.AssetTransferTxnFields{XferAsset: aidx, AssetCloseTo: ledgertesting.RandomAddress()}
	var ad transactions.ApplyData
	err := AssetTransfer(closeOut, transactions.Header{Sender: creator}, bal, spec, &ad)
	require.ErrorContains(t, err, "allocating account")
}
