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

var spec = transactions.SpecialAddresses{
	FeeSink:     ledgertesting.RandomAddress(),
	RewardsPool: ledgertesting.RandomAddress(),
}

func TestPaymentApply(t *testing.T) {
	partitiontest.PartitionTest(t)

	src := ledgertesting.RandomAddress()
	dst := ledgertesting.RandomAddress()
	bal := makeMockBalancesWithAccounts(protocol.ConsensusCurrentVersion, map[basics.Address]basics.AccountData{
		src: {MicroAlgos: basics.MicroAlgos{Raw: 1000}},
	})

	pay := transactions.PaymentTxnFields{Receiver: dst, Amount: basics.MicroAlgos{Raw: 50}}
	var ad transactions.ApplyData
	require.NoError(t, Payment(pay, transactions.Header{Sender: src}, bal, spec, &ad))
	require.Equal(t, uint64(950), bal.b[src].MicroAlgos.Raw)
	require.Equal(t, uint64(50), bal.b[dst].MicroAlgos.Raw)
	require.True(t, ad.ClosingAmount.IsZero())

	pay.Amount = basics.MicroAlgos{Raw: 5000}
	require.Error(t, Payment(pay, transactions.Header{Sender: src}, bal, spec, &ad))
}

func TestPaymentClose(t *testing.T) {
	partitiontest.PartitionTest(t)

	src := ledgertesting.RandomAddress()
	dst := ledgertesting.RandomAddress()
	closeTo := ledgertesting.RandomAddress()
	bal := makeMockBalancesWithAccounts(protocol.ConsensusCurrentVersion, map[basics.Address]basics.AccountData{
		src: {MicroAlgos: basics.MicroAlgos{Raw: 1000}},
	})

	pay := transactions.PaymentTxnFields{
		Receiver:         dst,
		Amount:           basics.MicroAlgos{Raw: 100},
		CloseRemainderTo: closeTo,
	}
	var ad transactions.ApplyData
	require.NoError(t, Payment(pay, transactions.Header{Sender: src}, bal, spec, &ad))
	require.Equal(t, uint64(900), ad.ClosingAmount.Raw)
	require.True(t, bal.b[src].IsZero())
	require.Equal(t, uint64(900), bal.b[closeTo].MicroAlgos.Raw)
}

func TestPaymentCloseWithAssets(t *testing.T) {
	partitiontest.PartitionTest(t)

	src := ledgertesting.RandomAddress()
	bal := makeMockBalancesWithAccounts(protocol.ConsensusCurrentVersion, map[basics.Address]basics.AccountData{
		src: {
			MicroAlgos: basics.MicroAlgos{Raw: 1000},
			Assets:     map[basics.AssetIndex]basics.AssetHolding{7: {}},
		},
	})

	pay := transactions.PaymentTxnFields{CloseRemainderTo: ledgertesting.RandomAddress()}
	var ad transactions.ApplyData
	err := Payment(pay, transactions.Header{Sender: src}, bal, spec, &ad)
	require.ErrorContains(t, err, "with 1 assets")
}
