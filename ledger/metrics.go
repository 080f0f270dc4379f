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
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/util/metrics"
)

type metricsTracker struct {
	reg *metrics.Registry

	ledgerGroupsCommitted        *metrics.Counter
	ledgerGroupsRejected         *metrics.Counter
	ledgerTransactionsTotal      *metrics.Counter
	ledgerInnerTransactionsTotal *metrics.Counter
	ledgerRound                  *metrics.Gauge
}

func (mt *metricsTracker) loadFromDisk(reg *metrics.Registry, latest basics.Round) {
	mt.reg = reg
	mt.ledgerGroupsCommitted = metrics.MakeCounterWithRegistry(reg, metrics.LedgerGroupsCommitted)
	mt.ledgerGroupsRejected = metrics.MakeCounterWithRegistry(reg, metrics.LedgerGroupsRejected)
	mt.ledgerTransactionsTotal = metrics.MakeCounterWithRegistry(reg, metrics.LedgerTransactionsTotal)
	mt.ledgerInnerTransactionsTotal = metrics.MakeCounterWithRegistry(reg, metrics.LedgerInnerTransactionsTotal)
	mt.ledgerRound = metrics.MakeGaugeWithRegistry(reg, metrics.LedgerRound)
	mt.ledgerRound.Set(uint64(latest))
}

func (mt *metricsTracker) close() {
	if mt.ledgerGroupsCommitted != nil {
		mt.ledgerGroupsCommitted.Deregister(mt.reg)
		mt.ledgerGroupsCommitted = nil
	}
	if mt.ledgerGroupsRejected != nil {
		mt.ledgerGroupsRejected.Deregister(mt.reg)
		mt.ledgerGroupsRejected = nil
	}
	if mt.ledgerTransactionsTotal != nil {
		mt.ledgerTransactionsTotal.Deregister(mt.reg)
		mt.ledgerTransactionsTotal = nil
	}
	if mt.ledgerInnerTransactionsTotal != nil {
		mt.ledgerInnerTransactionsTotal.Deregister(mt.reg)
		mt.ledgerInnerTransactionsTotal = nil
	}
	if mt.ledgerRound != nil {
		mt.ledgerRound.Deregister(mt.reg)
		mt.ledgerRound = nil
	}
}

func (mt *metricsTracker) committed(rnd basics.Round, txgroup []transactions.SignedTxnWithAD) {
	mt.ledgerRound.Set(uint64(rnd))
	mt.ledgerGroupsCommitted.Inc(nil)
	mt.ledgerTransactionsTotal.AddUint64(uint64(len(txgroup)), nil)
	mt.ledgerInnerTransactionsTotal.AddUint64(countInner(txgroup), nil)
}

func (mt *metricsTracker) rejected() {
	mt.ledgerGroupsRejected.Inc(nil)
}

func countInner(txgroup []transactions.SignedTxnWithAD) (n uint64) {
	for _, stxn := range txgroup {
		inner := stxn.EvalDelta.InnerTxns
		n += uint64(len(inner)) + countInner(inner)
	}
	return
}
