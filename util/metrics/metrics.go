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

// Package metrics provides counters and gauges backed by Prometheus collectors.
package metrics

// MetricName describes the name and description of a single metric
type MetricName struct {
	Name        string
	Description string
}

var (
	// LedgerGroupsCommitted Total number of transaction groups committed to the ledger
	LedgerGroupsCommitted = MetricName{Name: "autooptin_ledger_groups_committed_total", Description: "Total number of transaction groups committed to the ledger"}
	// LedgerGroupsRejected Total number of transaction groups rejected by the ledger
	LedgerGroupsRejected = MetricName{Name: "autooptin_ledger_groups_rejected_total", Description: "Total number of transaction groups rejected by the ledger"}
	// LedgerTransactionsTotal Total number of top-level transactions written to the ledger
	LedgerTransactionsTotal = MetricName{Name: "autooptin_ledger_transactions_total", Description: "Total number of transactions written to the ledger"}
	// LedgerInnerTransactionsTotal Total number of inner transactions performed by applications
	LedgerInnerTransactionsTotal = MetricName{Name: "autooptin_ledger_inner_transactions_total", Description: "Total number of inner transactions performed by applications"}
	// LedgerRound Last round written to ledger
	LedgerRound = MetricName{Name: "autooptin_ledger_round", Description: "Last round written to ledger"}
)
