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
	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions/logic"
)

// Balances allow to move MicroAlgos from one address to another and to update balance records, or to access and modify individual balance records
// After a call to Put (or Move), future calls to Get or Move will reflect the updated balance record(s)
type Balances interface {
	// Get looks up the account data for an address.
	// If the account is known to be empty, then err should be nil and the returned balance record should have empty AccountData
	// A non-nil error means the lookup is impossible (e.g., if the database is unavailable)
	Get(addr basics.Address) (basics.AccountData, error)

	Put(addr basics.Address, data basics.AccountData) error

	// GetCreator gets the address of the account that created a given creatable
	GetCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (basics.Address, bool, error)

	// Allocate and Deallocate record the creation and destruction of an
	// asset or application, so that GetCreator can find it.
	Allocate(creator basics.Address, cidx basics.CreatableIndex, ctype basics.CreatableType) error
	Deallocate(creator basics.Address, cidx basics.CreatableIndex, ctype basics.CreatableType) error

	// StatefulEval runs the program of application aidx for the call at
	// position gi of params.TxnGroup. It returns whether the program
	// approved and, when it did not, why.
	StatefulEval(gi int, params *logic.EvalParams, aidx basics.AppIndex) (passed bool, err error)

	// Move MicroAlgos from one account to another, doing all necessary overflow checking (convenience method)
	Move(src, dst basics.Address, amount basics.MicroAlgos) error

	// Balances correspond to a Round, which mean that they also correspond
	// to a ConsensusParams.  This returns those parameters.
	ConsensusParams() config.ConsensusParams
}
