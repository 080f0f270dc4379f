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
	"fmt"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/protocol"
)

type creatableKey struct {
	cidx  basics.CreatableIndex
	ctype basics.CreatableType
}

type mockBalances struct {
	protocol.ConsensusVersion
	b        map[basics.Address]basics.AccountData
	creators map[creatableKey]basics.Address

	put, allocated, deallocated int

	// StatefulEval results
	pass    bool
	evalErr error
	evals   []basics.AppIndex
}

// makeMockBalances takes a ConsensusVersion and returns a mocked balances with an Address to AccountData map
func makeMockBalances(cv protocol.ConsensusVersion) *mockBalances {
	return makeMockBalancesWithAccounts(cv, map[basics.Address]basics.AccountData{})
}

// makeMockBalancesWithAccounts takes a ConsensusVersion and a map of Address to AccountData and returns a mocked
// balances.
func makeMockBalancesWithAccounts(cv protocol.ConsensusVersion, b map[basics.Address]basics.AccountData) *mockBalances {
	return &mockBalances{
		ConsensusVersion: cv,
		b:                b,
		creators:         make(map[creatableKey]basics.Address),
		pass:             true,
	}
}

func (balances *mockBalances) Get(addr basics.Address) (basics.AccountData, error) {
	return balances.b[addr].Clone(), nil
}

func (balances *mockBalances) Put(addr basics.Address, ad basics.AccountData) error {
	balances.put++
	balances.b[addr] = ad
	return nil
}

func (balances *mockBalances) GetCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (basics.Address, bool, error) {
	creator, ok := balances.creators[creatableKey{cidx, ctype}]
	return creator, ok, nil
}

func (balances *mockBalances) Allocate(creator basics.Address, cidx basics.CreatableIndex, ctype basics.CreatableType) error {
	balances.allocated++
	balances.creators[creatableKey{cidx, ctype}] = creator
	return nil
}

func (balances *mockBalances) Deallocate(creator basics.Address, cidx basics.CreatableIndex, ctype basics.CreatableType) error {
	balances.deallocated++
	delete(balances.creators, creatableKey{cidx, ctype})
	return nil
}

func (balances *mockBalances) StatefulEval(gi int, params *logic.EvalParams, aidx basics.AppIndex) (bool, error) {
	balances.evals = append(balances.evals, aidx)
	return balances.pass, balances.evalErr
}

func (balances *mockBalances) Move(src, dst basics.Address, amount basics.MicroAlgos) error {
	from := balances.b[src]
	to := balances.b[dst]
	var ot basics.OverflowTracker
	from.MicroAlgos = ot.SubA(from.MicroAlgos, amount)
	if ot.Overflowed {
		return fmt.Errorf("overspend (account %v, data %+v, tried to spend %v)", src, balances.b[src], amount)
	}
	balances.b[src] = from
	if src == dst {
		to = from
	}
	to.MicroAlgos = ot.AddA(to.MicroAlgos, amount)
	if ot.Overflowed {
		return fmt.Errorf("balance overflow (account %v)", dst)
	}
	balances.b[dst] = to
	return nil
}

func (balances *mockBalances) ConsensusParams() config.ConsensusParams {
	return config.Consensus[balances.ConsensusVersion]
}
