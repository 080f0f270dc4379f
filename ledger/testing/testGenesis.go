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

package testing

import (
	"github.com/algorand/autooptin/crypto"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/bookkeeping"
	"github.com/algorand/autooptin/protocol"
)

// GenesisCfg provides a configuration object for NewTestGenesis.
type GenesisCfg struct {
	feeSinkAmount basics.MicroAlgos
	accountAmount basics.MicroAlgos
	count         int
}

// TestGenesisOption provides functional options for testGenesisCfg.
type TestGenesisOption func(*GenesisCfg)

// InitialFeeSinkBalance sets the initial balance of the fee sink to a specific value.
// This is useful for tests that need precise control over the fee sink balance.
func InitialFeeSinkBalance(microAlgos uint64) TestGenesisOption {
	return func(cfg *GenesisCfg) {
		cfg.feeSinkAmount = basics.MicroAlgos{Raw: microAlgos}
	}
}

// AccountBalance sets the initial balance of every generated account.
func AccountBalance(microAlgos uint64) TestGenesisOption {
	return func(cfg *GenesisCfg) {
		cfg.accountAmount = basics.MicroAlgos{Raw: microAlgos}
	}
}

// Accounts sets the number of generated accounts.
func Accounts(count int) TestGenesisOption {
	return func(cfg *GenesisCfg) {
		cfg.count = count
	}
}

// NewTestGenesis creates a bunch of accounts, splits up 10B algos
// between them and the rewardspool and feesink, and gives out the
// addresses it creates to enable tests.  For special scenarios,
// manipulate these return values before opening a ledger.
func NewTestGenesis(opts ...TestGenesisOption) (bookkeeping.Genesis, []basics.Address) {
	cfg := GenesisCfg{count: 10}
	for _, opt := range opts {
		opt(&cfg)
	}

	// irrelevant, but deterministic
	sink, err := basics.UnmarshalChecksumAddress("YTPRLJ2KK2JRFSZZNAF57F3K5Y2KCG36FZ5OSYLW776JJGAUW5JXJBBD7Q")
	if err != nil {
		panic(err)
	}
	rewards, err := basics.UnmarshalChecksumAddress("242H5OXHUEBYCGGWB3CQ6AZAMQB5TMCWJGHCGQOZPEIVQJKOO7NZXUXDQA")
	if err != nil {
		panic(err)
	}

	addrs := make([]basics.Address, cfg.count)
	accts := make(map[basics.Address]basics.AccountData)

	// 10 billion microalgos, across N accounts and pool and sink
	amount := 10 * 1000000000 * 1000000 / uint64(cfg.count+2)
	if cfg.accountAmount.Raw > 0 {
		amount = cfg.accountAmount.Raw
	}

	for i := 0; i < cfg.count; i++ {
		// Create deterministic addresses, so that output stays the same, run to run.
		addrs[i] = basics.Address(crypto.Hash([]byte{byte(i), byte(i >> 8)}))
		accts[addrs[i]] = basics.AccountData{
			MicroAlgos: basics.MicroAlgos{Raw: amount},
		}
	}

	feeSinkBal := basics.MicroAlgos{Raw: amount}
	if cfg.feeSinkAmount.Raw > 0 {
		feeSinkBal = cfg.feeSinkAmount
	}
	accts[sink] = basics.AccountData{MicroAlgos: feeSinkBal}
	accts[rewards] = basics.AccountData{MicroAlgos: basics.MicroAlgos{Raw: amount}}

	genBalances := bookkeeping.MakeGenesisBalances(accts, sink, rewards)
	return bookkeeping.MakeGenesis(protocol.ConsensusCurrentVersion, protocol.DevNetwork, "test", genBalances), addrs
}
