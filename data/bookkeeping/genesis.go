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

package bookkeeping

import (
	"fmt"
	"os"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/protocol"
)

// A Genesis object defines a ledger "universe": the initial account states
// (GenesisAllocation), the consensus protocol (Proto), and the special
// accounts fees are paid to.
type Genesis struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// The SchemaID allows ledgers to store data specific to a particular
	// universe (in case of upgrades at development or testing time).
	SchemaID string `codec:"id"`

	// Network identifies the network for which the ledger is valid.
	// Note the Network name should not include a '-', as we generate the
	// GenesisID from "<Network>-<SchemaID>"; the '-' makes it easy
	// to distinguish between the network and schema.
	Network protocol.NetworkID `codec:"network"`

	// Proto is the consensus protocol in use at the genesis round.
	Proto protocol.ConsensusVersion `codec:"proto"`

	// Allocation determines the initial accounts and their state.
	Allocation []GenesisAllocation `codec:"alloc"`

	// RewardsPool is the address of the rewards pool.
	RewardsPool string `codec:"rwd"`

	// FeeSink is the address of the fee sink.
	FeeSink string `codec:"fees"`

	// Arbitrary genesis comment string - will be excluded from file if empty
	Comment string `codec:"comment"`
}

// A GenesisAllocation object represents an allocation of algos to
// an address in the genesis.  Address is the checksummed
// short address.  Comment is a note about what this address is
// representing, and is purely informational.  State is the initial
// account state.
type GenesisAllocation struct {
	_struct struct{} `codec:""`

	Address string             `codec:"addr"`
	Comment string             `codec:"comment"`
	State   basics.AccountData `codec:"state"`
}

// LoadGenesisFromFile attempts to load a Genesis structure from a (presumably) genesis.json file.
func LoadGenesisFromFile(genesisFile string) (genesis Genesis, err error) {
	genesisText, err := os.ReadFile(genesisFile)
	if err != nil {
		return
	}

	err = protocol.DecodeJSON(genesisText, &genesis)
	return
}

// SaveToFile writes the genesis as JSON.
func (genesis Genesis) SaveToFile(genesisFile string) error {
	return os.WriteFile(genesisFile, protocol.EncodeJSON(genesis), 0600)
}

// ID is the effective Genesis identifier - the combination
// of the network and the ledger schema version
func (genesis Genesis) ID() string {
	return string(genesis.Network) + "-" + genesis.SchemaID
}

// GenesisBalances contains the information needed to generate a new ledger
type GenesisBalances struct {
	Balances    map[basics.Address]basics.AccountData
	FeeSink     basics.Address
	RewardsPool basics.Address
}

// MakeGenesisBalances returns the information needed to bootstrap the ledger
func MakeGenesisBalances(balances map[basics.Address]basics.AccountData, feeSink, rewardsPool basics.Address) GenesisBalances {
	return GenesisBalances{Balances: balances, FeeSink: feeSink, RewardsPool: rewardsPool}
}

// MakeGenesis builds a Genesis for the given protocol from genesis balances.
func MakeGenesis(proto protocol.ConsensusVersion, network protocol.NetworkID, schemaID string, bal GenesisBalances) Genesis {
	g := Genesis{
		SchemaID:    schemaID,
		Network:     network,
		Proto:       proto,
		FeeSink:     bal.FeeSink.String(),
		RewardsPool: bal.RewardsPool.String(),
	}
	for addr, data := range bal.Balances {
		g.Allocation = append(g.Allocation, GenesisAllocation{
			Address: addr.String(),
			State:   data,
		})
	}
	return g
}

// Balances returns the genesis account balances.
func (genesis Genesis) Balances() (GenesisBalances, error) {
	genalloc := make(map[basics.Address]basics.AccountData)
	for _, entry := range genesis.Allocation {
		addr, err := basics.UnmarshalChecksumAddress(entry.Address)
		if err != nil {
			return GenesisBalances{}, fmt.Errorf("cannot parse genesis addr %s: %w", entry.Address, err)
		}

		_, present := genalloc[addr]
		if present {
			return GenesisBalances{}, fmt.Errorf("repeated allocation to %s", entry.Address)
		}

		genalloc[addr] = entry.State
	}

	feeSink, err := basics.UnmarshalChecksumAddress(genesis.FeeSink)
	if err != nil {
		return GenesisBalances{}, fmt.Errorf("cannot parse fee sink addr %s: %w", genesis.FeeSink, err)
	}

	rewardsPool, err := basics.UnmarshalChecksumAddress(genesis.RewardsPool)
	if err != nil {
		return GenesisBalances{}, fmt.Errorf("cannot parse rewards pool addr %s: %w", genesis.RewardsPool, err)
	}

	return MakeGenesisBalances(genalloc, feeSink, rewardsPool), nil
}

// ConsensusParams returns the protocol parameters the genesis names.
func (genesis Genesis) ConsensusParams() (config.ConsensusParams, error) {
	params, ok := config.Consensus[genesis.Proto]
	if !ok {
		return config.ConsensusParams{}, fmt.Errorf("unsupported protocol %s", genesis.Proto)
	}
	return params, nil
}
