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

package config

import (
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/protocol"
)

// ConsensusParams specifies settings that might vary based on the
// particular version of the consensus protocol.
type ConsensusParams struct {
	// MaxTxnLife is how many rounds a transaction may stay valid for.
	MaxTxnLife uint64

	// MinTxnFee is the minimum fee in microalgos each transaction must
	// contribute, pooled across a group when EnableFeePooling is set.
	MinTxnFee uint64

	// MinBalance is the minimum balance of an account, and also the
	// additional balance required per asset holding.
	MinBalance uint64

	MaxTxnNoteBytes int

	// MaxTxGroupSize is the maximum number of transactions in one group.
	MaxTxGroupSize int

	// SupportTxGroups enables transaction groups.
	SupportTxGroups bool

	// EnableFeePooling lets one transaction of a group pay for the others.
	EnableFeePooling bool

	// Asset enables asset config and transfer transactions.
	Asset bool

	// MaxAssetsPerAccount bounds how many assets an account may hold.
	MaxAssetsPerAccount int

	MaxAssetNameBytes     int
	MaxAssetUnitNameBytes int
	MaxAssetURLBytes      int
	MaxAssetDecimals      uint32

	// Application enables application call transactions.
	Application bool

	// AppFlatParamsMinBalance is the extra balance required per created app.
	AppFlatParamsMinBalance uint64

	// AppFlatOptInMinBalance is the extra balance required per app opt-in.
	AppFlatOptInMinBalance uint64

	// MaxAppsCreated bounds the apps created by one account.
	MaxAppsCreated int

	// MaxAppsOptedIn bounds the apps one account may opt into.
	MaxAppsOptedIn int

	// MaxInnerTransactions is the number of inner transactions a single
	// app call may issue.
	MaxInnerTransactions int

	// EnableInnerTransactionPooling allows every app call in a group to
	// draw from a shared budget of MaxTxGroupSize*MaxInnerTransactions.
	EnableInnerTransactionPooling bool
}

// ConsensusProtocols defines a set of supported protocol versions and their
// corresponding parameters.
type ConsensusProtocols map[protocol.ConsensusVersion]ConsensusParams

// Consensus tracks the protocol-level settings for different versions of the
// consensus protocol.
var Consensus ConsensusProtocols

func init() {
	Consensus = make(ConsensusProtocols)
	initConsensusProtocols()
}

func initConsensusProtocols() {
	v1 := ConsensusParams{
		MaxTxnLife:      1000,
		MinTxnFee:       1000,
		MinBalance:      100000,
		MaxTxnNoteBytes: 1024,
		MaxTxGroupSize:  16,
		SupportTxGroups: true,

		EnableFeePooling: true,

		Asset:                 true,
		MaxAssetsPerAccount:   1000,
		MaxAssetNameBytes:     32,
		MaxAssetUnitNameBytes: 8,
		MaxAssetURLBytes:      96,
		MaxAssetDecimals:      19,

		Application:             true,
		AppFlatParamsMinBalance: 100000,
		AppFlatOptInMinBalance:  100000,
		MaxAppsCreated:          10,
		MaxAppsOptedIn:          50,

		MaxInnerTransactions:          16,
		EnableInnerTransactionPooling: true,
	}
	Consensus[protocol.ConsensusV1] = v1

	// vFuture is used to test features before they are released.
	vFuture := v1
	vFuture.MaxAppsCreated = 0 // unlimited
	Consensus[protocol.ConsensusFuture] = vFuture
}

// BalanceRequirements returns the subset of parameters that determine an
// account's minimum balance.
func (proto ConsensusParams) BalanceRequirements() basics.BalanceRequirements {
	return basics.BalanceRequirements{
		MinBalance:              proto.MinBalance,
		AppFlatParamsMinBalance: proto.AppFlatParamsMinBalance,
		AppFlatOptInMinBalance:  proto.AppFlatOptInMinBalance,
	}
}

// MinBalanceReq computes the minimum balance requirements for an account based on
// some consensus parameters.
func (proto ConsensusParams) MinBalanceReq(u basics.AccountData) basics.MicroAlgos {
	return u.MinBalance(proto.BalanceRequirements())
}
