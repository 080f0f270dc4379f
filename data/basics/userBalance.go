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

package basics

import (
	"encoding/binary"
	"maps"

	"github.com/algorand/autooptin/crypto"
	"github.com/algorand/autooptin/protocol"
)

// AccountData contains the data associated with a given address.
//
// Assets is keyed by asset index; a present entry, even with a zero amount,
// means the account has opted into that asset.
type AccountData struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	MicroAlgos MicroAlgos `codec:"algo"`

	// AssetParams is the set of assets that can be created by this
	// account, keyed by the asset index.
	AssetParams map[AssetIndex]AssetParams `codec:"apar"`

	// Assets is the set of assets that can be held by this account.
	Assets map[AssetIndex]AssetHolding `codec:"asset"`

	// AppParams stores the parameters of the applications created by this
	// account.
	AppParams map[AppIndex]AppParams `codec:"appp"`

	// AppOptIns is the set of applications this account has opted into.
	AppOptIns map[AppIndex]bool `codec:"appl"`
}

// AssetIndex is the unique integer index of an asset that can be used to look
// up the creator of the asset, whose balance record contains the AssetParams
type AssetIndex uint64

// AppIndex is the unique integer index of an application that can be used to
// look up the creator of the application, whose balance record contains the
// AppParams
type AppIndex uint64

// CreatableIndex represents either an AssetIndex or AppIndex, which come from
// the same namespace of indices as each other
type CreatableIndex uint64

// CreatableType is an enum representing whether or not a given creatable is an
// application or an asset
type CreatableType uint64

const (
	// AssetCreatable is the CreatableType corresponding to assets
	AssetCreatable CreatableType = 0

	// AppCreatable is the CreatableType corresponds to apps
	AppCreatable CreatableType = 1
)

// AssetHolding describes an asset held by an account.
type AssetHolding struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Amount uint64 `codec:"a"`
	Frozen bool   `codec:"f"`
}

// AssetParams describes the parameters of an asset.
type AssetParams struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Total specifies the total number of units of this asset
	// created.
	Total uint64 `codec:"t"`

	// Decimals specifies the number of digits to display after the decimal
	// place when displaying this asset.
	Decimals uint32 `codec:"dc"`

	// DefaultFrozen specifies whether slots for this asset
	// in user accounts are frozen by default or not.
	DefaultFrozen bool `codec:"df"`

	UnitName  string `codec:"un"`
	AssetName string `codec:"an"`
	URL       string `codec:"au"`

	// Manager specifies an account that is allowed to change the
	// non-zero addresses in this AssetParams.
	Manager Address `codec:"m"`

	// Reserve specifies an account whose holdings of this asset
	// should be reported as "not minted".
	Reserve  Address `codec:"r"`
	Freeze   Address `codec:"f"`
	Clawback Address `codec:"c"`
}

// AppParams stores the global information associated with an application.
// Program names a registered program; it is resolved at call time.
type AppParams struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Program string `codec:"prog"`
}

// Clone returns a copy of the account data whose maps may be modified
// without affecting the original.
func (u AccountData) Clone() AccountData {
	res := u
	res.AssetParams = maps.Clone(u.AssetParams)
	res.Assets = maps.Clone(u.Assets)
	res.AppParams = maps.Clone(u.AppParams)
	res.AppOptIns = maps.Clone(u.AppOptIns)
	return res
}

// IsZero checks if an AccountData value is the same as its zero value.
func (u AccountData) IsZero() bool {
	return u.MicroAlgos.IsZero() && len(u.AssetParams) == 0 && len(u.Assets) == 0 &&
		len(u.AppParams) == 0 && len(u.AppOptIns) == 0
}

// ToBeHashed implements crypto.Hashable
func (app AppIndex) ToBeHashed() (protocol.HashID, []byte) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(app))
	return protocol.AppIndex, buf
}

// Address yields the "app address" of the app
func (app AppIndex) Address() Address {
	return Address(crypto.HashObj(app))
}

// BalanceRequirements defines the amounts an account must hold, based on
// various resources the account has. The names are taken directly from
// config.ConsensusParams, so that `basics` does not need to import `config`.
type BalanceRequirements struct {
	MinBalance              uint64
	AppFlatParamsMinBalance uint64
	AppFlatOptInMinBalance  uint64
}

// MinBalance computes the minimum balance requirements for an account based on
// some consensus parameters.
func (u AccountData) MinBalance(reqs BalanceRequirements) MicroAlgos {
	return MinBalance(reqs, uint64(len(u.Assets)), uint64(len(u.AppParams)), uint64(len(u.AppOptIns)))
}

// MinBalance computes the minimum balance from the counts of the resources an
// account holds.
func MinBalance(reqs BalanceRequirements, totalAssets uint64, totalAppParams uint64, totalAppOptIns uint64) MicroAlgos {
	// First, base MinBalance
	min := reqs.MinBalance

	// MinBalance for each Asset
	assetCost := MulSaturate(reqs.MinBalance, totalAssets)
	min = AddSaturate(min, assetCost)

	// Base MinBalance for each created application
	appCreationCost := MulSaturate(reqs.AppFlatParamsMinBalance, totalAppParams)
	min = AddSaturate(min, appCreationCost)

	// Base MinBalance for each opted in application
	appOptInCost := MulSaturate(reqs.AppFlatOptInMinBalance, totalAppOptIns)
	min = AddSaturate(min, appOptInCost)

	return MicroAlgos{Raw: min}
}

// BalanceRecord pairs an account's address with its associated data.
type BalanceRecord struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Addr Address `codec:"addr"`

	AccountData
}
