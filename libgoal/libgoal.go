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

package libgoal

import (
	"fmt"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/ledger"
	"github.com/algorand/autooptin/logging"
)

// Client submits transaction groups to a ledger and reads back the
// resulting state.
type Client struct {
	ledger *ledger.Ledger
	cfg    config.Local
	log    logging.Logger
}

// MakeClient returns a client for l. cfg bounds how long
// WaitForConfirmation waits.
func MakeClient(l *ledger.Ledger, cfg config.Local) Client {
	return Client{
		ledger: l,
		cfg:    cfg,
		log:    logging.Base(),
	}
}

// SetLogger replaces the logger the client reports submissions to.
func (c *Client) SetLogger(log logging.Logger) {
	c.log = log
}

// TransactionParams are the parameters a client needs to build a
// transaction that the ledger will accept.
type TransactionParams struct {
	// LastRound is the latest committed round.
	LastRound basics.Round

	GenesisID string

	// MinFee is the minimum fee per transaction.
	MinFee uint64

	// MaxTxnLife is the maximum distance between first and last valid.
	MaxTxnLife uint64
}

// SuggestedParams returns the parameters for building transactions
// against the ledger's latest state.
func (c *Client) SuggestedParams() TransactionParams {
	proto := c.ledger.ConsensusParams()
	return TransactionParams{
		LastRound:  c.ledger.Latest(),
		GenesisID:  c.ledger.GenesisID(),
		MinFee:     proto.MinTxnFee,
		MaxTxnLife: proto.MaxTxnLife,
	}
}

// CurrentRound returns the latest committed round.
func (c *Client) CurrentRound() basics.Round {
	return c.ledger.Latest()
}

// ComputeValidityRounds takes first, last and rounds provided by a user and resolves them into
// actual firstValid and lastValid.
// Resolution table
//
// validRounds | lastValid | result (lastValid)
// -------------------------------------------------
// 0           |     0     | firstValid + maxTxnLife
// 0           |     N     | lastValid
// M           |     0     | first + validRounds - 1
// M           |     M     | error
func (c *Client) ComputeValidityRounds(firstValid, lastValid, validRounds basics.Round) (first, last, latest basics.Round, err error) {
	params := c.SuggestedParams()
	first, last, err = computeValidityRounds(firstValid, lastValid, validRounds, params.LastRound, params.MaxTxnLife)
	return first, last, params.LastRound, err
}

func computeValidityRounds(firstValid, lastValid, validRounds, lastRound basics.Round, maxTxnLife uint64) (basics.Round, basics.Round, error) {
	lifeAsRounds := basics.Round(maxTxnLife)
	if validRounds != 0 && lastValid != 0 {
		return 0, 0, fmt.Errorf("cannot construct transaction: ambiguous input: lastValid = %d, validRounds = %d", lastValid, validRounds)
	}

	if firstValid == 0 {
		// The next group is evaluated at lastRound+1, so lastRound is
		// always acceptable as a first valid round.
		if lastRound > 0 {
			firstValid = lastRound
		} else {
			firstValid = 1
		}
	}

	if validRounds != 0 {
		// validRounds = maxTxnLife+1 gives lastValid = firstValid + maxTxnLife
		if validRounds > lifeAsRounds+1 {
			return 0, 0, fmt.Errorf("cannot construct transaction: txn validity period %d is greater than protocol max txn lifetime %d", validRounds-1, maxTxnLife)
		}
		lastValid = firstValid + validRounds - 1
	} else if lastValid == 0 {
		lastValid = firstValid + lifeAsRounds
	}

	if firstValid > lastValid {
		return 0, 0, fmt.Errorf("cannot construct transaction: txn would first be valid on round %d which is after last valid round %d", firstValid, lastValid)
	} else if lastValid-firstValid > lifeAsRounds {
		return 0, 0, fmt.Errorf("cannot construct transaction: txn validity period ( %d to %d ) is greater than protocol max txn lifetime %d", firstValid, lastValid, maxTxnLife)
	}

	return firstValid, lastValid, nil
}

// AccountInformation returns the current state of an account. An account
// the ledger has never seen has empty data.
func (c *Client) AccountInformation(account string) (basics.AccountData, error) {
	addr, err := basics.UnmarshalChecksumAddress(account)
	if err != nil {
		return basics.AccountData{}, err
	}
	return c.ledger.AccountData(addr)
}

// GetBalance takes an address and returns its total balance; if the address doesn't exist, it returns 0.
func (c *Client) GetBalance(account string) (uint64, error) {
	data, err := c.AccountInformation(account)
	if err != nil {
		return 0, err
	}
	return data.MicroAlgos.Raw, nil
}

// AssetInformation returns the parameters of an asset and its creator.
func (c *Client) AssetInformation(index basics.AssetIndex) (basics.AssetParams, basics.Address, error) {
	return c.ledger.AssetParams(index)
}

// ApplicationInformation returns the parameters of an application and its
// creator.
func (c *Client) ApplicationInformation(index basics.AppIndex) (basics.AppParams, basics.Address, error) {
	return c.ledger.AppParams(index)
}
