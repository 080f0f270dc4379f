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
	"maps"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
)

func cloneAppParams(m map[basics.AppIndex]basics.AppParams) map[basics.AppIndex]basics.AppParams {
	res := maps.Clone(m)
	if res == nil {
		res = make(map[basics.AppIndex]basics.AppParams)
	}
	return res
}

func cloneAppOptIns(m map[basics.AppIndex]bool) map[basics.AppIndex]bool {
	res := maps.Clone(m)
	if res == nil {
		res = make(map[basics.AppIndex]bool)
	}
	return res
}

// getAppParams fetches the creator address and AppParams for the app index,
// if they exist. It does NOT clone the AppParams, so the returned params must
// not be modified directly.
func getAppParams(balances Balances, aidx basics.AppIndex) (params basics.AppParams, creator basics.Address, exists bool, err error) {
	creator, exists, err = balances.GetCreator(basics.CreatableIndex(aidx), basics.AppCreatable)
	if err != nil {
		return
	}

	// App doesn't exist. Not an error, but return straight away
	if !exists {
		return
	}

	record, err := balances.Get(creator)
	if err != nil {
		return
	}

	params, ok := record.AppParams[aidx]
	if !ok {
		// This should never happen. If app exists then we should have
		// found the creator successfully.
		err = fmt.Errorf("app %d not found in account %s", aidx, creator.String())
		return
	}

	return
}

// createApplication writes a new AppParams entry and returns the application
// ID allocated
func createApplication(ac *transactions.ApplicationCallTxnFields, balances Balances, creator basics.Address, txnCounter uint64) (appIdx basics.AppIndex, err error) {
	if _, ok := logic.LookupProgram(ac.Program); !ok {
		err = fmt.Errorf("cannot create application running unknown program %q", ac.Program)
		return
	}

	// Fetch the creator's (sender's) balance record
	record, err := balances.Get(creator)
	if err != nil {
		return
	}

	// Make sure the creator isn't already at the app creation max
	maxAppsCreated := balances.ConsensusParams().MaxAppsCreated
	if maxAppsCreated > 0 && len(record.AppParams) >= maxAppsCreated {
		err = fmt.Errorf("cannot create app for %s: max created apps per acct is %d", creator.String(), maxAppsCreated)
		return
	}

	// Clone app params, so that we have a copy that is safe to modify
	record.AppParams = cloneAppParams(record.AppParams)

	// Allocate the new app params (+ 1 to match Assets Idx namespace)
	appIdx = basics.AppIndex(txnCounter + 1)
	record.AppParams[appIdx] = basics.AppParams{Program: ac.Program}

	// Write back to the creator's balance record
	err = balances.Put(creator, record)
	if err != nil {
		return 0, err
	}

	// Tell the cow what app we created
	err = balances.Allocate(creator, basics.CreatableIndex(appIdx), basics.AppCreatable)
	if err != nil {
		return 0, err
	}

	return
}

func deleteApplication(balances Balances, creator basics.Address, appIdx basics.AppIndex) error {
	record, err := balances.Get(creator)
	if err != nil {
		return err
	}

	record.AppParams = cloneAppParams(record.AppParams)
	delete(record.AppParams, appIdx)

	err = balances.Put(creator, record)
	if err != nil {
		return err
	}

	// Tell the cow what app we deleted
	return balances.Deallocate(creator, basics.CreatableIndex(appIdx), basics.AppCreatable)
}

func optInApplication(balances Balances, sender basics.Address, appIdx basics.AppIndex) error {
	record, err := balances.Get(sender)
	if err != nil {
		return err
	}

	// If the user has already opted in, fail
	if record.AppOptIns[appIdx] {
		return fmt.Errorf("account %s has already opted in to app %d", sender.String(), appIdx)
	}

	// Make sure the user isn't already at the app opt-in max
	maxAppsOptedIn := balances.ConsensusParams().MaxAppsOptedIn
	if maxAppsOptedIn > 0 && len(record.AppOptIns) >= maxAppsOptedIn {
		return fmt.Errorf("cannot opt in app %d for %s: max opted-in apps per acct is %d", appIdx, sender.String(), maxAppsOptedIn)
	}

	record.AppOptIns = cloneAppOptIns(record.AppOptIns)
	record.AppOptIns[appIdx] = true
	return balances.Put(sender, record)
}

func closeOutApplication(balances Balances, sender basics.Address, appIdx basics.AppIndex) error {
	record, err := balances.Get(sender)
	if err != nil {
		return err
	}

	// If they haven't opted in, that's an error
	if !record.AppOptIns[appIdx] {
		return fmt.Errorf("account %s is not opted in to app %d", sender, appIdx)
	}

	record.AppOptIns = cloneAppOptIns(record.AppOptIns)
	delete(record.AppOptIns, appIdx)
	return balances.Put(sender, record)
}

// ApplicationCall is an application call transaction: it creates, calls,
// opts into, closes out of, clears or deletes an application, running the
// application's program where the call requires it.
func ApplicationCall(ac transactions.ApplicationCallTxnFields, header transactions.Header, balances Balances, ad *transactions.ApplyData, gi int, evalParams *logic.EvalParams, txnCounter uint64) (err error) {
	defer func() {
		// If we are returning a non-nil error, then don't return a
		// non-empty EvalDelta. Not required for correctness.
		if err != nil && ad != nil {
			ad.EvalDelta = transactions.EvalDelta{}
		}
	}()

	// Keep track of the application ID we're working on
	appIdx := ac.ApplicationID

	if ad == nil {
		err = fmt.Errorf("cannot use empty ApplyData")
		return
	}

	// Specifying an application ID of 0 indicates application creation
	if ac.ApplicationID == 0 {
		appIdx, err = createApplication(&ac, balances, header.Sender, txnCounter)
		if err != nil {
			return
		}
		ad.ApplicationID = appIdx
	}

	// Fetch the application parameters, if they exist
	_, creator, exists, err := getAppParams(balances, appIdx)
	if err != nil {
		return err
	}

	// Ensure that the only operation we can do is ClearState if the application
	// does not exist
	if !exists && ac.OnCompletion != transactions.ClearStateOC {
		return fmt.Errorf("only ClearState is supported for an application (%d) that does not exist", appIdx)
	}

	if ac.ApplicationID == 0 && ac.OnCompletion == transactions.ClearStateOC {
		return fmt.Errorf("cannot clear state while creating application")
	}

	// Clearing out is always allowed. The approval program is not run,
	// only the clear state program, whose failures are ignored.
	if ac.OnCompletion == transactions.ClearStateOC {
		// Ensure that the user is already opted in
		record, err := balances.Get(header.Sender)
		if err != nil {
			return err
		}
		if !record.AppOptIns[appIdx] {
			return fmt.Errorf("cannot clear state: %v is not currently opted in to app %d", header.Sender, appIdx)
		}

		// If the application still exists...
		if exists {
			pass, evalErr := balances.StatefulEval(gi, evalParams, appIdx)
			if !pass || evalErr != nil {
				ad.EvalDelta = transactions.EvalDelta{}
			}
		}

		return closeOutApplication(balances, header.Sender, appIdx)
	}

	// Execute the Approval program
	approved, err := balances.StatefulEval(gi, evalParams, appIdx)
	if err != nil {
		return fmt.Errorf("transaction rejected by app %d: %w", appIdx, err)
	}
	if !approved {
		return fmt.Errorf("transaction rejected by app %d", appIdx)
	}

	switch ac.OnCompletion {
	case transactions.NoOpOC:
		// Nothing to do

	case transactions.OptInOC:
		err = optInApplication(balances, header.Sender, appIdx)
		if err != nil {
			return err
		}

	case transactions.CloseOutOC:
		err = closeOutApplication(balances, header.Sender, appIdx)
		if err != nil {
			return err
		}

	case transactions.DeleteApplicationOC:
		err = deleteApplication(balances, creator, appIdx)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("invalid application action")
	}

	return nil
}
