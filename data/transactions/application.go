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

package transactions

import (
	"fmt"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
)

// OnCompletion is an enum representing some layer 1 side effect that an
// ApplicationCall transaction will have if it is included in the ledger.
type OnCompletion uint64

const (
	// NoOpOC indicates that an application transaction will simply call its
	// approval program
	NoOpOC OnCompletion = 0

	// OptInOC indicates that an application transaction will record the
	// sender as opted into the application
	OptInOC OnCompletion = 1

	// CloseOutOC indicates that an application transaction will remove the
	// sender's opt-in record
	CloseOutOC OnCompletion = 2

	// ClearStateOC is similar to CloseOutOC, but may never fail. The clear
	// state program runs and its outcome is ignored.
	ClearStateOC OnCompletion = 3

	// UpdateApplicationOC is reserved. Registered programs are immutable,
	// so updates are rejected.
	UpdateApplicationOC OnCompletion = 4

	// DeleteApplicationOC indicates that an application transaction will
	// delete the application parameters from the creator's balance record
	DeleteApplicationOC OnCompletion = 5
)

var onCompletionNames = [...]string{"NoOp", "OptIn", "CloseOut", "ClearState", "UpdateApplication", "DeleteApplication"}

func (oc OnCompletion) String() string {
	if int(oc) < len(onCompletionNames) {
		return onCompletionNames[oc]
	}
	return fmt.Sprintf("OnCompletion(%d)", uint64(oc))
}

// ApplicationCallTxnFields captures the transaction fields used for all
// interactions with applications
type ApplicationCallTxnFields struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// ApplicationID is 0 when creating an application, and nonzero when
	// calling an existing application.
	ApplicationID basics.AppIndex `codec:"apid"`

	// OnCompletion specifies an optional side-effect that this transaction
	// will have on the balance record of the sender or the application's
	// creator.
	OnCompletion OnCompletion `codec:"apan"`

	// ApplicationArgs are arguments accessible to the executing program.
	ApplicationArgs [][]byte `codec:"apaa"`

	// ForeignAssets are asset IDs the program refers to.
	ForeignAssets []basics.AssetIndex `codec:"apas"`

	// Program names the registered program the application runs. It is
	// only set during application creation.
	Program string `codec:"prog"`

	// If you add any fields here, remember you MUST modify the Empty
	// method below!
}

// Empty indicates whether or not all the fields in the
// ApplicationCallTxnFields are zeroed out
func (ac *ApplicationCallTxnFields) Empty() bool {
	if ac.ApplicationID != 0 {
		return false
	}
	if ac.OnCompletion != 0 {
		return false
	}
	if ac.ApplicationArgs != nil {
		return false
	}
	if ac.ForeignAssets != nil {
		return false
	}
	if ac.Program != "" {
		return false
	}
	return true
}

// wellFormed performs some stateless checks on the ApplicationCall transaction
func (ac ApplicationCallTxnFields) wellFormed(proto config.ConsensusParams) error {
	switch ac.OnCompletion {
	case NoOpOC, OptInOC, CloseOutOC, ClearStateOC, DeleteApplicationOC:
		/* ok */
	case UpdateApplicationOC:
		return fmt.Errorf("application update is not supported")
	default:
		return fmt.Errorf("invalid application OnCompletion")
	}

	if ac.ApplicationID == 0 {
		if ac.Program == "" {
			return fmt.Errorf("application creation requires a program")
		}
		if ac.OnCompletion == ClearStateOC || ac.OnCompletion == CloseOutOC {
			return fmt.Errorf("cannot %v while creating an application", ac.OnCompletion)
		}
	} else if ac.Program != "" {
		return fmt.Errorf("programs may only be specified during application creation")
	}
	return nil
}
