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

package logic

import (
	"fmt"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/protocol"
)

// GroupStructureError is returned when the transaction a program expects at
// a fixed offset from its own call is outside the group.
type GroupStructureError struct {
	GroupIndex   int
	SiblingIndex int
	GroupSize    int
}

func (e *GroupStructureError) Error() string {
	return fmt.Sprintf("transaction %d expects a sibling at %d but the group has %d transactions",
		e.GroupIndex, e.SiblingIndex, e.GroupSize)
}

// WrongTransactionKindError is returned when the sibling transaction is not
// of the expected type.
type WrongTransactionKindError struct {
	Index    int
	Expected protocol.TxType
	Got      protocol.TxType
}

func (e *WrongTransactionKindError) Error() string {
	return fmt.Sprintf("transaction %d has type %q, expected %q", e.Index, e.Got, e.Expected)
}

// WrongDestinationError is returned when an asset transfer is not addressed
// to the application account.
type WrongDestinationError struct {
	Index    int
	Receiver basics.Address
	Expected basics.Address
}

func (e *WrongDestinationError) Error() string {
	return fmt.Sprintf("transaction %d sends to %v, expected application account %v", e.Index, e.Receiver, e.Expected)
}

// SubmitError wraps the reason an inner transaction could not be issued.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("inner transaction failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *SubmitError) Unwrap() error {
	return e.Err
}

// PanicError wraps a recover() catching a panic()
type PanicError struct {
	PanicValue interface{}
	StackTrace string
}

func (pe PanicError) Error() string {
	return fmt.Sprintf("panic in program eval: %v\n%s", pe.PanicValue, pe.StackTrace)
}
