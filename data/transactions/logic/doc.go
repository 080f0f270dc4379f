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

// Package logic runs the programs attached to applications.
//
// Programs are Go values registered by name (see Register). An application
// stores the name of its program, and every application call transaction
// runs that program against an EvalContext, which exposes the surrounding
// transaction group, the ledger's asset holdings and the ability to submit
// inner transactions on behalf of the application account.
//
// The auto-optin program checks that the transaction following its call is
// an asset transfer to the application account, and opts the account into
// that asset when it does not hold it yet.
package logic
