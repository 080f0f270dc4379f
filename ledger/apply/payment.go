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

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
)

// Payment changes the balances according to this transaction.
func Payment(payment transactions.PaymentTxnFields, header transactions.Header, balances Balances, spec transactions.SpecialAddresses, ad *transactions.ApplyData) error {
	// move tx money
	if !payment.Amount.IsZero() || payment.Receiver != (basics.Address{}) {
		err := balances.Move(header.Sender, payment.Receiver, payment.Amount)
		if err != nil {
			return err
		}
	}

	if payment.CloseRemainderTo != (basics.Address{}) {
		rec, err := balances.Get(header.Sender)
		if err != nil {
			return err
		}

		closeAmount := rec.MicroAlgos
		ad.ClosingAmount = closeAmount
		err = balances.Move(header.Sender, payment.CloseRemainderTo, closeAmount)
		if err != nil {
			return err
		}

		// Confirm that we have no balance left
		rec, err = balances.Get(header.Sender)
		if err != nil {
			return err
		}
		if !rec.MicroAlgos.IsZero() {
			return fmt.Errorf("balance %d still not zero after CloseRemainderTo", rec.MicroAlgos.Raw)
		}

		// Confirm that there is no asset-related state in the account
		if len(rec.Assets) > 0 {
			return fmt.Errorf("cannot close account %v with %d assets", header.Sender, len(rec.Assets))
		}
		if len(rec.AssetParams) > 0 {
			return fmt.Errorf("cannot close account %v with %d asset params", header.Sender, len(rec.AssetParams))
		}

		// Confirm that there is no application-related state remaining
		if len(rec.AppOptIns) > 0 {
			return fmt.Errorf("cannot close account %v with %d app opt-ins", header.Sender, len(rec.AppOptIns))
		}
		if len(rec.AppParams) > 0 {
			return fmt.Errorf("cannot close account %v with %d created apps", header.Sender, len(rec.AppParams))
		}

		// Clear out entire account record
		err = balances.Put(header.Sender, basics.AccountData{})
		if err != nil {
			return err
		}
	}

	return nil
}
