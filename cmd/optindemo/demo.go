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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/data/transactions/logic"
	"github.com/algorand/autooptin/libgoal"
)

var (
	xferAmount uint64
	fundAmount uint64
)

func done() string {
	return color.GreenString("DONE")
}

func init() {
	runCmd.Flags().Uint64Var(&xferAmount, "amount", 100, "Amount of the asset to send to the application account")
	runCmd.Flags().Uint64Var(&fundAmount, "fund", 2_000_000, "MicroAlgos to fund the application account with")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deploy the auto opt-in application and send it an asset",
	Long: `Creates the application, funds its account, creates an asset and sends
[app call, asset transfer] as one group. The application account opts into
the asset on the way. Prints the application account afterwards.`,
	Args: validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		n, err := openNode(resolveDataDir())
		if err != nil {
			reportErrorf("Cannot open ledger: %v", err)
		}
		defer n.close()

		sender, err := dispenser(n.genesis)
		if err != nil {
			n.close()
			reportErrorf("%v", err)
		}

		_, err = runDemo(cmd.Context(), os.Stdout, &n.client, sender, xferAmount, fundAmount)
		if err != nil {
			n.close()
			reportErrorf("%v", err)
		}
	},
}

var accountCmd = &cobra.Command{
	Use:   "account [address]",
	Short: "Print the balance and assets of an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n, err := openNode(resolveDataDir())
		if err != nil {
			reportErrorf("Cannot open ledger: %v", err)
		}
		defer n.close()

		err = printAccount(os.Stdout, &n.client, args[0])
		if err != nil {
			n.close()
			reportErrorf("%v", err)
		}
	},
}

// demoResult holds what runDemo created.
type demoResult struct {
	appID   basics.AppIndex
	appAddr basics.Address
	asset   basics.AssetIndex
	round   basics.Round
}

// runDemo deploys the application from sender, funds it with fund, creates
// an asset and sends amount of it to the application account behind an
// application call.
func runDemo(ctx context.Context, out io.Writer, c *libgoal.Client, sender basics.Address, amount, fund uint64) (demoResult, error) {
	var res demoResult
	from := sender.String()
	minFee := c.SuggestedParams().MinFee

	fmt.Fprint(out, "Deploying Application... ")
	tx, err := c.MakeUnsignedAppCreateTx(logic.AutoOptInProgramName, nil, nil)
	if err != nil {
		return res, err
	}
	stxn, err := sendAndWait(ctx, c, from, minFee, tx)
	if err != nil {
		return res, fmt.Errorf("deploying application: %w", err)
	}
	fmt.Fprintln(out, done())
	res.appID = stxn.ApplicationID
	res.appAddr = res.appID.Address()
	fmt.Fprintln(out, "Application ID:", res.appID)
	fmt.Fprintln(out, "Application Address:", res.appAddr)

	fmt.Fprint(out, "Funding Application Account... ")
	tx, err = c.MakeUnsignedPaymentTx(from, res.appAddr.String(), minFee, fund, nil, "", 0, 0)
	if err != nil {
		return res, err
	}
	_, err = sendAndWait(ctx, c, from, minFee, tx)
	if err != nil {
		return res, fmt.Errorf("funding application account: %w", err)
	}
	fmt.Fprintln(out, done())

	fmt.Fprint(out, "Creating Asset... ")
	tx, err = c.MakeUnsignedAssetCreateTx(10000, false, "", "", "", "", "DA", "Demo Asset", "", 2)
	if err != nil {
		return res, err
	}
	stxn, err = sendAndWait(ctx, c, from, minFee, tx)
	if err != nil {
		return res, fmt.Errorf("creating asset: %w", err)
	}
	fmt.Fprintln(out, done())
	res.asset = stxn.ConfigAsset
	fmt.Fprintln(out, "Asset ID:", res.asset)

	// [ appl | axfer ]: the call pays for the inner opt-in it may submit.
	call, err := c.MakeUnsignedAppNoOpTx(res.appID, nil, nil)
	if err != nil {
		return res, err
	}
	call, err = c.FillUnsignedTxTemplate(from, 0, 0, 2*minFee, call)
	if err != nil {
		return res, err
	}
	xfer, err := c.MakeUnsignedAssetSendTx(res.asset, amount, res.appAddr.String(), "")
	if err != nil {
		return res, err
	}
	xfer, err = c.FillUnsignedTxTemplate(from, 0, 0, minFee, xfer)
	if err != nil {
		return res, err
	}

	fmt.Fprint(out, "Sending Grouped Transactions... ")
	txgroup := []transactions.Transaction{call, xfer}
	err = c.AssignGroupID(txgroup)
	if err != nil {
		return res, err
	}
	_, err = c.SendGroup(ctx, txgroup)
	if err != nil {
		return res, fmt.Errorf("sending group: %w", err)
	}
	rec, err := c.WaitForConfirmation(ctx, txgroup[0].ID())
	if err != nil {
		return res, err
	}
	res.round = rec.Round
	fmt.Fprintln(out, done())

	return res, printAccount(out, c, res.appAddr.String())
}

func sendAndWait(ctx context.Context, c *libgoal.Client, from string, fee uint64, tx transactions.Transaction) (transactions.SignedTxnWithAD, error) {
	tx, err := c.FillUnsignedTxTemplate(from, 0, 0, fee, tx)
	if err != nil {
		return transactions.SignedTxnWithAD{}, err
	}
	txid, err := c.SendTransaction(ctx, tx)
	if err != nil {
		return transactions.SignedTxnWithAD{}, err
	}
	rec, err := c.WaitForConfirmation(ctx, txid)
	if err != nil {
		return transactions.SignedTxnWithAD{}, err
	}
	return rec.Txn, nil
}

func printAccount(out io.Writer, c *libgoal.Client, address string) error {
	data, err := c.AccountInformation(address)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Address:", address)
	fmt.Fprintln(out, "Balance:", data.MicroAlgos.Raw)

	assets := make([]basics.AssetIndex, 0, len(data.Assets))
	for aidx := range data.Assets {
		assets = append(assets, aidx)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })
	for _, aidx := range assets {
		holding := data.Assets[aidx]
		fmt.Fprintf(out, "Asset: %d amount %d frozen %v\n", aidx, holding.Amount, holding.Frozen)
	}
	return nil
}
