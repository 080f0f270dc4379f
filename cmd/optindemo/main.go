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
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dataDir string

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(accountCmd)

	rootCmd.PersistentFlags().StringVarP(&dataDir, "datadir", "d", "", "Data directory for the ledger")
}

var rootCmd = &cobra.Command{
	Use:   "optindemo",
	Short: "Deploy and exercise an auto opt-in application",
	Long: `optindemo keeps a ledger in a data directory. It deploys an application
that opts its own account into any asset sent to it in the transaction
following the application call, then sends it an asset.`,
	Args: validateNoPosArgsFn,
	Run: func(cmd *cobra.Command, args []string) {
		//If no arguments passed, we should fallback to help
		cmd.HelpFunc()(cmd, args)
	},
}

func validateNoPosArgsFn(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reportInfof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func reportErrorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func resolveDataDir() string {
	dir := dataDir
	if dir == "" {
		dir = os.Getenv("ALGORAND_DATA")
	}
	if dir == "" {
		reportErrorf("Data directory not specified. Please use -d or set $ALGORAND_DATA in your environment.")
	}
	return os.ExpandEnv(dir)
}
