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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/crypto"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/bookkeeping"
	"github.com/algorand/autooptin/ledger"
	"github.com/algorand/autooptin/libgoal"
	"github.com/algorand/autooptin/logging"
	"github.com/algorand/autooptin/protocol"
	"github.com/algorand/autooptin/util/metrics"
)

// dispenserComment marks the genesis account the demo sends from.
const dispenserComment = "dispenser"

// lockFilename guards a data directory against a second process.
const lockFilename = "optindemo.lock"

// dispenserBalance is 1M algos.
const dispenserBalance = 1_000_000 * 1_000_000

// node is a ledger opened from a data directory, with a client on it.
type node struct {
	dataDir   string
	cfg       config.Local
	log       logging.Logger
	logWriter io.WriteCloser
	fileLock  *flock.Flock

	genesis bookkeeping.Genesis
	ledger  *ledger.Ledger
	client  libgoal.Client
}

func openNode(dataDir string) (*node, error) {
	err := os.MkdirAll(dataDir, 0700)
	if err != nil {
		return nil, err
	}

	// to ensure this is the only process using this data directory
	fileLock := flock.New(filepath.Join(dataDir, lockFilename))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("unexpected failure in establishing %s: %w", lockFilename, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s; is another instance already running in %s?", lockFilename, dataDir)
	}

	n := &node{dataDir: dataDir, log: logging.NewLogger(), fileLock: fileLock}
	n.cfg, err = config.LoadConfigFromDisk(dataDir)
	if err != nil && !os.IsNotExist(err) {
		n.close()
		return nil, fmt.Errorf("cannot load config: %w", err)
	}

	if !n.cfg.LogToStdout && n.cfg.LogSizeLimit > 0 {
		liveLog := filepath.Join(dataDir, config.LogFilename)
		archive := filepath.Join(dataDir, config.LogArchiveFilename)
		logWriter, err := logging.MakeCyclicFileWriter(liveLog, archive, n.cfg.LogSizeLimit)
		if err != nil {
			n.close()
			return nil, err
		}
		n.logWriter = logWriter
		n.log.SetOutput(logWriter)
		n.log.SetJSONFormatter()
	} else {
		n.log.SetOutput(os.Stdout)
	}
	n.log.SetLevel(logging.Level(n.cfg.BaseLoggerDebugLevel))

	n.genesis, err = ensureGenesis(dataDir)
	if err != nil {
		n.close()
		return nil, err
	}

	n.ledger, err = ledger.OpenLedger(n.log, filepath.Join(dataDir, config.LedgerFilenamePrefix), false, n.genesis, n.cfg)
	if err != nil {
		n.close()
		return nil, err
	}

	n.client = libgoal.MakeClient(n.ledger, n.cfg)
	n.client.SetLogger(n.log)
	return n, nil
}

// close writes the metrics file if enabled and releases the ledger and the
// data directory. It may be called more than once.
func (n *node) close() {
	if n.ledger != nil {
		if n.cfg.EnableMetricReporting {
			err := writeMetrics(filepath.Join(n.dataDir, config.MetricsFilename))
			if err != nil {
				n.log.Warnf("cannot write metrics: %v", err)
			}
		}
		n.ledger.Close()
		n.ledger = nil
	}
	if n.logWriter != nil {
		n.logWriter.Close()
		n.logWriter = nil
	}
	if n.fileLock != nil {
		n.fileLock.Unlock()
		n.fileLock = nil
	}
}

func writeMetrics(filename string) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return metrics.DefaultRegistry().WriteMetrics(f)
}

// ensureGenesis loads genesis.json from dataDir, creating a fresh one with a
// single funded dispenser account if there is none.
func ensureGenesis(dataDir string) (bookkeeping.Genesis, error) {
	genesisPath := filepath.Join(dataDir, config.GenesisJSONFile)
	genesis, err := bookkeeping.LoadGenesisFromFile(genesisPath)
	if err == nil {
		return genesis, nil
	}
	if !os.IsNotExist(err) {
		return bookkeeping.Genesis{}, fmt.Errorf("cannot load genesis %s: %w", genesisPath, err)
	}

	dispenser, sink, rewards := randomAddress(), randomAddress(), randomAddress()
	minBalance := basics.MicroAlgos{Raw: config.Consensus[protocol.ConsensusCurrentVersion].MinBalance}
	balances := bookkeeping.MakeGenesisBalances(map[basics.Address]basics.AccountData{
		dispenser: {MicroAlgos: basics.MicroAlgos{Raw: dispenserBalance}},
		sink:      {MicroAlgos: minBalance},
		rewards:   {MicroAlgos: minBalance},
	}, sink, rewards)

	genesis = bookkeeping.MakeGenesis(protocol.ConsensusCurrentVersion, protocol.DevNetwork, "v1", balances)
	for i := range genesis.Allocation {
		if genesis.Allocation[i].Address == dispenser.String() {
			genesis.Allocation[i].Comment = dispenserComment
		}
	}

	err = genesis.SaveToFile(genesisPath)
	if err != nil {
		return bookkeeping.Genesis{}, err
	}
	return genesis, nil
}

// dispenser returns the genesis account marked as the dispenser.
func dispenser(genesis bookkeeping.Genesis) (basics.Address, error) {
	for _, alloc := range genesis.Allocation {
		if alloc.Comment == dispenserComment {
			return basics.UnmarshalChecksumAddress(alloc.Address)
		}
	}
	return basics.Address{}, errors.New("genesis has no dispenser account")
}

func randomAddress() basics.Address {
	var addr basics.Address
	crypto.RandBytes(addr[:])
	return addr
}
