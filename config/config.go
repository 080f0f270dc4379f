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

package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// Local holds the per-node-instance configuration settings.
type Local struct {
	// Version tracks the current version of the defaults so we can migrate old -> new
	Version uint32 `version[0]:"0"`

	// BaseLoggerDebugLevel specifies the logging level (0 = Panic, 5 = Debug)
	BaseLoggerDebugLevel uint32 `version[0]:"4"`

	// LogToStdout writes log lines to standard output instead of node.log
	LogToStdout bool `version[0]:"false"`

	// LogSizeLimit is the log file size limit in bytes. When set to 0 logs will be written to stdout.
	LogSizeLimit uint64 `version[0]:"1073741824"`

	// LedgerSynchronousMode defines the synchronous mode used by the ledger database.
	// 0 = off, 1 = normal, 2 = full, 3 = extra
	LedgerSynchronousMode int `version[0]:"2"`

	// EnableMetricReporting determines if the metrics collected are written
	// to the data directory on shutdown.
	EnableMetricReporting bool `version[0]:"false"`

	// ConfirmationWaitRounds bounds how many rounds a client waits for a
	// transaction to appear before giving up.
	ConfirmationWaitRounds uint64 `version[0]:"10"`
}

var defaultLocal = Local{
	Version:                0,
	BaseLoggerDebugLevel:   4,
	LogSizeLimit:           1073741824,
	LedgerSynchronousMode:  2,
	ConfirmationWaitRounds: 10,
}

// ConfigFilename is the name of the config.json file where we store per-instance settings
const ConfigFilename = "config.json"

// LedgerFilenamePrefix is the prefix of the name of the ledger database files
const LedgerFilenamePrefix = "ledger"

// GenesisJSONFile is the name of the genesis.json file
const GenesisJSONFile = "genesis.json"

// LogFilename is the name of the log file within the data directory
const LogFilename = "node.log"

// LogArchiveFilename is where a full log file is moved to
const LogArchiveFilename = "node.archive.log"

// MetricsFilename is the name of the metrics dump written on shutdown
const MetricsFilename = "metrics.prom"

// GetDefaultLocal returns a copy of the current defaultLocal config
func GetDefaultLocal() Local {
	return defaultLocal
}

// LoadConfigFromDisk returns a Local config structure based on merging the defaults
// with settings loaded from the config file from the custom dir.  If the custom file
// cannot be loaded, the default config is returned (with the error from loading the
// custom file).
func LoadConfigFromDisk(custom string) (c Local, err error) {
	return loadConfigFromFile(filepath.Join(custom, ConfigFilename))
}

func loadConfigFromFile(configFile string) (c Local, err error) {
	c = defaultLocal
	f, err := os.Open(configFile)
	if err != nil {
		return c, err
	}
	defer f.Close()

	err = loadConfig(f, &c)
	return c, err
}

func loadConfig(reader io.Reader, config *Local) error {
	dec := json.NewDecoder(reader)
	return dec.Decode(config)
}

// SaveToDisk writes the Local settings into a root/ConfigFilename file
func (cfg Local) SaveToDisk(root string) error {
	configpath := filepath.Join(root, ConfigFilename)
	filename := os.ExpandEnv(configpath)
	return cfg.SaveToFile(filename)
}

// SaveToFile saves the config to a specific filename, allowing overriding the default name
func (cfg Local) SaveToFile(filename string) error {
	outFile, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer outFile.Close()

	enc := json.NewEncoder(outFile)
	enc.SetIndent("", "\t")
	return enc.Encode(cfg)
}
