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

package ledger

import (
	"context"
	"fmt"

	"github.com/algorand/go-deadlock"
	"github.com/jmoiron/sqlx"

	"github.com/algorand/autooptin/config"
	"github.com/algorand/autooptin/data/basics"
	"github.com/algorand/autooptin/data/bookkeeping"
	"github.com/algorand/autooptin/data/transactions"
	"github.com/algorand/autooptin/ledger/store"
	"github.com/algorand/autooptin/logging"
	"github.com/algorand/autooptin/util/db"
	"github.com/algorand/autooptin/util/metrics"
)

// Ledger is a database storing the state of accounts, assets and
// applications. Each committed transaction group advances it by one round.
type Ledger struct {
	trackerDB db.Accessor

	log logging.Logger

	genesisID string
	proto     config.ConsensusParams
	specials  transactions.SpecialAddresses

	bulletin *bulletin
	metrics  metricsTracker

	// trackerMu serializes group evaluation; readers take the read lock.
	trackerMu  deadlock.RWMutex
	latest     basics.Round
	txnCounter uint64
}

// OpenLedger creates a Ledger object, using a SQLite database filename
// based on dbPathPrefix (in-memory if dbMem is true). The genesis
// allocation is written only if the database wasn't initialized before.
func OpenLedger(
	log logging.Logger, dbPathPrefix string, dbMem bool, genesis bookkeeping.Genesis, cfg config.Local,
) (*Ledger, error) {
	proto, err := genesis.ConsensusParams()
	if err != nil {
		return nil, fmt.Errorf("OpenLedger: %w", err)
	}
	balances, err := genesis.Balances()
	if err != nil {
		return nil, fmt.Errorf("OpenLedger: %w", err)
	}

	l := &Ledger{
		log:       log,
		genesisID: genesis.ID(),
		proto:     proto,
		specials: transactions.SpecialAddresses{
			FeeSink:     balances.FeeSink,
			RewardsPool: balances.RewardsPool,
		},
	}

	defer func() {
		if err != nil {
			l.Close()
		}
	}()

	l.trackerDB, err = db.MakeAccessor(dbPathPrefix+".tracker.sqlite", false, dbMem)
	if err != nil {
		err = fmt.Errorf("OpenLedger.openLedgerDB %w", err)
		return nil, err
	}
	l.trackerDB.SetLogger(log)

	ctx := context.Background()
	err = l.trackerDB.SetSynchronousMode(ctx, db.SynchronousMode(cfg.LedgerSynchronousMode), cfg.LedgerSynchronousMode >= int(db.SynchronousModeFull))
	if err != nil {
		err = fmt.Errorf("OpenLedger.SetSynchronousMode %w", err)
		return nil, err
	}

	var newDatabase bool
	err = l.trackerDB.Atomic(ctx, "accountsInit", func(ctx context.Context, tx *sqlx.Tx) (err error) {
		newDatabase, err = store.AccountsInit(ctx, tx, balances.Balances)
		if err != nil {
			return err
		}
		l.latest, err = store.AccountsRound(ctx, tx)
		if err != nil {
			return err
		}
		l.txnCounter, err = store.TxnCounter(ctx, tx)
		return err
	})
	if err != nil {
		err = fmt.Errorf("OpenLedger.accountsInit %w", err)
		return nil, err
	}

	l.bulletin = makeBulletin(l.latest)
	l.metrics.loadFromDisk(metrics.DefaultRegistry(), l.latest)

	log.With("round", uint64(l.latest)).Infof("opened ledger %s (new database: %v)", l.genesisID, newDatabase)
	return l, nil
}

// Close reclaims resources used by the ledger (namely, the database connection
// and the registered metrics).
func (l *Ledger) Close() {
	l.metrics.close()
	if l.trackerDB.Handle != nil {
		l.trackerDB.Close()
	}
}

// Latest returns the latest committed round.
func (l *Ledger) Latest() basics.Round {
	l.trackerMu.RLock()
	defer l.trackerMu.RUnlock()
	return l.latest
}

// GenesisID returns the identifier transactions may carry in GenesisID.
func (l *Ledger) GenesisID() string {
	return l.genesisID
}

// ConsensusParams returns the protocol parameters the ledger enforces.
func (l *Ledger) ConsensusParams() config.ConsensusParams {
	return l.proto
}

// SpecialAddresses returns the fee sink and rewards pool.
func (l *Ledger) SpecialAddresses() transactions.SpecialAddresses {
	return l.specials
}

// Wait returns a channel that closes once a given round is stored
// durably in the ledger.
// When <-l.Wait(r) finishes, ledger is guaranteed to have round r,
// and will not lose round r after a crash.
// This makes it easy to use in a select{} statement.
func (l *Ledger) Wait(r basics.Round) <-chan struct{} {
	return l.bulletin.Wait(r)
}

// AccountData returns the latest state of an account. An unknown account
// has empty data.
func (l *Ledger) AccountData(addr basics.Address) (data basics.AccountData, err error) {
	l.trackerMu.RLock()
	defer l.trackerMu.RUnlock()

	err = db.Retry(func() (err error) {
		data, err = store.LookupAccount(context.Background(), l.trackerDB.Handle, addr)
		return
	})
	return
}

// AssetHolding returns an account's holding of an asset and whether the
// account has opted into it.
func (l *Ledger) AssetHolding(addr basics.Address, aidx basics.AssetIndex) (basics.AssetHolding, bool, error) {
	data, err := l.AccountData(addr)
	if err != nil {
		return basics.AssetHolding{}, false, err
	}
	holding, ok := data.Assets[aidx]
	return holding, ok, nil
}

// AssetParams returns the parameters of an asset and its creator.
func (l *Ledger) AssetParams(aidx basics.AssetIndex) (basics.AssetParams, basics.Address, error) {
	creator, ok, err := l.lookupCreator(basics.CreatableIndex(aidx), basics.AssetCreatable)
	if err != nil {
		return basics.AssetParams{}, basics.Address{}, err
	}
	if !ok {
		return basics.AssetParams{}, basics.Address{}, fmt.Errorf("asset %d does not exist", aidx)
	}
	data, err := l.AccountData(creator)
	if err != nil {
		return basics.AssetParams{}, basics.Address{}, err
	}
	return data.AssetParams[aidx], creator, nil
}

// AppParams returns the parameters of an application and its creator.
func (l *Ledger) AppParams(aidx basics.AppIndex) (basics.AppParams, basics.Address, error) {
	creator, ok, err := l.lookupCreator(basics.CreatableIndex(aidx), basics.AppCreatable)
	if err != nil {
		return basics.AppParams{}, basics.Address{}, err
	}
	if !ok {
		return basics.AppParams{}, basics.Address{}, fmt.Errorf("app %d does not exist", aidx)
	}
	data, err := l.AccountData(creator)
	if err != nil {
		return basics.AppParams{}, basics.Address{}, err
	}
	return data.AppParams[aidx], creator, nil
}

func (l *Ledger) lookupCreator(cidx basics.CreatableIndex, ctype basics.CreatableType) (creator basics.Address, ok bool, err error) {
	l.trackerMu.RLock()
	defer l.trackerMu.RUnlock()

	err = db.Retry(func() (err error) {
		creator, ok, err = store.LookupCreator(context.Background(), l.trackerDB.Handle, cidx, ctype)
		return
	})
	return
}

// LookupTxn returns a committed transaction with the apply data it
// produced.
func (l *Ledger) LookupTxn(txid transactions.Txid) (rec store.TxnRecord, ok bool, err error) {
	l.trackerMu.RLock()
	defer l.trackerMu.RUnlock()

	err = db.Retry(func() (err error) {
		rec, ok, err = store.LookupTxn(context.Background(), l.trackerDB.Handle, txid)
		return
	})
	return
}

// RoundTxns returns the transactions committed in round rnd.
func (l *Ledger) RoundTxns(rnd basics.Round) (recs []store.TxnRecord, err error) {
	l.trackerMu.RLock()
	defer l.trackerMu.RUnlock()

	err = db.Retry(func() (err error) {
		recs, err = store.RoundTxns(context.Background(), l.trackerDB.Handle, rnd)
		return
	})
	return
}
