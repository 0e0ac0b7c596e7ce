// Copyright 2025 PolyCrypt GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"perun.network/perun-paytube-backend/channel/types"
)

// ErrLedgerImbalance is returned when the deltas of an asset do not sum to zero.
var ErrLedgerImbalance = errors.New("ledger imbalance")

// InvariantError reports a violated internal invariant of a ledger.
type InvariantError struct {
	Asset types.Asset
	Sum   *big.Int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: deltas of asset %s sum to %s", ErrLedgerImbalance, e.Asset, e.Sum)
}

func (e *InvariantError) Unwrap() error {
	return ErrLedgerImbalance
}

// Key addresses a single position of the ledger.
type Key struct {
	Account types.AccountKey
	Asset   types.Asset
}

// Entry is a signed net position. A positive delta means the account is owed
// funds, a negative delta means it owes funds.
type Entry struct {
	Account types.AccountKey
	Asset   types.Asset
	Delta   *big.Int
}

// Ledger maps (account, asset) pairs to their net delta over a session.
// Positions with a zero delta are not stored.
type Ledger struct {
	deltas map[Key]*big.Int
	assets []types.Asset
}

func newLedger() *Ledger {
	return &Ledger{deltas: make(map[Key]*big.Int)}
}

// FromEntries builds a ledger from explicit entries. Entries on the same key
// are summed. Asset order is the order of first appearance. No conservation
// check is performed.
func FromEntries(entries ...Entry) *Ledger {
	l := newLedger()
	for _, e := range entries {
		l.add(Key{e.Account, e.Asset}, e.Delta)
	}
	l.prune()
	return l
}

func (l *Ledger) add(k Key, v *big.Int) {
	d, ok := l.deltas[k]
	if !ok {
		if !l.hasAsset(k.Asset) {
			l.assets = append(l.assets, k.Asset)
		}
		d = new(big.Int)
		l.deltas[k] = d
	}
	d.Add(d, v)
}

func (l *Ledger) hasAsset(asset types.Asset) bool {
	for _, a := range l.assets {
		if a == asset {
			return true
		}
	}
	return false
}

// prune drops zero positions and assets without positions.
func (l *Ledger) prune() {
	for k, d := range l.deltas {
		if d.Sign() == 0 {
			delete(l.deltas, k)
		}
	}
	assets := l.assets[:0]
	for _, a := range l.assets {
		for k := range l.deltas {
			if k.Asset == a {
				assets = append(assets, a)
				break
			}
		}
	}
	l.assets = assets
}

// Delta returns a copy of the net delta of account in asset.
func (l *Ledger) Delta(account types.AccountKey, asset types.Asset) *big.Int {
	if d, ok := l.deltas[Key{account, asset}]; ok {
		return new(big.Int).Set(d)
	}
	return new(big.Int)
}

// Len returns the number of non-zero positions.
func (l *Ledger) Len() int {
	return len(l.deltas)
}

// IsEmpty reports whether the ledger has no non-zero position.
func (l *Ledger) IsEmpty() bool {
	return len(l.deltas) == 0
}

// Assets returns the assets of the ledger in declaration order.
func (l *Ledger) Assets() []types.Asset {
	return append([]types.Asset(nil), l.assets...)
}

// Positions returns the entries of asset sorted by account key.
func (l *Ledger) Positions(asset types.Asset) []Entry {
	var entries []Entry
	for k, d := range l.deltas {
		if k.Asset == asset {
			entries = append(entries, Entry{Account: k.Account, Asset: asset, Delta: new(big.Int).Set(d)})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Account < entries[j].Account
	})
	return entries
}

// Entries returns all positions ordered by asset, then by account key.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, 0, len(l.deltas))
	for _, a := range l.assets {
		entries = append(entries, l.Positions(a)...)
	}
	return entries
}

// Sum returns the sum of all deltas of asset.
func (l *Ledger) Sum(asset types.Asset) *big.Int {
	sum := new(big.Int)
	for k, d := range l.deltas {
		if k.Asset == asset {
			sum.Add(sum, d)
		}
	}
	return sum
}

// CheckConservation verifies that the deltas of every asset sum to zero.
func (l *Ledger) CheckConservation() error {
	for _, a := range l.assets {
		if sum := l.Sum(a); sum.Sign() != 0 {
			return &InvariantError{Asset: a, Sum: sum}
		}
	}
	return nil
}

// Equal reports whether both ledgers hold the same positions.
func (l *Ledger) Equal(other *Ledger) bool {
	if len(l.deltas) != len(other.deltas) {
		return false
	}
	for k, d := range l.deltas {
		o, ok := other.deltas[k]
		if !ok || d.Cmp(o) != 0 {
			return false
		}
	}
	return true
}
