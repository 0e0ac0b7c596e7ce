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

package client

import (
	"context"
	"errors"
	"fmt"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/store"
	"perun.network/perun-paytube-backend/wire"
)

const accountPrefix = "a/"

var _ channel.AccountSource = (*LocalDB)(nil)

// LocalDB is an account source backed by a local key-value store. It is
// used for dry runs and tests without a Horizon instance.
type LocalDB struct {
	kv store.KVStore
}

// NewLocalDB returns an account source reading from kv.
func NewLocalDB(kv store.KVStore) *LocalDB {
	return &LocalDB{kv: kv}
}

func accountKey(key types.AccountKey) []byte {
	return []byte(accountPrefix + key.String())
}

// WriteGenesis stores all snapshots in one atomic batch.
func (db *LocalDB) WriteGenesis(snapshots ...types.Snapshot) error {
	b := db.kv.NewBatch()
	defer b.Discard()
	for _, s := range snapshots {
		data, err := wire.EncodeSnapshot(s)
		if err != nil {
			return fmt.Errorf("encoding account %s: %w", s.Key, err)
		}
		if err := b.Set(accountKey(s.Key), data); err != nil {
			return err
		}
	}
	return b.Commit()
}

// Put stores a single snapshot.
func (db *LocalDB) Put(s types.Snapshot) error {
	data, err := wire.EncodeSnapshot(s)
	if err != nil {
		return err
	}
	return db.kv.Set(accountKey(s.Key), data)
}

// Fetch implements channel.AccountSource.
func (db *LocalDB) Fetch(ctx context.Context, key types.AccountKey) (types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.Snapshot{}, err
	}
	data, err := db.kv.Get(accountKey(key))
	if errors.Is(err, store.ErrKeyNotFound) {
		return types.Snapshot{}, fmt.Errorf("%w: %s", channel.ErrAccountNotFound, key)
	}
	if err != nil {
		return types.Snapshot{}, err
	}
	return wire.DecodeSnapshot(data)
}
