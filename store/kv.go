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

// Package store persists account snapshots and settlement records.
package store

import (
	"errors"

	"github.com/dgraph-io/badger/v3"
)

// ErrKeyNotFound is returned if key is not found in KVStore.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is a minimal thread safe key-value store.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	PrefixIterator(prefix []byte) Iterator
	Close() error
}

// Batch groups writes that are committed atomically.
type Batch interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}

// Iterator walks all keys sharing a prefix, in key order.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Error() error
	Discard()
}

// NewInMemoryKVStore builds a KVStore that works without accessing disk.
func NewInMemoryKVStore() KVStore {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		panic(err)
	}
	return &BadgerKV{db: db}
}

// NewDefaultKVStore opens a persistent KVStore in dir. An empty dir yields
// an in-memory store.
func NewDefaultKVStore(dir string) (KVStore, error) {
	if dir == "" {
		return NewInMemoryKVStore(), nil
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerKV{db: db}, nil
}
