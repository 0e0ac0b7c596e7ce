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

package store

import (
	"errors"

	"github.com/dgraph-io/badger/v3"
)

var (
	_ KVStore  = (*BadgerKV)(nil)
	_ Batch    = (*BadgerBatch)(nil)
	_ Iterator = (*BadgerIterator)(nil)
)

// BadgerKV implements KVStore on top of Badger v3.
type BadgerKV struct {
	db *badger.DB
}

// Get returns the value stored under key.
func (b *BadgerKV) Get(key []byte) ([]byte, error) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set stores value under key.
func (b *BadgerKV) Set(key []byte, value []byte) error {
	txn := b.db.NewTransaction(true)
	if err := txn.Set(key, value); err != nil {
		txn.Discard()
		return err
	}
	return txn.Commit()
}

// Delete removes key.
func (b *BadgerKV) Delete(key []byte) error {
	txn := b.db.NewTransaction(true)
	if err := txn.Delete(key); err != nil {
		txn.Discard()
		return err
	}
	return txn.Commit()
}

// Close closes the underlying database.
func (b *BadgerKV) Close() error {
	return b.db.Close()
}

// NewBatch creates a new write batch. Batches should be short lived.
func (b *BadgerKV) NewBatch() Batch {
	return &BadgerBatch{txn: b.db.NewTransaction(true)}
}

// BadgerBatch wraps a read-write badger transaction.
type BadgerBatch struct {
	txn *badger.Txn
}

func (bb *BadgerBatch) Set(key, value []byte) error {
	return bb.txn.Set(key, value)
}

func (bb *BadgerBatch) Delete(key []byte) error {
	return bb.txn.Delete(key)
}

func (bb *BadgerBatch) Commit() error {
	return bb.txn.Commit()
}

func (bb *BadgerBatch) Discard() {
	bb.txn.Discard()
}

// PrefixIterator returns an iterator over all keys starting with prefix.
func (b *BadgerKV) PrefixIterator(prefix []byte) Iterator {
	txn := b.db.NewTransaction(false)
	iter := txn.NewIterator(badger.DefaultIteratorOptions)
	iter.Seek(prefix)
	return &BadgerIterator{
		txn:    txn,
		iter:   iter,
		prefix: prefix,
	}
}

// BadgerIterator is a prefix iterator over a BadgerKV.
type BadgerIterator struct {
	txn       *badger.Txn
	iter      *badger.Iterator
	prefix    []byte
	lastError error
}

func (i *BadgerIterator) Valid() bool {
	return i.iter.ValidForPrefix(i.prefix)
}

func (i *BadgerIterator) Next() {
	i.iter.Next()
}

func (i *BadgerIterator) Key() []byte {
	return i.iter.Item().KeyCopy(nil)
}

func (i *BadgerIterator) Value() []byte {
	val, err := i.iter.Item().ValueCopy(nil)
	if err != nil {
		i.lastError = err
	}
	return val
}

func (i *BadgerIterator) Error() error {
	return i.lastError
}

// Discard releases the iterator. It must be called once iteration is done.
func (i *BadgerIterator) Discard() {
	i.iter.Close()
	i.txn.Discard()
}
