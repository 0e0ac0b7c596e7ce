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
	"fmt"

	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/wire"
)

const (
	journalPrefix = "j/"
	batchTag      = "b/"
	resultTag     = "r/"
)

// Journal records the settlement batches of each session and the verdict of
// the settlement chain on them.
type Journal struct {
	kv KVStore
}

// NewJournal returns a journal backed by kv.
func NewJournal(kv KVStore) *Journal {
	return &Journal{kv: kv}
}

func journalKey(session, tag string, index int) []byte {
	return []byte(fmt.Sprintf("%s%s/%s%08d", journalPrefix, session, tag, index))
}

func journalPrefixKey(session, tag string) []byte {
	return []byte(journalPrefix + session + "/" + tag)
}

// RecordBatches stores all batches of session atomically.
func (j *Journal) RecordBatches(session string, batches []settlement.Batch) error {
	b := j.kv.NewBatch()
	defer b.Discard()
	for _, batch := range batches {
		data, err := wire.EncodeBatch(batch)
		if err != nil {
			return fmt.Errorf("encoding batch %d: %w", batch.Index, err)
		}
		if err := b.Set(journalKey(session, batchTag, batch.Index), data); err != nil {
			return err
		}
	}
	return b.Commit()
}

// RecordResult stores the submission result of a batch of session. A later
// result for the same batch replaces the earlier one.
func (j *Journal) RecordResult(session string, res settlement.Result) error {
	data, err := wire.EncodeResult(res)
	if err != nil {
		return err
	}
	return j.kv.Set(journalKey(session, resultTag, res.Batch), data)
}

// Batches returns the recorded batches of session in index order.
func (j *Journal) Batches(session string) ([]settlement.Batch, error) {
	var batches []settlement.Batch
	err := j.iterate(journalPrefixKey(session, batchTag), func(v []byte) error {
		b, err := wire.DecodeBatch(v)
		if err != nil {
			return err
		}
		batches = append(batches, b)
		return nil
	})
	return batches, err
}

// Results returns the recorded results of session in batch order.
func (j *Journal) Results(session string) ([]settlement.Result, error) {
	var results []settlement.Result
	err := j.iterate(journalPrefixKey(session, resultTag), func(v []byte) error {
		r, err := wire.DecodeResult(v)
		if err != nil {
			return err
		}
		results = append(results, r)
		return nil
	})
	return results, err
}

// Pending returns the batches of session that have not been confirmed.
func (j *Journal) Pending(session string) ([]settlement.Batch, error) {
	batches, err := j.Batches(session)
	if err != nil {
		return nil, err
	}
	results, err := j.Results(session)
	if err != nil {
		return nil, err
	}
	confirmed := make(map[int]bool, len(results))
	for _, r := range results {
		confirmed[r.Batch] = r.Confirmed()
	}
	var pending []settlement.Batch
	for _, b := range batches {
		if !confirmed[b.Index] {
			pending = append(pending, b)
		}
	}
	return pending, nil
}

func (j *Journal) iterate(prefix []byte, fn func([]byte) error) error {
	it := j.kv.PrefixIterator(prefix)
	defer it.Discard()
	for ; it.Valid(); it.Next() {
		if err := fn(it.Value()); err != nil {
			return err
		}
		if err := it.Error(); err != nil {
			return err
		}
	}
	return it.Error()
}
