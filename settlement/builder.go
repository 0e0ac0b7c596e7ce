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

package settlement

import (
	"container/heap"
	"errors"
	"fmt"
	"math/big"

	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/ledger"
)

// DefaultMaxOpsPerBatch is the maximum number of operations of a Stellar transaction.
const DefaultMaxOpsPerBatch = 100

var (
	// ErrInvalidBatchSize is returned for a non-positive batch size.
	ErrInvalidBatchSize = errors.New("max operations per batch must be positive")

	// ErrAmountOverflow is returned when a net amount does not fit a payment.
	ErrAmountOverflow = errors.New("settlement amount exceeds 64 bits")
)

// Builder turns a net ledger into settlement batches.
type Builder struct {
	maxOpsPerBatch int
	log            log.Embedding
}

// NewBuilder returns a Builder that emits at most maxOpsPerBatch operations per batch.
func NewBuilder(maxOpsPerBatch int) (*Builder, error) {
	if maxOpsPerBatch < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, maxOpsPerBatch)
	}
	return &Builder{
		maxOpsPerBatch: maxOpsPerBatch,
		log:            log.MakeEmbedding(log.Default()),
	}, nil
}

// MaxOpsPerBatch returns the configured batch size.
func (b *Builder) MaxOpsPerBatch() int {
	return b.maxOpsPerBatch
}

// Build returns the settlement operations of l, chunked into batches. An
// empty ledger yields no batches.
func (b *Builder) Build(l *ledger.Ledger) ([]Batch, error) {
	ops, err := b.Operations(l)
	if err != nil {
		return nil, err
	}
	return Chunk(ops, b.maxOpsPerBatch), nil
}

// Operations computes the settlement operations of l. Assets are processed
// in ledger order. Within an asset the largest debtor always pays the
// largest creditor; ties are broken by ascending account key.
func (b *Builder) Operations(l *ledger.Ledger) ([]Operation, error) {
	var ops []Operation
	for _, asset := range l.Assets() {
		assetOps, err := settleAsset(asset, l.Positions(asset))
		if err != nil {
			return nil, err
		}
		b.log.Log().WithField("asset", asset.String()).Debugf("Netted %d operations", len(assetOps))
		ops = append(ops, assetOps...)
	}
	return ops, nil
}

func settleAsset(asset types.Asset, positions []ledger.Entry) ([]Operation, error) {
	debtors, creditors := &parties{}, &parties{}
	debt, credit := new(big.Int), new(big.Int)
	for _, p := range positions {
		switch p.Delta.Sign() {
		case -1:
			amount := new(big.Int).Neg(p.Delta)
			debt.Add(debt, amount)
			*debtors = append(*debtors, &party{key: p.Account, amount: amount})
		case 1:
			amount := new(big.Int).Set(p.Delta)
			credit.Add(credit, amount)
			*creditors = append(*creditors, &party{key: p.Account, amount: amount})
		}
	}
	if debt.Cmp(credit) != 0 {
		return nil, &ledger.InvariantError{Asset: asset, Sum: new(big.Int).Sub(credit, debt)}
	}
	heap.Init(debtors)
	heap.Init(creditors)

	var ops []Operation
	for debtors.Len() > 0 && creditors.Len() > 0 {
		d := heap.Pop(debtors).(*party)
		c := heap.Pop(creditors).(*party)

		amount := d.amount
		if c.amount.Cmp(amount) < 0 {
			amount = c.amount
		}
		if !amount.IsUint64() {
			return nil, fmt.Errorf("%w: %s -> %s: %s", ErrAmountOverflow, d.key, c.key, amount)
		}
		v := amount.Uint64()
		ops = append(ops, Operation{From: d.key, To: c.key, Asset: asset, Amount: v})

		d.amount.Sub(d.amount, new(big.Int).SetUint64(v))
		c.amount.Sub(c.amount, new(big.Int).SetUint64(v))
		if d.amount.Sign() > 0 {
			heap.Push(debtors, d)
		}
		if c.amount.Sign() > 0 {
			heap.Push(creditors, c)
		}
	}
	return ops, nil
}

// Chunk splits ops into consecutive batches of at most size operations.
func Chunk(ops []Operation, size int) []Batch {
	if size < 1 {
		size = 1
	}
	batches := make([]Batch, 0, (len(ops)+size-1)/size)
	for start := 0; start < len(ops); start += size {
		end := start + size
		if end > len(ops) {
			end = len(ops)
		}
		batches = append(batches, Batch{
			Index:      len(batches),
			Operations: append([]Operation(nil), ops[start:end]...),
		})
	}
	return batches
}

type party struct {
	key    types.AccountKey
	amount *big.Int
}

// parties is a max-heap on amount with ascending keys on ties.
type parties []*party

func (p parties) Len() int { return len(p) }

func (p parties) Less(i, j int) bool {
	if c := p[i].amount.Cmp(p[j].amount); c != 0 {
		return c > 0
	}
	return p[i].key < p[j].key
}

func (p parties) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *parties) Push(x any) { *p = append(*p, x.(*party)) }

func (p *parties) Pop() any {
	old := *p
	n := len(old)
	x := old[n-1]
	*p = old[:n-1]
	return x
}
