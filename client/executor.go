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
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/channel/types"
)

// DefaultFetchConcurrency bounds the number of parallel account fetches.
const DefaultFetchConcurrency = 8

var _ channel.Executor = (*LocalExecutor)(nil)

// LocalExecutor executes transfers in process against account snapshots.
// Balances evolve over the batch, so a transfer may spend funds received
// earlier in the same batch. The snapshots themselves are never modified.
type LocalExecutor struct {
	source      channel.AccountSource
	concurrency int
	log         log.Embedding
}

// NewLocalExecutor returns an executor that loads accounts from source.
func NewLocalExecutor(source channel.AccountSource) *LocalExecutor {
	return &LocalExecutor{
		source:      source,
		concurrency: DefaultFetchConcurrency,
		log:         log.MakeEmbedding(log.Default()),
	}
}

type balanceKey struct {
	account types.AccountKey
	asset   types.Asset
}

// Execute implements channel.Executor.
func (e *LocalExecutor) Execute(ctx context.Context, intents []types.Intent) ([]types.Outcome, error) {
	accounts, err := e.prefetch(ctx, intents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrExecutionUnavailable, err)
	}

	balances := make(map[balanceKey]uint64)
	balance := func(acc types.AccountKey, asset types.Asset) (uint64, bool) {
		k := balanceKey{acc, asset}
		if b, ok := balances[k]; ok {
			return b, true
		}
		b, ok := accounts[acc].Balance(asset)
		if ok {
			balances[k] = b
		}
		return b, ok
	}

	outcomes := make([]types.Outcome, len(intents))
	for i, in := range intents {
		logs := []string{fmt.Sprintf("Program log: transfer %d %s from %s to %s", in.Amount, in.Asset, in.Sender.Short(), in.Receiver.Short())}
		fail := func(format string, args ...interface{}) {
			logs = append(logs, "Program log: "+fmt.Sprintf(format, args...))
			outcomes[i] = types.Failure(in.Seq, logs...)
			e.log.Log().WithField("seq", in.Seq).Debugf("Transfer failed: %s", logs[len(logs)-1])
		}

		if _, ok := accounts[in.Sender]; !ok {
			fail("sender account %s not found", in.Sender.Short())
			continue
		}
		if _, ok := accounts[in.Receiver]; !ok {
			fail("receiver account %s not found", in.Receiver.Short())
			continue
		}
		from, ok := balance(in.Sender, in.Asset)
		if !ok {
			fail("sender has no trustline for %s", in.Asset)
			continue
		}
		to, ok := balance(in.Receiver, in.Asset)
		if !ok {
			fail("receiver has no trustline for %s", in.Asset)
			continue
		}
		if from < in.Amount {
			fail("insufficient funds: balance %d, required %d", from, in.Amount)
			continue
		}
		if to > math.MaxUint64-in.Amount {
			fail("receiver balance overflow")
			continue
		}
		balances[balanceKey{in.Sender, in.Asset}] = from - in.Amount
		balances[balanceKey{in.Receiver, in.Asset}] = to + in.Amount
		outcomes[i] = types.Success(in.Seq, append(logs, "Program log: success")...)
	}
	return outcomes, nil
}

// prefetch loads the snapshots of all accounts touched by intents in
// parallel. Unknown accounts are left out of the result.
func (e *LocalExecutor) prefetch(ctx context.Context, intents []types.Intent) (map[types.AccountKey]types.Snapshot, error) {
	var keys []types.AccountKey
	seen := make(map[types.AccountKey]bool)
	for _, in := range intents {
		for _, k := range []types.AccountKey{in.Sender, in.Receiver} {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	var mu sync.Mutex
	accounts := make(map[types.AccountKey]types.Snapshot, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, k := range keys {
		k := k
		g.Go(func() error {
			s, err := e.source.Fetch(gctx, k)
			if errors.Is(err, channel.ErrAccountNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			accounts[k] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return accounts, nil
}
