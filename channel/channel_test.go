// Copyright 2025 PolyCrypt GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package channel_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-paytube-backend/channel"
	chtest "perun.network/perun-paytube-backend/channel/test"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/ledger"
	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/store"
)

const (
	alice types.AccountKey = "Alice"
	bob   types.AccountKey = "Bob"
	will  types.AccountKey = "Will"
)

var native = types.NativeAsset()

func newChannel(t *testing.T, exec channel.Executor, sub channel.Submitter, maxOps int, opts ...channel.Option) *channel.Channel {
	t.Helper()
	c, err := channel.NewChannel(exec, sub, maxOps, opts...)
	require.NoError(t, err)
	return c
}

func TestProcessTransfers_PartialFailure(t *testing.T) {
	exec := &chtest.MockExecutor{Fail: func(in types.Intent) bool { return in.Seq == 2 }}
	sub := chtest.NewMockSubmitter()
	c := newChannel(t, exec, sub, 10)

	rep, err := c.ProcessTransfers(context.Background(), []types.Intent{
		types.NewIntent(0, alice, bob, native, 100),
		types.NewIntent(1, bob, will, native, 50),
		types.NewIntent(2, alice, will, native, 30),
	})
	require.NoError(t, err)
	require.Equal(t, 2, rep.Succeeded)
	require.Len(t, rep.Failed, 1)
	require.Equal(t, 2, rep.Failed[0].Intent.Seq)
	require.NotEmpty(t, rep.Failed[0].Logs)

	require.Len(t, sub.Submitted, 1)
	require.Equal(t, []settlement.Operation{
		{From: alice, To: bob, Asset: native, Amount: 50},
		{From: alice, To: will, Asset: native, Amount: 50},
	}, sub.Submitted[0].Operations)
	require.True(t, rep.Settled())
	require.Equal(t, 2, rep.NumOperations())
}

func TestProcessTransfers_Offsetting(t *testing.T) {
	sub := chtest.NewMockSubmitter()
	c := newChannel(t, &chtest.MockExecutor{}, sub, 10)

	rep, err := c.ProcessTransfers(context.Background(), []types.Intent{
		types.NewIntent(0, alice, bob, native, 100),
		types.NewIntent(1, bob, alice, native, 100),
	})
	require.NoError(t, err)
	require.True(t, rep.Ledger.IsEmpty())
	require.Empty(t, rep.Batches)
	require.Empty(t, sub.Submitted)
	require.True(t, rep.Settled())
}

func TestProcessTransfers_Empty(t *testing.T) {
	exec := &chtest.MockExecutor{}
	sub := chtest.NewMockSubmitter()
	c := newChannel(t, exec, sub, 1)

	rep, err := c.ProcessTransfers(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, rep.Batches)
	require.Empty(t, exec.Calls)
	require.Empty(t, sub.Submitted)
}

func TestProcessTransfers_InvalidIntent(t *testing.T) {
	exec := &chtest.MockExecutor{}
	sub := chtest.NewMockSubmitter()
	intents := []types.Intent{
		types.NewIntent(0, alice, bob, native, 0),
		types.NewIntent(1, alice, bob, native, 10),
	}

	// Lenient: the invalid intent is skipped and reported.
	rep, err := newChannel(t, exec, sub, 10).ProcessTransfers(context.Background(), intents)
	require.NoError(t, err)
	require.Len(t, rep.Invalid, 1)
	require.Equal(t, 0, rep.Invalid[0].Seq)
	require.Equal(t, [][]types.Intent{{intents[1]}}, exec.Calls)
	require.Equal(t, 1, rep.Succeeded)

	// Strict: nothing is executed.
	exec = &chtest.MockExecutor{}
	sub = chtest.NewMockSubmitter()
	rep, err = newChannel(t, exec, sub, 10, channel.WithStrictValidation()).ProcessTransfers(context.Background(), intents)
	require.ErrorIs(t, err, types.ErrInvalidIntent)
	require.Len(t, rep.Invalid, 1)
	require.Empty(t, exec.Calls)
	require.Empty(t, sub.Submitted)
}

func TestProcessTransfers_ExecutionUnavailable(t *testing.T) {
	sub := chtest.NewMockSubmitter()
	exec := &chtest.MockExecutor{Err: errors.New("connection refused")}
	_, err := newChannel(t, exec, sub, 10).ProcessTransfers(context.Background(), []types.Intent{
		types.NewIntent(0, alice, bob, native, 1),
	})
	require.ErrorIs(t, err, channel.ErrExecutionUnavailable)
	require.Empty(t, sub.Submitted)
}

type shortExecutor struct{}

func (shortExecutor) Execute(context.Context, []types.Intent) ([]types.Outcome, error) {
	return []types.Outcome{}, nil
}

func TestProcessTransfers_MismatchedOutcomes(t *testing.T) {
	sub := chtest.NewMockSubmitter()
	_, err := newChannel(t, shortExecutor{}, sub, 10).ProcessTransfers(context.Background(), []types.Intent{
		types.NewIntent(0, alice, bob, native, 1),
	})
	require.ErrorIs(t, err, ledger.ErrMismatchedLength)
	require.Empty(t, sub.Submitted)
}

func TestProcessTransfers_RejectedBatchContinues(t *testing.T) {
	rng := pkgtest.Prng(t)
	accounts := chtest.NewRandomAccountKeys(rng, 5)
	intents := chtest.NewRandomIntents(rng, accounts, []types.Asset{native}, 30, 1000)

	sub := chtest.NewMockSubmitter()
	sub.Reject[0] = "tx_insufficient_balance"
	kv := store.NewInMemoryKVStore()
	defer kv.Close()
	journal := store.NewJournal(kv)

	c := newChannel(t, &chtest.MockExecutor{}, sub, 1, channel.WithJournal(journal))
	rep, err := c.ProcessTransfers(context.Background(), intents)
	require.NoError(t, err)
	require.Greater(t, len(rep.Batches), 1)
	require.Len(t, rep.Results, len(rep.Batches))
	require.False(t, rep.Settled())
	require.Len(t, rep.Rejected(), 1)
	require.Equal(t, "tx_insufficient_balance", rep.Rejected()[0].Reason)

	recorded, err := journal.Batches(rep.Session)
	require.NoError(t, err)
	require.Equal(t, rep.Batches, recorded)
	pending, err := journal.Pending(rep.Session)
	require.NoError(t, err)
	require.Equal(t, []settlement.Batch{rep.Batches[0]}, pending)
}

func TestProcessTransfers_SubmitterError(t *testing.T) {
	sub := chtest.NewMockSubmitter()
	sub.ErrAt = 1
	sub.Err = errors.New("horizon unreachable")
	c := newChannel(t, &chtest.MockExecutor{}, sub, 1)

	rep, err := c.ProcessTransfers(context.Background(), []types.Intent{
		types.NewIntent(0, alice, bob, native, 10),
		types.NewIntent(1, alice, will, native, 10),
		types.NewIntent(2, will, bob, native, 1),
	})
	require.ErrorIs(t, err, sub.Err)
	require.Len(t, rep.Batches, 2)
	require.Len(t, rep.Results, 1)
	require.False(t, rep.Settled())
}

func TestPlanDoesNotSubmit(t *testing.T) {
	sub := chtest.NewMockSubmitter()
	c := newChannel(t, &chtest.MockExecutor{}, sub, 10)
	rep, err := c.Plan(context.Background(), []types.Intent{types.NewIntent(0, alice, bob, native, 10)})
	require.NoError(t, err)
	require.Len(t, rep.Batches, 1)
	require.Empty(t, sub.Submitted)
	require.NotEmpty(t, rep.Session)
}

func TestConcurrentPasses(t *testing.T) {
	rng := pkgtest.Prng(t)
	accounts := chtest.NewRandomAccountKeys(rng, 4)
	sub := chtest.NewMockSubmitter()
	c := newChannel(t, &chtest.MockExecutor{}, sub, 3)

	const passes = 8
	batches := make([][]types.Intent, passes)
	for i := range batches {
		batches[i] = chtest.NewRandomIntents(rng, accounts, []types.Asset{native}, 20, 100)
	}
	reports := make([]*channel.Report, passes)
	var wg sync.WaitGroup
	for i := range batches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rep, err := c.ProcessTransfers(context.Background(), batches[i])
			if err == nil {
				reports[i] = rep
			}
		}(i)
	}
	wg.Wait()

	for i, rep := range reports {
		require.NotNil(t, rep)
		want, err := c.Plan(context.Background(), batches[i])
		require.NoError(t, err)
		require.Equal(t, want.Batches, rep.Batches)
	}
}
