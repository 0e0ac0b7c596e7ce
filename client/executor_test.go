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
package client_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-paytube-backend/channel"
	chtest "perun.network/perun-paytube-backend/channel/test"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/client"
	"perun.network/perun-paytube-backend/ledger"
	"perun.network/perun-paytube-backend/store"
)

type fixture struct {
	alice, bob, will types.AccountKey
	token            types.Asset
	db               *client.LocalDB
	rng              *rand.Rand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rng := pkgtest.Prng(t)
	keys := chtest.NewRandomAccountKeys(rng, 3)
	f := &fixture{alice: keys[0], bob: keys[1], will: keys[2], token: chtest.NewRandomTokenAsset(rng), rng: rng}

	kv := store.NewInMemoryKVStore()
	t.Cleanup(func() { kv.Close() })
	f.db = client.NewLocalDB(kv)
	require.NoError(t, f.db.WriteGenesis(
		types.Snapshot{Key: f.alice, Native: 100, Tokens: map[string]uint64{f.token.Token: 10}},
		types.Snapshot{Key: f.bob, Native: 0},
		types.Snapshot{Key: f.will, Native: 0, Tokens: map[string]uint64{f.token.Token: 0}},
	))
	return f
}

func TestLocalDB(t *testing.T) {
	f := newFixture(t)
	snap, err := f.db.Fetch(context.Background(), f.alice)
	require.NoError(t, err)
	require.EqualValues(t, 100, snap.Native)
	bal, ok := snap.Balance(f.token)
	require.True(t, ok)
	require.EqualValues(t, 10, bal)

	unknown, _ := chtest.NewRandomAccountKey(f.rng)
	require.NotContains(t, []types.AccountKey{f.alice, f.bob, f.will}, unknown)
	_, err = f.db.Fetch(context.Background(), unknown)
	require.ErrorIs(t, err, channel.ErrAccountNotFound)

	require.NoError(t, f.db.Put(types.Snapshot{Key: unknown, Native: 3}))
	snap, err = f.db.Fetch(context.Background(), unknown)
	require.NoError(t, err)
	require.EqualValues(t, 3, snap.Native)
}

func TestLocalExecutor_SpendsReceivedFunds(t *testing.T) {
	f := newFixture(t)
	native := types.NativeAsset()
	exec := client.NewLocalExecutor(f.db)

	intents := []types.Intent{
		types.NewIntent(0, f.alice, f.bob, native, 100),
		types.NewIntent(1, f.bob, f.will, native, 50),
		types.NewIntent(2, f.alice, f.will, native, 30),
	}
	outcomes, err := exec.Execute(context.Background(), intents)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	require.True(t, outcomes[0].Succeeded)
	require.True(t, outcomes[1].Succeeded)
	require.False(t, outcomes[2].Succeeded)
	require.Contains(t, outcomes[2].Logs[len(outcomes[2].Logs)-1], "insufficient funds")
	for i, o := range outcomes {
		require.Equal(t, intents[i].Seq, o.Seq)
	}

	res, err := ledger.Accumulate(intents, outcomes)
	require.NoError(t, err)
	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, int64(-100), res.Ledger.Delta(f.alice, native).Int64())
	require.Equal(t, int64(50), res.Ledger.Delta(f.bob, native).Int64())
	require.Equal(t, int64(50), res.Ledger.Delta(f.will, native).Int64())
}

func TestLocalExecutor_Failures(t *testing.T) {
	f := newFixture(t)
	stranger, _ := chtest.NewRandomAccountKey(f.rng)
	require.NotContains(t, []types.AccountKey{f.alice, f.bob, f.will}, stranger)
	exec := client.NewLocalExecutor(f.db)

	intents := []types.Intent{
		types.NewIntent(0, stranger, f.bob, types.NativeAsset(), 1),
		types.NewIntent(1, f.alice, stranger, types.NativeAsset(), 1),
		types.NewIntent(2, f.alice, f.bob, f.token, 1),
		types.NewIntent(3, f.bob, f.will, f.token, 1),
		types.NewIntent(4, f.alice, f.will, f.token, 10),
	}
	outcomes, err := exec.Execute(context.Background(), intents)
	require.NoError(t, err)
	for i, want := range []bool{false, false, false, false, true} {
		require.Equal(t, want, outcomes[i].Succeeded, "intent %d", i)
		require.NotEmpty(t, outcomes[i].Logs)
	}
	require.Contains(t, outcomes[0].Logs[1], "sender account")
	require.Contains(t, outcomes[1].Logs[1], "receiver account")
	require.Contains(t, outcomes[2].Logs[1], "receiver has no trustline")
	require.Contains(t, outcomes[3].Logs[1], "sender has no trustline")
}

func TestLocalExecutor_DoesNotModifySource(t *testing.T) {
	f := newFixture(t)
	loader := client.NewCachingLoader(f.db)
	exec := client.NewLocalExecutor(loader)
	intents := []types.Intent{types.NewIntent(0, f.alice, f.bob, types.NativeAsset(), 60)}

	for i := 0; i < 2; i++ {
		outcomes, err := exec.Execute(context.Background(), intents)
		require.NoError(t, err)
		require.True(t, outcomes[0].Succeeded)
	}
	snap, err := loader.Fetch(context.Background(), f.alice)
	require.NoError(t, err)
	require.EqualValues(t, 100, snap.Native)
}

func TestLocalExecutor_Unavailable(t *testing.T) {
	rng := pkgtest.Prng(t)
	keys := chtest.NewRandomAccountKeys(rng, 2)
	src := newCountingSource()
	src.err = errors.New("connection refused")
	exec := client.NewLocalExecutor(src)

	_, err := exec.Execute(context.Background(), []types.Intent{
		types.NewIntent(0, keys[0], keys[1], types.NativeAsset(), 1),
	})
	require.ErrorIs(t, err, channel.ErrExecutionUnavailable)
}

func TestLocalExecutor_Empty(t *testing.T) {
	exec := client.NewLocalExecutor(newCountingSource())
	outcomes, err := exec.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, outcomes)
}
