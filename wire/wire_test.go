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

package wire_test

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	chtest "perun.network/perun-paytube-backend/channel/test"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/wire"
	"perun.network/perun-paytube-backend/wire/scval"
)

func TestBatchEncoding(t *testing.T) {
	rng := pkgtest.Prng(t)
	keys := chtest.NewRandomAccountKeys(rng, 3)
	token := chtest.NewRandomTokenAsset(rng)

	batch := settlement.Batch{
		Index: 3,
		Operations: []settlement.Operation{
			{From: keys[0], To: keys[1], Asset: types.NativeAsset(), Amount: 50},
			{From: keys[0], To: keys[2], Asset: token, Amount: 1<<63 + 7},
		},
	}
	data, err := wire.EncodeBatch(batch)
	require.NoError(t, err)

	decoded, err := wire.DecodeBatch(data)
	require.NoError(t, err)
	require.Equal(t, batch, decoded)

	again, err := wire.EncodeBatch(decoded)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestOperationScValLayout(t *testing.T) {
	rng := pkgtest.Prng(t)
	keys := chtest.NewRandomAccountKeys(rng, 2)
	op, err := wire.MakeOperation(settlement.Operation{From: keys[0], To: keys[1], Asset: types.NativeAsset(), Amount: 1})
	require.NoError(t, err)

	v, err := op.ToScVal()
	require.NoError(t, err)
	m, ok := v.GetMap()
	require.True(t, ok)
	require.Len(t, *m, 4)

	// Keys are sorted by symbol.
	var syms []xdr.ScSymbol
	for _, e := range *m {
		syms = append(syms, e.Key.MustSym())
	}
	require.Equal(t, []xdr.ScSymbol{"amount", "asset", "from", "to"}, syms)

	var back wire.Operation
	require.Error(t, back.FromScVal(scval.MustWrapUint64(1)))
}

func TestResultEncoding(t *testing.T) {
	for _, res := range []settlement.Result{
		settlement.ConfirmedResult(0, "abcd"),
		settlement.RejectedResult(4, "tx_bad_seq"),
	} {
		data, err := wire.EncodeResult(res)
		require.NoError(t, err)
		decoded, err := wire.DecodeResult(data)
		require.NoError(t, err)
		require.Equal(t, res, decoded)
	}
}

func TestSnapshotEncoding(t *testing.T) {
	rng := pkgtest.Prng(t)
	key, _ := chtest.NewRandomAccountKey(rng)
	tokenA, tokenB := chtest.NewRandomTokenAsset(rng), chtest.NewRandomTokenAsset(rng)

	snap := types.Snapshot{
		Key:      key,
		Native:   10_000_000,
		Sequence: 42,
		Tokens:   map[string]uint64{tokenA.Token: 5, tokenB.Token: 0},
	}
	data, err := wire.EncodeSnapshot(snap)
	require.NoError(t, err)
	decoded, err := wire.DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, snap, decoded)

	empty := types.Snapshot{Key: key, Tokens: map[string]uint64{}}
	data, err = wire.EncodeSnapshot(empty)
	require.NoError(t, err)
	decoded, err = wire.DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, empty, decoded)
}
