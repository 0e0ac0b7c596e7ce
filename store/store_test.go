package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	chtest "perun.network/perun-paytube-backend/channel/test"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/store"
)

func TestBadgerKV(t *testing.T) {
	kv := store.NewInMemoryKVStore()
	defer kv.Close()

	_, err := kv.Get([]byte("missing"))
	require.ErrorIs(t, err, store.ErrKeyNotFound)

	require.NoError(t, kv.Set([]byte("a/1"), []byte("one")))
	v, err := kv.Get([]byte("a/1"))
	require.NoError(t, err)
	require.Equal(t, []byte("one"), v)

	b := kv.NewBatch()
	require.NoError(t, b.Set([]byte("a/2"), []byte("two")))
	require.NoError(t, b.Set([]byte("b/1"), []byte("other")))
	require.NoError(t, b.Commit())

	var keys []string
	it := kv.PrefixIterator([]byte("a/"))
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	it.Discard()
	require.Equal(t, []string{"a/1", "a/2"}, keys)

	require.NoError(t, kv.Delete([]byte("a/1")))
	_, err = kv.Get([]byte("a/1"))
	require.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestJournal(t *testing.T) {
	rng := pkgtest.Prng(t)
	kv := store.NewInMemoryKVStore()
	defer kv.Close()
	j := store.NewJournal(kv)

	keys := chtest.NewRandomAccountKeys(rng, 3)
	var ops []settlement.Operation
	for i := 0; i < 11; i++ {
		ops = append(ops, settlement.Operation{From: keys[0], To: keys[1+i%2], Asset: types.NativeAsset(), Amount: uint64(i + 1)})
	}
	batches := settlement.Chunk(ops, 4)
	require.Len(t, batches, 3)

	require.NoError(t, j.RecordBatches("s1", batches))
	require.NoError(t, j.RecordBatches("s2", batches[:1]))

	got, err := j.Batches("s1")
	require.NoError(t, err)
	require.Equal(t, batches, got)

	require.NoError(t, j.RecordResult("s1", settlement.ConfirmedResult(0, "hash0")))
	require.NoError(t, j.RecordResult("s1", settlement.RejectedResult(2, "op_underfunded")))

	results, err := j.Results("s1")
	require.NoError(t, err)
	require.Equal(t, []settlement.Result{
		settlement.ConfirmedResult(0, "hash0"),
		settlement.RejectedResult(2, "op_underfunded"),
	}, results)

	pending, err := j.Pending("s1")
	require.NoError(t, err)
	require.Equal(t, []settlement.Batch{batches[1], batches[2]}, pending)

	require.NoError(t, j.RecordResult("s1", settlement.ConfirmedResult(2, "hash2")))
	pending, err = j.Pending("s1")
	require.NoError(t, err)
	require.Equal(t, []settlement.Batch{batches[1]}, pending)

	other, err := j.Batches("s2")
	require.NoError(t, err)
	require.Len(t, other, 1)

	none, err := j.Batches("unknown")
	require.NoError(t, err)
	require.Empty(t, none)
}
