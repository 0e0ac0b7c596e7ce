package settlement_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	chtest "perun.network/perun-paytube-backend/channel/test"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/ledger"
	"perun.network/perun-paytube-backend/settlement"
)

const (
	alice types.AccountKey = "Alice"
	bob   types.AccountKey = "Bob"
	carol types.AccountKey = "Carol"
	will  types.AccountKey = "Will"
)

var native = types.NativeAsset()

func entry(acc types.AccountKey, asset types.Asset, delta int64) ledger.Entry {
	return ledger.Entry{Account: acc, Asset: asset, Delta: big.NewInt(delta)}
}

func newBuilder(t *testing.T, maxOps int) *settlement.Builder {
	t.Helper()
	b, err := settlement.NewBuilder(maxOps)
	require.NoError(t, err)
	return b
}

func TestBuildOneDebtorTwoCreditors(t *testing.T) {
	l := ledger.FromEntries(
		entry(will, native, 50),
		entry(alice, native, -100),
		entry(bob, native, 50),
	)
	batches, err := newBuilder(t, 10).Build(l)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, []settlement.Operation{
		{From: alice, To: bob, Asset: native, Amount: 50},
		{From: alice, To: will, Asset: native, Amount: 50},
	}, batches[0].Operations)
	require.Equal(t, []types.AccountKey{alice}, batches[0].Debtors())
}

func TestBuildEmptyLedger(t *testing.T) {
	batches, err := newBuilder(t, 1).Build(ledger.FromEntries())
	require.NoError(t, err)
	require.Empty(t, batches)

	res, err := ledger.Accumulate([]types.Intent{
		types.NewIntent(0, alice, bob, native, 100),
		types.NewIntent(1, bob, alice, native, 100),
	}, []types.Outcome{types.Success(0), types.Success(1)})
	require.NoError(t, err)
	batches, err = newBuilder(t, 1).Build(res.Ledger)
	require.NoError(t, err)
	require.Empty(t, batches)
}

func TestBuildLargestFirst(t *testing.T) {
	l := ledger.FromEntries(
		entry(alice, native, -70),
		entry(bob, native, -30),
		entry(carol, native, 60),
		entry(will, native, 40),
	)
	ops, err := newBuilder(t, 10).Operations(l)
	require.NoError(t, err)
	require.Equal(t, []settlement.Operation{
		{From: alice, To: carol, Asset: native, Amount: 60},
		{From: bob, To: will, Asset: native, Amount: 30},
		{From: alice, To: will, Asset: native, Amount: 10},
	}, ops)
}

func TestBuildChunksBatches(t *testing.T) {
	rng := pkgtest.Prng(t)
	usd := chtest.NewRandomTokenAsset(rng)
	l := ledger.FromEntries(
		entry(alice, usd, -30),
		entry(bob, usd, 10),
		entry(carol, usd, 10),
		entry(will, usd, 10),
		entry(alice, native, 5),
		entry(bob, native, -5),
	)
	batches, err := newBuilder(t, 2).Build(l)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	require.Equal(t, 0, batches[0].Index)
	require.Equal(t, 1, batches[1].Index)
	require.Equal(t, 2, batches[0].Len())
	require.Equal(t, 2, batches[1].Len())

	// Assets settle in declaration order.
	require.Equal(t, usd, batches[0].Operations[0].Asset)
	require.Equal(t, native, batches[1].Operations[1].Asset)
	require.Equal(t, settlement.Operation{From: bob, To: alice, Asset: native, Amount: 5}, batches[1].Operations[1])
}

func TestBuildImbalance(t *testing.T) {
	l := ledger.FromEntries(
		entry(alice, native, -100),
		entry(bob, native, 90),
	)
	_, err := newBuilder(t, 10).Build(l)
	require.ErrorIs(t, err, ledger.ErrLedgerImbalance)
}

func TestBuildAmountOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	l := ledger.FromEntries(
		ledger.Entry{Account: alice, Asset: native, Delta: new(big.Int).Neg(huge)},
		ledger.Entry{Account: bob, Asset: native, Delta: huge},
	)
	_, err := newBuilder(t, 10).Build(l)
	require.ErrorIs(t, err, settlement.ErrAmountOverflow)
}

func TestNewBuilderInvalidSize(t *testing.T) {
	_, err := settlement.NewBuilder(0)
	require.ErrorIs(t, err, settlement.ErrInvalidBatchSize)
}

func TestBuildProperties(t *testing.T) {
	rng := pkgtest.Prng(t)
	accounts := chtest.NewRandomAccountKeys(rng, 8)
	assets := []types.Asset{native, chtest.NewRandomTokenAsset(rng)}

	for i := 0; i < 50; i++ {
		intents := chtest.NewRandomIntents(rng, accounts, assets, 1+rng.Intn(60), 10_000)
		res, err := ledger.Accumulate(intents, chtest.NewRandomOutcomes(rng, intents, 0.2))
		require.NoError(t, err)

		maxOps := 1 + rng.Intn(5)
		b := newBuilder(t, maxOps)
		batches, err := b.Build(res.Ledger)
		require.NoError(t, err)

		// Applying the operations clears the ledger.
		var entries []ledger.Entry
		perAsset := make(map[types.Asset]int)
		for _, batch := range batches {
			require.LessOrEqual(t, batch.Len(), maxOps)
			for _, op := range batch.Operations {
				require.NotZero(t, op.Amount)
				require.NotEqual(t, op.From, op.To)
				perAsset[op.Asset]++
				entries = append(entries,
					ledger.Entry{Account: op.From, Asset: op.Asset, Delta: new(big.Int).SetUint64(op.Amount)},
					ledger.Entry{Account: op.To, Asset: op.Asset, Delta: new(big.Int).Neg(new(big.Int).SetUint64(op.Amount))},
				)
			}
		}
		entries = append(entries, res.Ledger.Entries()...)
		require.True(t, ledger.FromEntries(entries...).IsEmpty())

		// At most one operation less than non-zero accounts per asset.
		for _, a := range res.Ledger.Assets() {
			require.LessOrEqual(t, perAsset[a], len(res.Ledger.Positions(a))-1)
		}

		// Deterministic regardless of entry order.
		shuffled := res.Ledger.Entries()
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		reordered := ledger.FromEntries(shuffled...)
		for _, a := range res.Ledger.Assets() {
			want, err := b.Operations(ledger.FromEntries(res.Ledger.Positions(a)...))
			require.NoError(t, err)
			got, err := b.Operations(ledger.FromEntries(reordered.Positions(a)...))
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
		again, err := b.Build(res.Ledger)
		require.NoError(t, err)
		require.Equal(t, batches, again)
	}
}
