package test

import (
	"math/rand"

	"github.com/stellar/go/keypair"

	"perun.network/perun-paytube-backend/channel/types"
)

// NewRandomKeypair derives a keypair from rng.
func NewRandomKeypair(rng *rand.Rand) *keypair.Full {
	var seed [32]byte
	rng.Read(seed[:])
	kp, err := keypair.FromRawSeed(seed)
	if err != nil {
		panic(err)
	}
	return kp
}

// NewRandomAccountKey returns a valid account key and its keypair.
func NewRandomAccountKey(rng *rand.Rand) (types.AccountKey, *keypair.Full) {
	kp := NewRandomKeypair(rng)
	return types.MakeAccountKey(kp), kp
}

// NewRandomAccountKeys returns n distinct account keys.
func NewRandomAccountKeys(rng *rand.Rand, n int) []types.AccountKey {
	keys := make([]types.AccountKey, n)
	for i := range keys {
		keys[i], _ = NewRandomAccountKey(rng)
	}
	return keys
}

// NewRandomTokenAsset returns a token asset issued by a random account.
func NewRandomTokenAsset(rng *rand.Rand) types.Asset {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	code := make([]byte, 3+rng.Intn(2))
	for i := range code {
		code[i] = letters[rng.Intn(len(letters))]
	}
	issuer, _ := NewRandomAccountKey(rng)
	return types.MustNewTokenAsset(string(code), issuer)
}

// NewRandomIntents returns n valid intents between the given accounts.
// Amounts are drawn from [1, maxAmount].
func NewRandomIntents(rng *rand.Rand, accounts []types.AccountKey, assets []types.Asset, n int, maxAmount uint64) []types.Intent {
	if len(accounts) < 2 {
		panic("need at least two accounts")
	}
	intents := make([]types.Intent, n)
	for i := range intents {
		from := rng.Intn(len(accounts))
		to := rng.Intn(len(accounts) - 1)
		if to >= from {
			to++
		}
		intents[i] = types.NewIntent(i,
			accounts[from],
			accounts[to],
			assets[rng.Intn(len(assets))],
			1+uint64(rng.Int63n(int64(maxAmount))),
		)
	}
	return intents
}

// NewRandomOutcomes marks every intent as failed with probability failRate.
func NewRandomOutcomes(rng *rand.Rand, intents []types.Intent, failRate float64) []types.Outcome {
	outcomes := make([]types.Outcome, len(intents))
	for i, in := range intents {
		if rng.Float64() < failRate {
			outcomes[i] = types.Failure(in.Seq, "Program log: transfer rejected")
		} else {
			outcomes[i] = types.Success(in.Seq, "Program log: transfer ok")
		}
	}
	return outcomes
}
