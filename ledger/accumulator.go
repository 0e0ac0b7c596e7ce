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

package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel/types"
)

var (
	// ErrMismatchedLength is returned when intents and outcomes do not pair up.
	ErrMismatchedLength = errors.New("intents and outcomes differ in length")
	// ErrOutcomeOrder is returned when an outcome does not belong to the intent at its position.
	ErrOutcomeOrder = fmt.Errorf("%w: outcome out of order", ErrMismatchedLength)
)

// Failure is an intent that failed during execution, together with the
// execution logs.
type Failure struct {
	Intent types.Intent
	Logs   []string
}

// Result is the outcome of folding a batch into a ledger.
type Result struct {
	Ledger    *Ledger
	Failed    []Failure
	Succeeded int
}

// Accumulator folds executed intents into a net ledger.
type Accumulator struct {
	log log.Embedding
}

// NewAccumulator returns a new Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{log: log.MakeEmbedding(log.Default())}
}

// Accumulate applies every successful intent to a fresh ledger, in order.
// outcomes[i] must be the outcome of intents[i]. Failed intents leave the
// ledger untouched and are returned in Result.Failed.
func (a *Accumulator) Accumulate(intents []types.Intent, outcomes []types.Outcome) (*Result, error) {
	if len(intents) != len(outcomes) {
		return nil, fmt.Errorf("%w: %d intents, %d outcomes", ErrMismatchedLength, len(intents), len(outcomes))
	}

	res := &Result{Ledger: newLedger()}
	for i, in := range intents {
		out := outcomes[i]
		if out.Seq != in.Seq {
			return nil, fmt.Errorf("%w: position %d has intent #%d and outcome #%d", ErrOutcomeOrder, i, in.Seq, out.Seq)
		}
		if !out.Succeeded {
			a.log.Log().WithField("seq", in.Seq).Debugf("Skipping failed intent %v", in)
			res.Failed = append(res.Failed, Failure{Intent: in, Logs: out.Logs})
			continue
		}
		amount := new(big.Int).SetUint64(in.Amount)
		res.Ledger.add(Key{in.Sender, in.Asset}, new(big.Int).Neg(amount))
		res.Ledger.add(Key{in.Receiver, in.Asset}, amount)
		res.Succeeded++
	}

	if err := res.Ledger.CheckConservation(); err != nil {
		a.log.Log().Errorf("Accumulated ledger violates conservation: %v", err)
		return nil, err
	}
	res.Ledger.prune()
	return res, nil
}

// Accumulate folds intents and outcomes with a default Accumulator.
func Accumulate(intents []types.Intent, outcomes []types.Outcome) (*Result, error) {
	return NewAccumulator().Accumulate(intents, outcomes)
}
