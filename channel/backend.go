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

package channel

import (
	"context"
	"errors"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/settlement"
)

var (
	// ErrExecutionUnavailable is returned when the executor cannot run a batch at all.
	ErrExecutionUnavailable = errors.New("execution unavailable")
	// ErrAccountNotFound is returned by account sources for unknown accounts.
	ErrAccountNotFound = errors.New("account not found")
)

// Executor runs transfer intents off-chain. It returns exactly one outcome
// per intent, in input order. Individual failures are reported in the
// outcomes; an error means that the batch as a whole could not be executed
// and should wrap ErrExecutionUnavailable.
type Executor interface {
	Execute(ctx context.Context, intents []types.Intent) ([]types.Outcome, error)
}

// AccountSource provides account snapshots to executors.
type AccountSource interface {
	Fetch(ctx context.Context, key types.AccountKey) (types.Snapshot, error)
}

// Submitter submits settlement batches to the settlement chain. A rejection
// by the chain is reported in the result; an error means the verdict is
// unknown. Submitters do not retry.
type Submitter interface {
	Submit(ctx context.Context, batch settlement.Batch) (settlement.Result, error)
}

// Journal records settlement batches and their results.
type Journal interface {
	RecordBatches(session string, batches []settlement.Batch) error
	RecordResult(session string, res settlement.Result) error
}
