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
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/ledger"
	"perun.network/perun-paytube-backend/settlement"
)

// Report describes a settlement pass.
type Report struct {
	Session   string
	Invalid   []*types.IntentError
	Failed    []ledger.Failure
	Succeeded int
	Ledger    *ledger.Ledger
	Batches   []settlement.Batch
	Results   []settlement.Result
}

// NumOperations returns the number of settlement operations over all batches.
func (r *Report) NumOperations() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Len()
	}
	return n
}

// Settled reports whether every batch has been confirmed.
func (r *Report) Settled() bool {
	if len(r.Results) != len(r.Batches) {
		return false
	}
	for _, res := range r.Results {
		if !res.Confirmed() {
			return false
		}
	}
	return true
}

// Rejected returns the results of rejected batches.
func (r *Report) Rejected() []settlement.Result {
	var rejected []settlement.Result
	for _, res := range r.Results {
		if !res.Confirmed() {
			rejected = append(rejected, res)
		}
	}
	return rejected
}
