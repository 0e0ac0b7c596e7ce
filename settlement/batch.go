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

package settlement

import (
	"fmt"

	"perun.network/perun-paytube-backend/channel/types"
)

// Operation moves Amount of Asset from a debtor to a creditor on the
// settlement chain.
type Operation struct {
	From   types.AccountKey
	To     types.AccountKey
	Asset  types.Asset
	Amount uint64
}

func (op Operation) String() string {
	return fmt.Sprintf("%s -> %s: %d %s", op.From.Short(), op.To.Short(), op.Amount, op.Asset)
}

// Batch is a group of operations submitted atomically. Index is the position
// of the batch in the settlement plan.
type Batch struct {
	Index      int
	Operations []Operation
}

// Len returns the number of operations in the batch.
func (b Batch) Len() int {
	return len(b.Operations)
}

// Debtors returns the distinct paying accounts of the batch, in order of
// first appearance.
func (b Batch) Debtors() []types.AccountKey {
	seen := make(map[types.AccountKey]struct{}, len(b.Operations))
	var debtors []types.AccountKey
	for _, op := range b.Operations {
		if _, ok := seen[op.From]; ok {
			continue
		}
		seen[op.From] = struct{}{}
		debtors = append(debtors, op.From)
	}
	return debtors
}

// Status is the verdict of the settlement chain on a batch.
type Status uint8

const (
	// Confirmed means the batch was applied on the settlement chain.
	Confirmed Status = iota + 1
	// Rejected means the settlement chain refused the batch.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Confirmed:
		return "Confirmed"
	case Rejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Result is the submitter's report on a single batch.
type Result struct {
	Batch  int
	Status Status
	TxHash string
	Reason string
}

// ConfirmedResult returns a confirmation of batch with the settlement transaction hash.
func ConfirmedResult(batch int, txHash string) Result {
	return Result{Batch: batch, Status: Confirmed, TxHash: txHash}
}

// RejectedResult returns a rejection of batch.
func RejectedResult(batch int, reason string) Result {
	return Result{Batch: batch, Status: Rejected, Reason: reason}
}

// Confirmed reports whether the batch was confirmed.
func (r Result) Confirmed() bool {
	return r.Status == Confirmed
}
