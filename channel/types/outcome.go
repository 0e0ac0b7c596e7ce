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

package types

// Outcome is the executor's verdict on the intent with the same Seq.
type Outcome struct {
	Seq       int
	Succeeded bool
	Logs      []string
}

// Success returns a successful outcome for seq.
func Success(seq int, logs ...string) Outcome {
	return Outcome{Seq: seq, Succeeded: true, Logs: logs}
}

// Failure returns a failed outcome for seq.
func Failure(seq int, logs ...string) Outcome {
	return Outcome{Seq: seq, Succeeded: false, Logs: logs}
}

// Snapshot is the state of an account as seen by an account source.
// Balances are in the smallest unit of the asset (stroops).
type Snapshot struct {
	Key      AccountKey
	Native   uint64
	Tokens   map[string]uint64
	Sequence int64
}

// Balance returns the balance of asset and whether the account can hold it.
// The native asset is always held.
func (s Snapshot) Balance(asset Asset) (uint64, bool) {
	if asset.IsNative() {
		return s.Native, true
	}
	bal, ok := s.Tokens[asset.Token]
	return bal, ok
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Tokens != nil {
		c.Tokens = make(map[string]uint64, len(s.Tokens))
		for k, v := range s.Tokens {
			c.Tokens[k] = v
		}
	}
	return c
}
