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

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidIntent is returned for intents that must not reach execution.
var ErrInvalidIntent = errors.New("invalid transfer intent")

// Intent is a request to move Amount units of Asset from Sender to Receiver.
// Seq is the ordinal position of the intent in the submitted batch.
type Intent struct {
	Seq      int
	Sender   AccountKey
	Receiver AccountKey
	Asset    Asset
	Amount   uint64
}

// NewIntent returns an intent at position seq.
func NewIntent(seq int, sender, receiver AccountKey, asset Asset, amount uint64) Intent {
	return Intent{
		Seq:      seq,
		Sender:   sender,
		Receiver: receiver,
		Asset:    asset,
		Amount:   amount,
	}
}

func (i Intent) String() string {
	return fmt.Sprintf("#%d %s -> %s: %d %s", i.Seq, i.Sender.Short(), i.Receiver.Short(), i.Amount, i.Asset)
}

// IntentError describes why a single intent was rejected.
type IntentError struct {
	Seq    int
	Reason string
}

func (e *IntentError) Error() string {
	return fmt.Sprintf("intent #%d: %s", e.Seq, e.Reason)
}

// Unwrap makes IntentError match ErrInvalidIntent.
func (e *IntentError) Unwrap() error {
	return ErrInvalidIntent
}

// Validate rejects intents with a zero amount or identical endpoints.
func (i Intent) Validate() error {
	switch {
	case i.Amount == 0:
		return &IntentError{Seq: i.Seq, Reason: "amount must be positive"}
	case i.Sender == "" || i.Receiver == "":
		return &IntentError{Seq: i.Seq, Reason: "sender and receiver must be set"}
	case i.Sender == i.Receiver:
		return &IntentError{Seq: i.Seq, Reason: "sender equals receiver"}
	}
	if err := i.Asset.Validate(); err != nil {
		return &IntentError{Seq: i.Seq, Reason: err.Error()}
	}
	return nil
}

// ValidateIntents validates every intent and returns the combined error of
// all offending intents, or nil. Use multierr.Errors to inspect them.
func ValidateIntents(intents []Intent) error {
	var err error
	for _, in := range intents {
		err = multierr.Append(err, in.Validate())
	}
	return err
}

// SplitValid partitions intents into the valid ones, in order, and the errors
// of the invalid ones.
func SplitValid(intents []Intent) ([]Intent, []*IntentError) {
	valid := make([]Intent, 0, len(intents))
	var invalid []*IntentError
	for _, in := range intents {
		err := in.Validate()
		if err == nil {
			valid = append(valid, in)
			continue
		}
		var ie *IntentError
		if errors.As(err, &ie) {
			invalid = append(invalid, ie)
		}
	}
	return valid, invalid
}
