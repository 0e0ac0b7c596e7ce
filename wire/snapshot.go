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

package wire

import (
	"errors"
	"sort"

	"github.com/stellar/go/xdr"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/wire/scval"
)

const (
	SymbolSnapshotAccount  xdr.ScSymbol = "account"
	SymbolSnapshotNative   xdr.ScSymbol = "native"
	SymbolSnapshotSequence xdr.ScSymbol = "sequence"
	SymbolSnapshotTokens   xdr.ScSymbol = "tokens"
)

// Snapshot is the wire representation of an account snapshot. Token
// balances are stored as a map from CODE:ISSUER to amount.
type Snapshot struct {
	Account  xdr.ScAddress
	Native   xdr.Uint64
	Sequence xdr.Int64
	Tokens   xdr.ScMap
}

// MakeSnapshot converts an account snapshot.
func MakeSnapshot(s types.Snapshot) (Snapshot, error) {
	account, err := s.Key.ScAddress()
	if err != nil {
		return Snapshot{}, err
	}
	tokens := make(xdr.ScMap, 0, len(s.Tokens))
	for id, bal := range s.Tokens {
		tokens = append(tokens, xdr.ScMapEntry{
			Key: scval.MustWrapScString(xdr.ScString(id)),
			Val: scval.MustWrapUint64(xdr.Uint64(bal)),
		})
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Key.MustStr() < tokens[j].Key.MustStr()
	})
	return Snapshot{
		Account:  account,
		Native:   xdr.Uint64(s.Native),
		Sequence: xdr.Int64(s.Sequence),
		Tokens:   tokens,
	}, nil
}

// ToSnapshot converts s back into an account snapshot.
func (s Snapshot) ToSnapshot() (types.Snapshot, error) {
	key, err := types.AccountKeyFromScAddress(s.Account)
	if err != nil {
		return types.Snapshot{}, err
	}
	snap := types.Snapshot{
		Key:      key,
		Native:   uint64(s.Native),
		Sequence: int64(s.Sequence),
		Tokens:   make(map[string]uint64, len(s.Tokens)),
	}
	for _, e := range s.Tokens {
		id, ok := e.Key.GetStr()
		if !ok {
			return types.Snapshot{}, errors.New("expected string token id")
		}
		bal, ok := e.Val.GetU64()
		if !ok {
			return types.Snapshot{}, errors.New("expected uint64 balance")
		}
		snap.Tokens[string(id)] = uint64(bal)
	}
	return snap, nil
}

func (s Snapshot) ToScVal() (xdr.ScVal, error) {
	account, err := scval.WrapScAddress(s.Account)
	if err != nil {
		return xdr.ScVal{}, err
	}
	native, err := scval.WrapUint64(s.Native)
	if err != nil {
		return xdr.ScVal{}, err
	}
	sequence, err := scval.WrapInt64(s.Sequence)
	if err != nil {
		return xdr.ScVal{}, err
	}
	tokens, err := scval.WrapScMap(s.Tokens)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolSnapshotAccount, SymbolSnapshotNative, SymbolSnapshotSequence, SymbolSnapshotTokens},
		[]xdr.ScVal{account, native, sequence, tokens},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (s *Snapshot) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 4)
	if err != nil {
		return err
	}
	accountVal, err := GetScMapValueFromSymbol(SymbolSnapshotAccount, m)
	if err != nil {
		return err
	}
	account, ok := accountVal.GetAddress()
	if !ok {
		return errors.New("expected address")
	}
	native, err := getU64(SymbolSnapshotNative, m)
	if err != nil {
		return err
	}
	sequenceVal, err := GetScMapValueFromSymbol(SymbolSnapshotSequence, m)
	if err != nil {
		return err
	}
	sequence, ok := sequenceVal.GetI64()
	if !ok {
		return errors.New("expected int64")
	}
	tokensVal, err := GetScMapValueFromSymbol(SymbolSnapshotTokens, m)
	if err != nil {
		return err
	}
	tokens, ok := tokensVal.GetMap()
	if !ok || tokens == nil {
		return errors.New("expected map")
	}
	s.Account = account
	s.Native = xdr.Uint64(native)
	s.Sequence = sequence
	s.Tokens = *tokens
	return nil
}

func (s Snapshot) MarshalBinary() ([]byte, error) {
	return marshal(s)
}

func (s *Snapshot) UnmarshalBinary(data []byte) error {
	return unmarshal(s, data)
}

// EncodeSnapshot serializes an account snapshot.
func EncodeSnapshot(s types.Snapshot) ([]byte, error) {
	w, err := MakeSnapshot(s)
	if err != nil {
		return nil, err
	}
	return w.MarshalBinary()
}

// DecodeSnapshot deserializes an account snapshot.
func DecodeSnapshot(data []byte) (types.Snapshot, error) {
	var w Snapshot
	if err := w.UnmarshalBinary(data); err != nil {
		return types.Snapshot{}, err
	}
	return w.ToSnapshot()
}
