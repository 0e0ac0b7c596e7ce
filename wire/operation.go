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

	"github.com/stellar/go/xdr"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/wire/scval"
)

const (
	SymbolOperationFrom   xdr.ScSymbol = "from"
	SymbolOperationTo     xdr.ScSymbol = "to"
	SymbolOperationAsset  xdr.ScSymbol = "asset"
	SymbolOperationAmount xdr.ScSymbol = "amount"
)

// Operation is the wire representation of a settlement operation.
type Operation struct {
	From   xdr.ScAddress
	To     xdr.ScAddress
	Asset  xdr.ScString
	Amount xdr.Uint64
}

// MakeOperation converts a settlement operation.
func MakeOperation(op settlement.Operation) (Operation, error) {
	from, err := op.From.ScAddress()
	if err != nil {
		return Operation{}, err
	}
	to, err := op.To.ScAddress()
	if err != nil {
		return Operation{}, err
	}
	return Operation{
		From:   from,
		To:     to,
		Asset:  xdr.ScString(op.Asset.String()),
		Amount: xdr.Uint64(op.Amount),
	}, nil
}

// ToSettlement converts o back into a settlement operation.
func (o Operation) ToSettlement() (settlement.Operation, error) {
	from, err := types.AccountKeyFromScAddress(o.From)
	if err != nil {
		return settlement.Operation{}, err
	}
	to, err := types.AccountKeyFromScAddress(o.To)
	if err != nil {
		return settlement.Operation{}, err
	}
	asset, err := types.ParseAsset(string(o.Asset))
	if err != nil {
		return settlement.Operation{}, err
	}
	return settlement.Operation{From: from, To: to, Asset: asset, Amount: uint64(o.Amount)}, nil
}

func (o Operation) ToScVal() (xdr.ScVal, error) {
	from, err := scval.WrapScAddress(o.From)
	if err != nil {
		return xdr.ScVal{}, err
	}
	to, err := scval.WrapScAddress(o.To)
	if err != nil {
		return xdr.ScVal{}, err
	}
	asset, err := scval.WrapScString(o.Asset)
	if err != nil {
		return xdr.ScVal{}, err
	}
	amount, err := scval.WrapUint64(o.Amount)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolOperationFrom, SymbolOperationTo, SymbolOperationAsset, SymbolOperationAmount},
		[]xdr.ScVal{from, to, asset, amount},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (o *Operation) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 4)
	if err != nil {
		return err
	}
	fromVal, err := GetScMapValueFromSymbol(SymbolOperationFrom, m)
	if err != nil {
		return err
	}
	from, ok := fromVal.GetAddress()
	if !ok {
		return errors.New("expected address")
	}
	toVal, err := GetScMapValueFromSymbol(SymbolOperationTo, m)
	if err != nil {
		return err
	}
	to, ok := toVal.GetAddress()
	if !ok {
		return errors.New("expected address")
	}
	asset, err := getString(SymbolOperationAsset, m)
	if err != nil {
		return err
	}
	amount, err := getU64(SymbolOperationAmount, m)
	if err != nil {
		return err
	}
	o.From = from
	o.To = to
	o.Asset = xdr.ScString(asset)
	o.Amount = xdr.Uint64(amount)
	return nil
}

func (o Operation) MarshalBinary() ([]byte, error) {
	return marshal(o)
}

func (o *Operation) UnmarshalBinary(data []byte) error {
	return unmarshal(o, data)
}
