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

	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/wire/scval"
)

const (
	SymbolBatchIndex      xdr.ScSymbol = "index"
	SymbolBatchOperations xdr.ScSymbol = "ops"

	SymbolResultBatch  xdr.ScSymbol = "batch"
	SymbolResultStatus xdr.ScSymbol = "status"
	SymbolResultTxHash xdr.ScSymbol = "tx_hash"
	SymbolResultReason xdr.ScSymbol = "reason"
)

// Batch is the wire representation of a settlement batch.
type Batch struct {
	Index      xdr.Uint64
	Operations []Operation
}

// MakeBatch converts a settlement batch.
func MakeBatch(b settlement.Batch) (Batch, error) {
	ops := make([]Operation, len(b.Operations))
	for i, op := range b.Operations {
		var err error
		if ops[i], err = MakeOperation(op); err != nil {
			return Batch{}, err
		}
	}
	return Batch{Index: xdr.Uint64(b.Index), Operations: ops}, nil
}

// ToSettlement converts b back into a settlement batch.
func (b Batch) ToSettlement() (settlement.Batch, error) {
	ops := make([]settlement.Operation, len(b.Operations))
	for i, op := range b.Operations {
		var err error
		if ops[i], err = op.ToSettlement(); err != nil {
			return settlement.Batch{}, err
		}
	}
	return settlement.Batch{Index: int(b.Index), Operations: ops}, nil
}

func (b Batch) ToScVal() (xdr.ScVal, error) {
	index, err := scval.WrapUint64(b.Index)
	if err != nil {
		return xdr.ScVal{}, err
	}
	vec := make(xdr.ScVec, len(b.Operations))
	for i, op := range b.Operations {
		if vec[i], err = op.ToScVal(); err != nil {
			return xdr.ScVal{}, err
		}
	}
	ops, err := scval.WrapVec(vec)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolBatchIndex, SymbolBatchOperations},
		[]xdr.ScVal{index, ops},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (b *Batch) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 2)
	if err != nil {
		return err
	}
	index, err := getU64(SymbolBatchIndex, m)
	if err != nil {
		return err
	}
	opsVal, err := GetScMapValueFromSymbol(SymbolBatchOperations, m)
	if err != nil {
		return err
	}
	vec, ok := opsVal.GetVec()
	if !ok || vec == nil {
		return errors.New("expected vec")
	}
	ops := make([]Operation, len(*vec))
	for i, opVal := range *vec {
		if err := ops[i].FromScVal(opVal); err != nil {
			return err
		}
	}
	b.Index = xdr.Uint64(index)
	b.Operations = ops
	return nil
}

func (b Batch) MarshalBinary() ([]byte, error) {
	return marshal(b)
}

func (b *Batch) UnmarshalBinary(data []byte) error {
	return unmarshal(b, data)
}

// Result is the wire representation of a batch submission result.
type Result struct {
	Batch  xdr.Uint64
	Status xdr.Uint32
	TxHash xdr.ScString
	Reason xdr.ScString
}

// MakeResult converts a submission result.
func MakeResult(r settlement.Result) Result {
	return Result{
		Batch:  xdr.Uint64(r.Batch),
		Status: xdr.Uint32(r.Status),
		TxHash: xdr.ScString(r.TxHash),
		Reason: xdr.ScString(r.Reason),
	}
}

// ToSettlement converts r back into a submission result.
func (r Result) ToSettlement() settlement.Result {
	return settlement.Result{
		Batch:  int(r.Batch),
		Status: settlement.Status(r.Status),
		TxHash: string(r.TxHash),
		Reason: string(r.Reason),
	}
}

func (r Result) ToScVal() (xdr.ScVal, error) {
	batch, err := scval.WrapUint64(r.Batch)
	if err != nil {
		return xdr.ScVal{}, err
	}
	status, err := scval.WrapUint32(r.Status)
	if err != nil {
		return xdr.ScVal{}, err
	}
	txHash, err := scval.WrapScString(r.TxHash)
	if err != nil {
		return xdr.ScVal{}, err
	}
	reason, err := scval.WrapScString(r.Reason)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolResultBatch, SymbolResultStatus, SymbolResultTxHash, SymbolResultReason},
		[]xdr.ScVal{batch, status, txHash, reason},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (r *Result) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 4)
	if err != nil {
		return err
	}
	batch, err := getU64(SymbolResultBatch, m)
	if err != nil {
		return err
	}
	statusVal, err := GetScMapValueFromSymbol(SymbolResultStatus, m)
	if err != nil {
		return err
	}
	status, ok := statusVal.GetU32()
	if !ok {
		return errors.New("expected uint32")
	}
	txHash, err := getString(SymbolResultTxHash, m)
	if err != nil {
		return err
	}
	reason, err := getString(SymbolResultReason, m)
	if err != nil {
		return err
	}
	r.Batch = xdr.Uint64(batch)
	r.Status = status
	r.TxHash = xdr.ScString(txHash)
	r.Reason = xdr.ScString(reason)
	return nil
}

func (r Result) MarshalBinary() ([]byte, error) {
	return marshal(r)
}

func (r *Result) UnmarshalBinary(data []byte) error {
	return unmarshal(r, data)
}

// EncodeBatch serializes a settlement batch.
func EncodeBatch(b settlement.Batch) ([]byte, error) {
	w, err := MakeBatch(b)
	if err != nil {
		return nil, err
	}
	return w.MarshalBinary()
}

// DecodeBatch deserializes a settlement batch.
func DecodeBatch(data []byte) (settlement.Batch, error) {
	var w Batch
	if err := w.UnmarshalBinary(data); err != nil {
		return settlement.Batch{}, err
	}
	return w.ToSettlement()
}

// EncodeResult serializes a submission result.
func EncodeResult(r settlement.Result) ([]byte, error) {
	return MakeResult(r).MarshalBinary()
}

// DecodeResult deserializes a submission result.
func DecodeResult(data []byte) (settlement.Result, error) {
	var w Result
	if err := w.UnmarshalBinary(data); err != nil {
		return settlement.Result{}, err
	}
	return w.ToSettlement(), nil
}
