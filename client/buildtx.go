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

package client

import (
	"errors"
	"fmt"
	"math"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/txnbuild"

	"perun.network/perun-paytube-backend/settlement"
)

// MaxOpsPerTx is the operation limit of a Stellar transaction.
const MaxOpsPerTx = 100

var (
	ErrEmptyBatch      = errors.New("settlement batch has no operations")
	ErrBatchTooLarge   = fmt.Errorf("settlement batch exceeds %d operations", MaxOpsPerTx)
	ErrUnpayableAmount = errors.New("amount does not fit into int64 stroops")
)

// BuildPaymentOp turns a settlement operation into a classic payment paid by
// the debtor.
func BuildPaymentOp(op settlement.Operation) (*txnbuild.Payment, error) {
	if op.Amount > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d", ErrUnpayableAmount, op.Amount)
	}
	if op.From.IsContract() || op.To.IsContract() {
		return nil, fmt.Errorf("contract account in payment %v", op)
	}
	return &txnbuild.Payment{
		Destination:   op.To.String(),
		Amount:        amount.StringFromInt64(int64(op.Amount)),
		Asset:         op.Asset.TxnbuildAsset(),
		SourceAccount: op.From.String(),
	}, nil
}

// BuildSettlementTx builds the unsigned transaction settling batch. The fee
// and sequence number are taken from feeAccount, whose sequence number is
// incremented.
func BuildSettlementTx(feeAccount txnbuild.Account, baseFee int64, batch settlement.Batch) (*txnbuild.Transaction, error) {
	if batch.Len() == 0 {
		return nil, ErrEmptyBatch
	}
	if batch.Len() > MaxOpsPerTx {
		return nil, ErrBatchTooLarge
	}
	ops := make([]txnbuild.Operation, 0, batch.Len())
	for _, op := range batch.Operations {
		payment, err := BuildPaymentOp(op)
		if err != nil {
			return nil, err
		}
		ops = append(ops, payment)
	}
	if baseFee < txnbuild.MinBaseFee {
		baseFee = txnbuild.MinBaseFee
	}
	return txnbuild.NewTransaction(GetBaseTransactionParamsWithFee(feeAccount, baseFee, ops...))
}

func GetBaseTransactionParamsWithFee(source txnbuild.Account, fee int64, ops ...txnbuild.Operation) txnbuild.TransactionParams {
	return txnbuild.TransactionParams{
		SourceAccount:        source,
		Operations:           ops,
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewInfiniteTimeout()},
		IncrementSequenceNum: true,
	}
}
