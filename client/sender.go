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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// ErrTxRejected is wrapped by TxRejectedError.
var ErrTxRejected = errors.New("transaction rejected")

// TxRejectedError is returned by senders when the network refused a
// transaction. Any other sender error leaves the verdict unknown.
type TxRejectedError struct {
	Hash   string
	Reason string
}

func (e *TxRejectedError) Error() string {
	if e.Hash == "" {
		return "transaction rejected: " + e.Reason
	}
	return fmt.Sprintf("transaction %s rejected: %s", e.Hash, e.Reason)
}

func (e *TxRejectedError) Unwrap() error {
	return ErrTxRejected
}

// Sender submits signed transactions and waits for their inclusion. It
// returns the hash of the applied transaction.
type Sender interface {
	Send(ctx context.Context, tx *txnbuild.Transaction) (string, error)
}

// SignTx signs tx with every signer.
func SignTx(tx *txnbuild.Transaction, passphrase string, signers ...*keypair.Full) (*txnbuild.Transaction, error) {
	var err error
	for _, signer := range signers {
		tx, err = tx.Sign(passphrase, signer)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// HorizonSender submits transactions synchronously through Horizon.
type HorizonSender struct {
	hzClient horizonclient.ClientInterface
}

var _ Sender = (*HorizonSender)(nil)

func NewHorizonSender(hzClient horizonclient.ClientInterface) *HorizonSender {
	return &HorizonSender{hzClient: hzClient}
}

// Send implements Sender.
func (s *HorizonSender) Send(ctx context.Context, tx *txnbuild.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	txSent, err := s.hzClient.SubmitTransaction(tx)
	if err == nil {
		if !txSent.Successful {
			return "", &TxRejectedError{Hash: txSent.Hash, Reason: "tx_failed"}
		}
		return txSent.Hash, nil
	}
	if hzErr := horizonclient.GetError(err); hzErr != nil {
		if codes, cerr := hzErr.ResultCodes(); cerr == nil && codes != nil {
			reason := codes.TransactionCode
			if len(codes.OperationCodes) > 0 {
				reason += ": " + strings.Join(codes.OperationCodes, ", ")
			}
			return "", &TxRejectedError{Reason: reason}
		}
	}
	return "", fmt.Errorf("submitting transaction: %w", err)
}
