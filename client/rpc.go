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
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"perun.network/go-perun/log"
)

const (
	SorobanRPCLink = "http://localhost:8000/soroban/rpc"

	DefaultMaxIters        = 10
	DefaultPollingInterval = 500 * time.Millisecond
)

// Soroban RPC transaction statuses.
const (
	sendStatusPending       = "PENDING"
	sendStatusDuplicate     = "DUPLICATE"
	sendStatusTryAgainLater = "TRY_AGAIN_LATER"
	sendStatusError         = "ERROR"

	txStatusSuccess  = "SUCCESS"
	txStatusNotFound = "NOT_FOUND"
	txStatusFailed   = "FAILED"
)

var ErrConfirmationTimeout = errors.New("transaction not confirmed in time")

type RPCSendTxResponse struct {
	Status         string `json:"status"`
	Hash           string `json:"hash"`
	ErrorResultXdr string `json:"errorResultXdr,omitempty"`
}

type RPCGetTxResponse struct {
	Status        string `json:"status"`
	EnvelopeXdr   string `json:"envelopeXdr,omitempty"`
	ResultXdr     string `json:"resultXdr,omitempty"`
	ResultMetaXdr string `json:"resultMetaXdr,omitempty"`
}

// RPCCaller is the subset of *jrpc2.Client used by RPCSender.
type RPCCaller interface {
	CallResult(ctx context.Context, method string, params, result interface{}) error
}

// RPCSender submits transactions through Soroban RPC and polls for their
// inclusion.
type RPCSender struct {
	rpc             RPCCaller
	passphrase      string
	maxIters        int
	pollingInterval time.Duration
	log             log.Embedding
}

var _ Sender = (*RPCSender)(nil)

// NewRPCClient returns a JSON-RPC client for the Soroban RPC endpoint at url.
func NewRPCClient(url string) *jrpc2.Client {
	if url == "" {
		url = SorobanRPCLink
	}
	return jrpc2.NewClient(jhttp.NewChannel(url, nil), nil)
}

// NewRPCSender returns a sender using rpc. Non-positive polling parameters
// select the defaults.
func NewRPCSender(rpc RPCCaller, passphrase string, maxIters int, pollingInterval time.Duration) *RPCSender {
	if maxIters <= 0 {
		maxIters = DefaultMaxIters
	}
	if pollingInterval <= 0 {
		pollingInterval = DefaultPollingInterval
	}
	return &RPCSender{
		rpc:             rpc,
		passphrase:      passphrase,
		maxIters:        maxIters,
		pollingInterval: pollingInterval,
		log:             log.MakeEmbedding(log.Default()),
	}
}

// Send implements Sender.
func (s *RPCSender) Send(ctx context.Context, tx *txnbuild.Transaction) (string, error) {
	envelope, err := tx.Base64()
	if err != nil {
		return "", err
	}
	var sent RPCSendTxResponse
	err = s.rpc.CallResult(ctx, "sendTransaction", struct {
		Transaction string `json:"transaction"`
	}{envelope}, &sent)
	if err != nil {
		return "", fmt.Errorf("calling sendTransaction: %w", err)
	}

	switch sent.Status {
	case sendStatusPending, sendStatusDuplicate:
	case sendStatusError:
		return "", &TxRejectedError{Hash: sent.Hash, Reason: resultReason(sent.ErrorResultXdr)}
	case sendStatusTryAgainLater:
		return "", fmt.Errorf("transaction %s not accepted: %s", sent.Hash, sent.Status)
	default:
		return "", fmt.Errorf("unexpected send status %q", sent.Status)
	}
	return s.awaitTx(ctx, sent.Hash)
}

func (s *RPCSender) awaitTx(ctx context.Context, hash string) (string, error) {
	for i := 0; i < s.maxIters; i++ {
		var res RPCGetTxResponse
		err := s.rpc.CallResult(ctx, "getTransaction", struct {
			Hash string `json:"hash"`
		}{hash}, &res)
		if err != nil {
			return "", fmt.Errorf("calling getTransaction: %w", err)
		}
		switch res.Status {
		case txStatusSuccess:
			return hash, nil
		case txStatusFailed:
			return "", &TxRejectedError{Hash: hash, Reason: resultReason(res.ResultXdr)}
		case txStatusNotFound:
			s.log.Log().WithField("tx", hash).Debugf("Transaction pending, poll %d/%d", i+1, s.maxIters)
		default:
			return "", fmt.Errorf("unexpected transaction status %q", res.Status)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollingInterval):
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfirmationTimeout, hash)
}

// resultReason extracts the result code of a base64 encoded transaction
// result.
func resultReason(resultXdr string) string {
	if resultXdr == "" {
		return "tx_failed"
	}
	var result xdr.TransactionResult
	if err := xdr.SafeUnmarshalBase64(resultXdr, &result); err != nil {
		return "undecodable result"
	}
	return result.Result.Code.String()
}
