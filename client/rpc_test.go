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
package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"

	"perun.network/perun-paytube-backend/client"
)

// scriptedRPC answers sendTransaction once and getTransaction with the
// queued statuses.
type scriptedRPC struct {
	send     client.RPCSendTxResponse
	statuses []client.RPCGetTxResponse
	err      error
	polls    int
}

func (r *scriptedRPC) CallResult(_ context.Context, method string, _, result interface{}) error {
	if r.err != nil {
		return r.err
	}
	switch method {
	case "sendTransaction":
		*result.(*client.RPCSendTxResponse) = r.send
	case "getTransaction":
		res := client.RPCGetTxResponse{Status: "NOT_FOUND"}
		if r.polls < len(r.statuses) {
			res = r.statuses[r.polls]
		}
		r.polls++
		*result.(*client.RPCGetTxResponse) = res
	default:
		return errors.New("unknown method " + method)
	}
	return nil
}

func failedResultXdr(t *testing.T) string {
	t.Helper()
	res := xdr.TransactionResult{
		FeeCharged: 100,
		Result: xdr.TransactionResultResult{
			Code: xdr.TransactionResultCodeTxBadSeq,
		},
	}
	enc, err := xdr.MarshalBase64(res)
	require.NoError(t, err)
	return enc
}

func TestRPCSender_Confirmed(t *testing.T) {
	rpc := &scriptedRPC{
		send: client.RPCSendTxResponse{Status: "PENDING", Hash: "h1"},
		statuses: []client.RPCGetTxResponse{
			{Status: "NOT_FOUND"},
			{Status: "NOT_FOUND"},
			{Status: "SUCCESS"},
		},
	}
	s := client.NewRPCSender(rpc, "", 5, time.Millisecond)
	hash, err := s.Send(context.Background(), newTestTx(t))
	require.NoError(t, err)
	require.Equal(t, "h1", hash)
	require.Equal(t, 3, rpc.polls)
}

func TestRPCSender_Rejected(t *testing.T) {
	reason := xdr.TransactionResultCodeTxBadSeq.String()

	rpc := &scriptedRPC{send: client.RPCSendTxResponse{Status: "ERROR", Hash: "h2", ErrorResultXdr: failedResultXdr(t)}}
	_, err := client.NewRPCSender(rpc, "", 5, time.Millisecond).Send(context.Background(), newTestTx(t))
	var rejected *client.TxRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, reason, rejected.Reason)
	require.Zero(t, rpc.polls)

	rpc = &scriptedRPC{
		send:     client.RPCSendTxResponse{Status: "PENDING", Hash: "h3"},
		statuses: []client.RPCGetTxResponse{{Status: "FAILED", ResultXdr: failedResultXdr(t)}},
	}
	_, err = client.NewRPCSender(rpc, "", 5, time.Millisecond).Send(context.Background(), newTestTx(t))
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "h3", rejected.Hash)
}

func TestRPCSender_Timeout(t *testing.T) {
	rpc := &scriptedRPC{send: client.RPCSendTxResponse{Status: "PENDING", Hash: "h4"}}
	_, err := client.NewRPCSender(rpc, "", 3, time.Millisecond).Send(context.Background(), newTestTx(t))
	require.ErrorIs(t, err, client.ErrConfirmationTimeout)
	require.NotErrorIs(t, err, client.ErrTxRejected)
	require.Equal(t, 3, rpc.polls)
}

func TestRPCSender_ContextCancelled(t *testing.T) {
	rpc := &scriptedRPC{send: client.RPCSendTxResponse{Status: "PENDING", Hash: "h5"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.NewRPCSender(rpc, "", 3, time.Hour).Send(ctx, newTestTx(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRPCSender_TransportError(t *testing.T) {
	rpc := &scriptedRPC{err: errors.New("connection refused")}
	_, err := client.NewRPCSender(rpc, "", 3, time.Millisecond).Send(context.Background(), newTestTx(t))
	require.Error(t, err)
	require.NotErrorIs(t, err, client.ErrTxRejected)
}
