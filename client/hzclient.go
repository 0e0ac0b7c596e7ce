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
	"fmt"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/channel/types"
)

const (
	HorizonURL         = "http://localhost:8000"
	NETWORK_PASSPHRASE = "Standalone Network ; February 2017"
)

var _ channel.AccountSource = (*HorizonSource)(nil)

// NewHorizonClient returns a client for the Horizon instance at url. An
// empty url selects the local standalone network.
func NewHorizonClient(url string) *horizonclient.Client {
	if url == "" {
		url = HorizonURL
	}
	return &horizonclient.Client{HorizonURL: url}
}

// HorizonSource loads account snapshots from Horizon.
type HorizonSource struct {
	hzClient horizonclient.ClientInterface
}

// NewHorizonSource returns an account source backed by hzClient.
func NewHorizonSource(hzClient horizonclient.ClientInterface) *HorizonSource {
	return &HorizonSource{hzClient: hzClient}
}

// Fetch implements channel.AccountSource.
func (s *HorizonSource) Fetch(ctx context.Context, key types.AccountKey) (types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.Snapshot{}, err
	}
	if key.IsContract() {
		return types.Snapshot{}, fmt.Errorf("%w: %s is a contract", channel.ErrAccountNotFound, key)
	}
	acc, err := s.hzClient.AccountDetail(horizonclient.AccountRequest{AccountID: key.String()})
	if horizonclient.IsNotFoundError(err) {
		return types.Snapshot{}, fmt.Errorf("%w: %s", channel.ErrAccountNotFound, key)
	}
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("loading account %s: %w", key, err)
	}
	return SnapshotFromAccount(acc)
}

// SnapshotFromAccount converts a Horizon account into a snapshot. Balances
// are converted to stroops. Liquidity pool shares are ignored.
func SnapshotFromAccount(acc horizon.Account) (types.Snapshot, error) {
	seq, err := acc.GetSequenceNumber()
	if err != nil {
		return types.Snapshot{}, err
	}
	snap := types.Snapshot{
		Key:      types.AccountKey(acc.AccountID),
		Sequence: seq,
		Tokens:   make(map[string]uint64),
	}
	for _, b := range acc.Balances {
		stroops, err := amount.ParseInt64(b.Balance)
		if err != nil {
			return types.Snapshot{}, fmt.Errorf("parsing balance %q: %w", b.Balance, err)
		}
		switch b.Asset.Type {
		case "native":
			snap.Native = uint64(stroops)
		case "credit_alphanum4", "credit_alphanum12":
			snap.Tokens[b.Asset.Code+":"+b.Asset.Issuer] = uint64(stroops)
		}
	}
	return snap, nil
}
