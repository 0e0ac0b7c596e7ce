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
// Package util reads the input files of the paytube command.
package util

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stellar/go/keypair"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/wallet"
)

// Transfer is a transfer as written in a transfer file. An empty asset means
// the native asset.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Asset  string `json:"asset,omitempty"`
	Amount uint64 `json:"amount"`
}

// TransferFile lists the transfers of a settlement period together with the
// secret seeds needed to settle them.
type TransferFile struct {
	FeePayer  string     `json:"fee_payer,omitempty"`
	Signers   []string   `json:"signers,omitempty"`
	Transfers []Transfer `json:"transfers"`
}

// GenesisAccount is an account entry of a genesis file.
type GenesisAccount struct {
	Account  string            `json:"account"`
	Native   uint64            `json:"native"`
	Tokens   map[string]uint64 `json:"tokens,omitempty"`
	Sequence int64             `json:"sequence,omitempty"`
}

// LoadTransferFile reads a transfer file.
func LoadTransferFile(path string) (*TransferFile, error) {
	var f TransferFile
	if err := readJSON(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Intents converts the transfers into intents numbered in file order. Account
// keys are checked for well-formedness; amounts and parties are validated
// later by the channel.
func (f *TransferFile) Intents() ([]types.Intent, error) {
	intents := make([]types.Intent, len(f.Transfers))
	for i, tr := range f.Transfers {
		from, err := types.ParseAccountKey(tr.From)
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		to, err := types.ParseAccountKey(tr.To)
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		asset := types.NativeAsset()
		if tr.Asset != "" {
			if asset, err = types.ParseAsset(tr.Asset); err != nil {
				return nil, fmt.Errorf("transfer %d: %w", i, err)
			}
		}
		intents[i] = types.NewIntent(i, from, to, asset, tr.Amount)
	}
	return intents, nil
}

// Wallet returns a wallet holding the signer seeds of the file and the fee
// payer keypair. The fee payer is not added to the wallet.
func (f *TransferFile) Wallet() (*wallet.EphemeralWallet, *keypair.Full, error) {
	w := wallet.NewEphemeralWallet()
	for i, seed := range f.Signers {
		if _, err := w.AddSeed(seed); err != nil {
			return nil, nil, fmt.Errorf("signer %d: %w", i, err)
		}
	}
	if f.FeePayer == "" {
		return w, nil, nil
	}
	feePayer, err := keypair.ParseFull(f.FeePayer)
	if err != nil {
		return nil, nil, fmt.Errorf("fee payer: %w", err)
	}
	return w, feePayer, nil
}

// LoadGenesis reads a genesis file.
func LoadGenesis(path string) ([]types.Snapshot, error) {
	var accounts []GenesisAccount
	if err := readJSON(path, &accounts); err != nil {
		return nil, err
	}
	snapshots := make([]types.Snapshot, len(accounts))
	for i, acc := range accounts {
		key, err := types.ParseAccountKey(acc.Account)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		for token := range acc.Tokens {
			if _, err := types.ParseAsset(token); err != nil {
				return nil, fmt.Errorf("account %d: %w", i, err)
			}
		}
		snapshots[i] = types.Snapshot{Key: key, Native: acc.Native, Tokens: acc.Tokens, Sequence: acc.Sequence}
	}
	return snapshots, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
