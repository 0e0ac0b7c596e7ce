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
package wallet

import (
	"io"

	"github.com/stellar/go/keypair"

	"perun.network/perun-paytube-backend/channel/types"
)

// Account is a Stellar account whose secret key is held by the wallet.
type Account struct {
	kp *keypair.Full
}

// NewAccount wraps kp.
func NewAccount(kp *keypair.Full) *Account {
	return &Account{kp: kp}
}

// NewRandomAccount creates an account with a seed read from rng.
func NewRandomAccount(rng io.Reader) (*Account, error) {
	var seed [32]byte
	if _, err := io.ReadFull(rng, seed[:]); err != nil {
		return nil, err
	}
	kp, err := keypair.FromRawSeed(seed)
	if err != nil {
		return nil, err
	}
	return NewAccount(kp), nil
}

// Key returns the account key.
func (a *Account) Key() types.AccountKey {
	return types.MakeAccountKey(a.kp)
}

// Keypair returns the full keypair of the account.
func (a *Account) Keypair() *keypair.Full {
	return a.kp
}

// SignData signs data with the account's secret key.
func (a *Account) SignData(data []byte) ([]byte, error) {
	return a.kp.Sign(data)
}
