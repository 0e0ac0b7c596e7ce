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
	"errors"
	"fmt"
	"io"

	"github.com/stellar/go/keypair"
	"polycry.pt/poly-go/sync"

	"perun.network/perun-paytube-backend/channel/types"
)

var (
	ErrAccountExists = errors.New("account already exists")
	ErrMissingKey    = errors.New("missing signing key")
)

// EphemeralWallet is a wallet that stores accounts in memory.
type EphemeralWallet struct {
	lock     sync.Mutex
	accounts map[types.AccountKey]*Account
}

// NewEphemeralWallet creates a new EphemeralWallet instance.
func NewEphemeralWallet() *EphemeralWallet {
	return &EphemeralWallet{
		accounts: make(map[types.AccountKey]*Account),
	}
}

// AddNewAccount generates a new account and adds it to the wallet.
func (e *EphemeralWallet) AddNewAccount(rng io.Reader) (*Account, error) {
	acc, err := NewRandomAccount(rng)
	if err != nil {
		return nil, err
	}
	return acc, e.AddAccount(acc)
}

// AddKeypair adds the account of kp to the wallet.
func (e *EphemeralWallet) AddKeypair(kp *keypair.Full) (*Account, error) {
	acc := NewAccount(kp)
	return acc, e.AddAccount(acc)
}

// AddSeed adds the account of a secret seed ("S...").
func (e *EphemeralWallet) AddSeed(seed string) (*Account, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, err
	}
	return e.AddKeypair(kp)
}

// AddAccount adds the given account to the wallet.
func (e *EphemeralWallet) AddAccount(acc *Account) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	k := acc.Key()
	if _, ok := e.accounts[k]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, k)
	}
	e.accounts[k] = acc
	return nil
}

// Unlock returns the account of key.
func (e *EphemeralWallet) Unlock(key types.AccountKey) (*Account, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	acc, ok := e.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return acc, nil
}

// Signers returns the keypairs of keys, without duplicates and in the order
// of first appearance. It fails if any key is not in the wallet.
func (e *EphemeralWallet) Signers(keys ...types.AccountKey) ([]*keypair.Full, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	seen := make(map[types.AccountKey]bool, len(keys))
	signers := make([]*keypair.Full, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		acc, ok := e.accounts[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, k)
		}
		signers = append(signers, acc.kp)
	}
	return signers, nil
}

// Len returns the number of accounts in the wallet.
func (e *EphemeralWallet) Len() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.accounts)
}
