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

package types

import (
	"errors"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ErrInvalidAccountKey is returned when a key is neither an account nor a contract strkey.
var ErrInvalidAccountKey = errors.New("invalid account key")

// AccountKey identifies a participant of the channel. It holds the strkey
// encoding of either a Stellar account (G...) or a contract (C...).
type AccountKey string

// MakeAccountKey returns the key of the account controlled by kp.
func MakeAccountKey(kp keypair.KP) AccountKey {
	return AccountKey(kp.Address())
}

// ParseAccountKey parses and validates a strkey encoded account or contract.
func ParseAccountKey(s string) (AccountKey, error) {
	k := AccountKey(s)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// MustParseAccountKey is like ParseAccountKey but panics on error.
func MustParseAccountKey(s string) AccountKey {
	k, err := ParseAccountKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// AccountKeyFromScAddress converts an account or contract address.
func AccountKeyFromScAddress(address xdr.ScAddress) (AccountKey, error) {
	switch address.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if address.AccountId == nil {
			return "", fmt.Errorf("%w: missing account id", ErrInvalidAccountKey)
		}
		return AccountKey(address.AccountId.Address()), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		if address.ContractId == nil {
			return "", fmt.Errorf("%w: missing contract id", ErrInvalidAccountKey)
		}
		s, err := strkey.Encode(strkey.VersionByteContract, address.ContractId[:])
		if err != nil {
			return "", err
		}
		return AccountKey(s), nil
	default:
		return "", fmt.Errorf("%w: unsupported address type %v", ErrInvalidAccountKey, address.Type)
	}
}

// Validate checks that the key is a well formed account or contract strkey.
func (k AccountKey) Validate() error {
	if k == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAccountKey)
	}
	if k.IsContract() {
		if _, err := strkey.Decode(strkey.VersionByteContract, string(k)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAccountKey, err)
		}
		return nil
	}
	if _, err := keypair.ParseAddress(string(k)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccountKey, err)
	}
	return nil
}

// IsContract reports whether the key denotes a contract.
func (k AccountKey) IsContract() bool {
	return len(k) > 0 && k[0] == 'C'
}

func (k AccountKey) String() string {
	return string(k)
}

// Short returns an abbreviated form for log output.
func (k AccountKey) Short() string {
	if len(k) <= 8 {
		return string(k)
	}
	return string(k[:4]) + ".." + string(k[len(k)-4:])
}

// ScAddress converts the key into its Soroban address representation.
func (k AccountKey) ScAddress() (xdr.ScAddress, error) {
	if k.IsContract() {
		raw, err := strkey.Decode(strkey.VersionByteContract, string(k))
		if err != nil {
			return xdr.ScAddress{}, fmt.Errorf("%w: %v", ErrInvalidAccountKey, err)
		}
		var id xdr.Hash
		copy(id[:], raw)
		return MakeContractAddress(id)
	}
	accountID, err := xdr.AddressToAccountId(string(k))
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("%w: %v", ErrInvalidAccountKey, err)
	}
	return xdr.NewScAddress(xdr.ScAddressTypeScAddressTypeAccount, accountID)
}

// MakeContractAddress generates a contract address from the given contract ID.
func MakeContractAddress(contractID xdr.Hash) (xdr.ScAddress, error) {
	return xdr.NewScAddress(xdr.ScAddressTypeScAddressTypeContract, contractID)
}
