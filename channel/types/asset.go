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
	"strings"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// NativeAssetName is the textual representation of the native asset.
const NativeAssetName = "native"

// ErrInvalidAsset is returned when an asset cannot be parsed or validated.
var ErrInvalidAsset = errors.New("invalid asset")

// AssetKind distinguishes the native currency from issued tokens.
type AssetKind uint8

const (
	// Native is the base currency of the settlement chain (lumens).
	Native AssetKind = iota
	// Token is an issued asset identified by code and issuer.
	Token
)

func (k AssetKind) String() string {
	switch k {
	case Native:
		return "Native"
	case Token:
		return "Token"
	default:
		return fmt.Sprintf("AssetKind(%d)", uint8(k))
	}
}

// Asset is the unit of value of a transfer. Assets are comparable and can be
// used as map keys.
type Asset struct {
	Kind AssetKind
	// Token holds CODE:ISSUER for token assets and is empty for the native asset.
	Token string
}

// NativeAsset returns the native asset.
func NativeAsset() Asset {
	return Asset{Kind: Native}
}

// NewTokenAsset returns the token issued by issuer under code.
func NewTokenAsset(code string, issuer AccountKey) (Asset, error) {
	a := Asset{Kind: Token, Token: code + ":" + issuer.String()}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// MustNewTokenAsset is like NewTokenAsset but panics on error.
func MustNewTokenAsset(code string, issuer AccountKey) Asset {
	a, err := NewTokenAsset(code, issuer)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAsset parses "native" or "CODE:ISSUER".
func ParseAsset(s string) (Asset, error) {
	if s == NativeAssetName {
		return NativeAsset(), nil
	}
	code, issuer, ok := strings.Cut(s, ":")
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}
	return NewTokenAsset(code, AccountKey(issuer))
}

// IsNative reports whether a is the native asset.
func (a Asset) IsNative() bool {
	return a.Kind == Native
}

// Code returns the asset code of a token asset.
func (a Asset) Code() string {
	code, _, _ := strings.Cut(a.Token, ":")
	return code
}

// Issuer returns the issuing account of a token asset.
func (a Asset) Issuer() AccountKey {
	_, issuer, _ := strings.Cut(a.Token, ":")
	return AccountKey(issuer)
}

func (a Asset) String() string {
	if a.IsNative() {
		return NativeAssetName
	}
	return a.Token
}

// Validate checks the asset for well-formedness.
func (a Asset) Validate() error {
	switch a.Kind {
	case Native:
		if a.Token != "" {
			return fmt.Errorf("%w: native asset with token id", ErrInvalidAsset)
		}
		return nil
	case Token:
		if _, err := a.XDR(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAsset, err)
		}
		if err := a.Issuer().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAsset, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidAsset, a.Kind)
	}
}

// TxnbuildAsset converts a into the asset used in classic payment operations.
func (a Asset) TxnbuildAsset() txnbuild.Asset {
	if a.IsNative() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code(), Issuer: a.Issuer().String()}
}

// XDR returns the xdr representation of a.
func (a Asset) XDR() (xdr.Asset, error) {
	return a.TxnbuildAsset().ToXDR()
}

// ContractID returns the id of the Stellar Asset Contract wrapping a on the
// network identified by passphrase.
func (a Asset) ContractID(passphrase string) (xdr.Hash, error) {
	x, err := a.XDR()
	if err != nil {
		return xdr.Hash{}, err
	}
	id, err := x.ContractID(passphrase)
	if err != nil {
		return xdr.Hash{}, err
	}
	return xdr.Hash(id), nil
}

// MakeScAddress generates the contract address of the asset contract.
func (a Asset) MakeScAddress(passphrase string) (xdr.ScAddress, error) {
	id, err := a.ContractID(passphrase)
	if err != nil {
		return xdr.ScAddress{}, errors.New("could not generate contract address")
	}
	return MakeContractAddress(id)
}

// MarshalBinary encodes the asset as its kind followed by the token id.
func (a Asset) MarshalBinary() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	data := make([]byte, 1+len(a.Token))
	data[0] = byte(a.Kind)
	copy(data[1:], a.Token)
	return data, nil
}

// UnmarshalBinary decodes an asset encoded with MarshalBinary.
func (a *Asset) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty encoding", ErrInvalidAsset)
	}
	dec := Asset{Kind: AssetKind(data[0]), Token: string(data[1:])}
	if err := dec.Validate(); err != nil {
		return err
	}
	*a = dec
	return nil
}
