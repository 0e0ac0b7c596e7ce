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

package wire

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-paytube-backend/wire/scval"
)

// MakeSymbolScMap creates a xdr.ScMap from a slice of symbols and a slice of values.
// The entries are sorted lexicographically by symbol. We expect that keys does not contain duplicates.
func MakeSymbolScMap(keys []xdr.ScSymbol, values []xdr.ScVal) (xdr.ScMap, error) {
	if len(keys) != len(values) {
		return xdr.ScMap{}, errors.New("keys and values must have the same length")
	}
	m := make(xdr.ScMap, len(keys))
	for i, k := range keys {
		m[i] = xdr.ScMapEntry{
			Key: scval.MustWrapScSymbol(k),
			Val: values[i],
		}
	}
	sort.Slice(m, func(i, j int) bool {
		return strings.Compare(string(m[i].Key.MustSym()), string(m[j].Key.MustSym())) < 0
	})
	return m, nil
}

// GetMapValue returns the value stored under key.
func GetMapValue(key xdr.ScVal, m xdr.ScMap) (xdr.ScVal, error) {
	for _, v := range m {
		if v.Key.Equals(key) {
			return v.Val, nil
		}
	}
	return xdr.ScVal{}, errors.New("key not found")
}

// GetScMapValueFromSymbol returns the value stored under the symbol key.
func GetScMapValueFromSymbol(key xdr.ScSymbol, m xdr.ScMap) (xdr.ScVal, error) {
	keyVal, err := scval.WrapScSymbol(key)
	if err != nil {
		return xdr.ScVal{}, err
	}
	v, err := GetMapValue(keyVal, m)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// symbolMap unpacks v as a map with exactly n entries.
func symbolMap(v xdr.ScVal, n int) (xdr.ScMap, error) {
	m, ok := v.GetMap()
	if !ok || m == nil {
		return nil, errors.New("expected map")
	}
	if len(*m) != n {
		return nil, fmt.Errorf("expected map of length %d", n)
	}
	return *m, nil
}

func getU64(key xdr.ScSymbol, m xdr.ScMap) (uint64, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return 0, err
	}
	u, ok := v.GetU64()
	if !ok {
		return 0, fmt.Errorf("%s: expected uint64", key)
	}
	return uint64(u), nil
}

func getString(key xdr.ScSymbol, m xdr.ScMap) (string, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return "", err
	}
	s, ok := v.GetStr()
	if !ok {
		return "", fmt.Errorf("%s: expected string", key)
	}
	return string(s), nil
}

type scValEncoder interface {
	ToScVal() (xdr.ScVal, error)
}

type scValDecoder interface {
	FromScVal(xdr.ScVal) error
}

func marshal(c scValEncoder) ([]byte, error) {
	v, err := c.ToScVal()
	if err != nil {
		return nil, err
	}
	buf := bytes.Buffer{}
	e := xdr3.NewEncoder(&buf)
	if err := v.EncodeTo(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshal(c scValDecoder, data []byte) error {
	d := xdr3.NewDecoder(bytes.NewReader(data))
	var v xdr.ScVal
	if _, err := d.Decode(&v); err != nil {
		return err
	}
	return c.FromScVal(v)
}
