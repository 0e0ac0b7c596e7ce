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
// Package payment provides the user facing API of the settlement engine: a
// session collects the transfers of a period and settles them on close.
package payment

import (
	"context"
	"errors"

	"perun.network/go-perun/log"
	"polycry.pt/poly-go/sync"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/channel/types"
)

// ErrSessionClosed is returned when using a session after Close.
var ErrSessionClosed = errors.New("session closed")

// Session records transfers and runs a single settlement pass when closed.
type Session struct {
	log.Embedding

	ch      *channel.Channel
	mu      sync.Mutex
	intents []types.Intent
	closed  bool
}

// NewSession opens a session settling through ch.
func NewSession(ch *channel.Channel) *Session {
	return &Session{
		Embedding: log.MakeEmbedding(log.Default()),
		ch:        ch,
	}
}

// Transfer records a transfer and returns its sequence index.
func (s *Session) Transfer(from, to types.AccountKey, asset types.Asset, amount uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	seq := len(s.intents)
	s.intents = append(s.intents, types.NewIntent(seq, from, to, asset, amount))
	return seq, nil
}

// Native records a transfer of lumens, amount in stroops.
func (s *Session) Native(from, to types.AccountKey, amount uint64) (int, error) {
	return s.Transfer(from, to, types.NativeAsset(), amount)
}

// Token records a transfer of the credit asset code issued by issuer.
func (s *Session) Token(from, to types.AccountKey, code string, issuer types.AccountKey, amount uint64) (int, error) {
	asset, err := types.NewTokenAsset(code, issuer)
	if err != nil {
		return 0, err
	}
	return s.Transfer(from, to, asset, amount)
}

// Len returns the number of recorded transfers.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intents)
}

// Intents returns a copy of the recorded transfers.
func (s *Session) Intents() []types.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Intent(nil), s.intents...)
}

// Close settles all recorded transfers. A session can only be closed once.
func (s *Session) Close(ctx context.Context) (*channel.Report, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.closed = true
	intents := s.intents
	s.mu.Unlock()

	rep, err := s.ch.ProcessTransfers(ctx, intents)
	if err != nil {
		return rep, err
	}
	s.Log().Infof("Channel closed, %d of %d transfers settled", rep.Succeeded, len(intents))
	return rep, nil
}
