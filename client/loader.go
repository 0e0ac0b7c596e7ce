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
	"sync"

	"golang.org/x/sync/singleflight"
	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/channel/types"
)

var _ channel.AccountSource = (*CachingLoader)(nil)

// CachingLoader caches the snapshots of an underlying account source. Each
// account is fetched from the source at most once, also under concurrent
// access. Unknown accounts are not cached.
type CachingLoader struct {
	source channel.AccountSource
	mu     sync.RWMutex
	cache  map[types.AccountKey]types.Snapshot
	group  singleflight.Group
	log    log.Embedding
}

// NewCachingLoader wraps source.
func NewCachingLoader(source channel.AccountSource) *CachingLoader {
	return &CachingLoader{
		source: source,
		cache:  make(map[types.AccountKey]types.Snapshot),
		log:    log.MakeEmbedding(log.Default()),
	}
}

// Preload seeds the cache with snapshots, replacing cached entries.
func (l *CachingLoader) Preload(snapshots ...types.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range snapshots {
		l.cache[s.Key] = s.Clone()
	}
}

// Fetch returns the cached snapshot of key, loading it on first use.
func (l *CachingLoader) Fetch(ctx context.Context, key types.AccountKey) (types.Snapshot, error) {
	if s, ok := l.cached(key); ok {
		return s, nil
	}
	v, err, _ := l.group.Do(string(key), func() (interface{}, error) {
		if s, ok := l.cached(key); ok {
			return s, nil
		}
		s, err := l.source.Fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = s.Clone()
		l.mu.Unlock()
		l.log.Log().WithField("account", key.Short()).Debug("Loaded account")
		return s, nil
	})
	if err != nil {
		return types.Snapshot{}, err
	}
	return v.(types.Snapshot).Clone(), nil
}

func (l *CachingLoader) cached(key types.AccountKey) (types.Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.cache[key]
	if !ok {
		return types.Snapshot{}, false
	}
	return s.Clone(), true
}

// Len returns the number of cached accounts.
func (l *CachingLoader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}
