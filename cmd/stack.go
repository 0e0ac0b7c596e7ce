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
package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/client"
	"perun.network/perun-paytube-backend/config"
	"perun.network/perun-paytube-backend/store"
)

const metricsNamespace = "paytube"

// stack holds the long lived components shared by all commands.
type stack struct {
	cfg     *config.Config
	kv      store.KVStore
	journal *store.Journal
	metrics *channel.Metrics
	closers []func() error
}

func newStack(cfg *config.Config) (*stack, error) {
	s := &stack{cfg: cfg, metrics: channel.NopMetrics()}
	if cfg.DBPath == "" {
		s.kv = store.NewInMemoryKVStore()
	} else {
		kv, err := store.NewDefaultKVStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.kv = kv
	}
	s.closers = append(s.closers, s.kv.Close)
	s.journal = store.NewJournal(s.kv)

	if cfg.PrometheusListenAddr != "" {
		s.metrics = channel.PrometheusMetrics(metricsNamespace)
		srv := &http.Server{
			Addr:              cfg.PrometheusListenAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 3 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Prometheus server: %v", err)
			}
		}()
		s.closers = append(s.closers, srv.Close)
	}
	return s, nil
}

func (s *stack) newChannel(exec channel.Executor, sub channel.Submitter) (*channel.Channel, error) {
	opts := []channel.Option{channel.WithMetrics(s.metrics), channel.WithJournal(s.journal)}
	if s.cfg.StrictValidation {
		opts = append(opts, channel.WithStrictValidation())
	}
	return channel.NewChannel(exec, sub, s.cfg.MaxOpsPerBatch, opts...)
}

func (s *stack) newSender(hz *client.HorizonSender) client.Sender {
	if s.cfg.Submitter != config.SubmitterRPC {
		return hz
	}
	rpc := client.NewRPCClient(s.cfg.RPCURL)
	s.closers = append(s.closers, rpc.Close)
	return client.NewRPCSender(rpc, s.cfg.NetworkPassphrase, s.cfg.MaxIters, s.cfg.PollingInterval)
}

func (s *stack) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	return err
}
