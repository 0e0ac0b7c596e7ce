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

package channel

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is the subsystem of all metrics exposed by this package.
const MetricsSubsystem = "channel"

// Metrics contains the metrics exposed by a Channel.
type Metrics struct {
	// Intents handed to ProcessTransfers.
	Intents metrics.Counter
	// Intents rejected by validation.
	InvalidIntents metrics.Counter
	// Intents that failed during execution.
	FailedIntents metrics.Counter
	// Settlement operations built.
	Operations metrics.Counter
	// Batches confirmed by the settlement chain.
	ConfirmedBatches metrics.Counter
	// Batches rejected by the settlement chain.
	RejectedBatches metrics.Counter
	// Time spent in a settlement pass, in seconds.
	PassDuration metrics.Histogram
}

// PrometheusMetrics returns Metrics built using the Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	counter := func(name, help string) metrics.Counter {
		return prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      name,
			Help:      help,
		}, labels).With(labelsAndValues...)
	}
	return &Metrics{
		Intents:          counter("intents_total", "Number of transfer intents submitted."),
		InvalidIntents:   counter("invalid_intents_total", "Number of transfer intents rejected by validation."),
		FailedIntents:    counter("failed_intents_total", "Number of transfer intents that failed during execution."),
		Operations:       counter("settlement_operations_total", "Number of settlement operations built."),
		ConfirmedBatches: counter("confirmed_batches_total", "Number of settlement batches confirmed."),
		RejectedBatches:  counter("rejected_batches_total", "Number of settlement batches rejected."),
		PassDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "pass_duration_seconds",
			Help:      "Time spent in a settlement pass.",
			Buckets:   stdprometheus.ExponentialBuckets(0.01, 4, 8),
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Intents:          discard.NewCounter(),
		InvalidIntents:   discard.NewCounter(),
		FailedIntents:    discard.NewCounter(),
		Operations:       discard.NewCounter(),
		ConfirmedBatches: discard.NewCounter(),
		RejectedBatches:  discard.NewCounter(),
		PassDuration:     discard.NewHistogram(),
	}
}
