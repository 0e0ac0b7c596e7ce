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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/ledger"
	"perun.network/perun-paytube-backend/settlement"
)

// Channel runs settlement passes: it validates transfer intents, executes
// them off-chain, nets the successful ones and submits the resulting
// settlement batches. A Channel holds no per-pass state, so passes may run
// concurrently.
type Channel struct {
	executor    Executor
	submitter   Submitter
	accumulator *ledger.Accumulator
	builder     *settlement.Builder
	journal     Journal
	metrics     *Metrics
	strict      bool
	log         log.Embedding
}

// Option configures a Channel.
type Option func(*Channel)

// WithMetrics sets the metrics the channel reports to.
func WithMetrics(m *Metrics) Option {
	return func(c *Channel) { c.metrics = m }
}

// WithJournal records every built batch and every submission result.
func WithJournal(j Journal) Option {
	return func(c *Channel) { c.journal = j }
}

// WithStrictValidation aborts a pass if any intent is invalid. By default
// invalid intents are skipped and reported.
func WithStrictValidation() Option {
	return func(c *Channel) { c.strict = true }
}

// NewChannel returns a Channel that settles in batches of at most
// maxOpsPerBatch operations.
func NewChannel(executor Executor, submitter Submitter, maxOpsPerBatch int, opts ...Option) (*Channel, error) {
	builder, err := settlement.NewBuilder(maxOpsPerBatch)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		executor:    executor,
		submitter:   submitter,
		accumulator: ledger.NewAccumulator(),
		builder:     builder,
		metrics:     NopMetrics(),
		log:         log.MakeEmbedding(log.Default()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log.Log().Infof("Creating channel with at most %d operations per batch", maxOpsPerBatch)
	return c, nil
}

// ProcessTransfers runs a full settlement pass over intents. The returned
// report is non-nil whenever the pass got past session setup, also if an
// error is returned, so that callers can inspect what was done.
func (c *Channel) ProcessTransfers(ctx context.Context, intents []types.Intent) (*Report, error) {
	start := time.Now()
	defer func() { c.metrics.PassDuration.Observe(time.Since(start).Seconds()) }()

	rep, err := c.Plan(ctx, intents)
	if err != nil {
		return rep, err
	}
	return rep, c.Settle(ctx, rep)
}

// Plan runs a settlement pass up to, but excluding, submission.
func (c *Channel) Plan(ctx context.Context, intents []types.Intent) (*Report, error) {
	rep := &Report{Session: uuid.NewString()}
	logger := c.log.Log().WithField("session", rep.Session)
	logger.Infof("Processing %d transactions", len(intents))
	c.metrics.Intents.Add(float64(len(intents)))

	valid, invalid := types.SplitValid(intents)
	rep.Invalid = invalid
	if len(invalid) > 0 {
		c.metrics.InvalidIntents.Add(float64(len(invalid)))
		logger.Warnf("%d invalid intents", len(invalid))
		if c.strict {
			return rep, types.ValidateIntents(intents)
		}
	}

	var outcomes []types.Outcome
	if len(valid) > 0 {
		var err error
		outcomes, err = c.executor.Execute(ctx, valid)
		if err != nil {
			if !errors.Is(err, ErrExecutionUnavailable) {
				err = fmt.Errorf("%w: %v", ErrExecutionUnavailable, err)
			}
			logger.Errorf("Execution failed: %v", err)
			return rep, err
		}
	}

	res, err := c.accumulator.Accumulate(valid, outcomes)
	if err != nil {
		logger.Errorf("Accumulating outcomes: %v", err)
		return rep, err
	}
	rep.Ledger = res.Ledger
	rep.Failed = res.Failed
	rep.Succeeded = res.Succeeded
	c.metrics.FailedIntents.Add(float64(len(res.Failed)))
	for _, f := range res.Failed {
		logger.WithField("seq", f.Intent.Seq).Debugf("Intent failed: %v", f.Logs)
	}

	batches, err := c.builder.Build(res.Ledger)
	if err != nil {
		logger.Errorf("Building settlement: %v", err)
		return rep, err
	}
	rep.Batches = batches
	c.metrics.Operations.Add(float64(rep.NumOperations()))

	if c.journal != nil && len(batches) > 0 {
		if err := c.journal.RecordBatches(rep.Session, batches); err != nil {
			return rep, fmt.Errorf("recording batches: %w", err)
		}
	}
	return rep, nil
}

// Settle submits the batches of rep in order and stores the results in rep.
// Rejected batches do not stop the submission of later batches. A
// submitter error does, and is returned.
func (c *Channel) Settle(ctx context.Context, rep *Report) error {
	logger := c.log.Log().WithField("session", rep.Session)
	logger.Infof("Settling %d transactions to base chain", rep.NumOperations())

	for _, b := range rep.Batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := c.submitter.Submit(ctx, b)
		if err != nil {
			logger.Errorf("Submitting batch %d: %v", b.Index, err)
			return fmt.Errorf("submitting batch %d: %w", b.Index, err)
		}
		rep.Results = append(rep.Results, res)
		if res.Confirmed() {
			c.metrics.ConfirmedBatches.Add(1)
			logger.Debugf("Batch %d confirmed in %s", b.Index, res.TxHash)
		} else {
			c.metrics.RejectedBatches.Add(1)
			logger.Warnf("Batch %d rejected: %s", b.Index, res.Reason)
		}
		if c.journal != nil {
			if err := c.journal.RecordResult(rep.Session, res); err != nil {
				return fmt.Errorf("recording result of batch %d: %w", b.Index, err)
			}
		}
	}
	return nil
}
