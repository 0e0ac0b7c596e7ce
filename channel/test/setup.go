package test

import (
	"context"
	"fmt"
	"sync"

	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/settlement"
)

// MockExecutor executes intents by consulting Fail. It records every call.
type MockExecutor struct {
	mu sync.Mutex
	// Fail decides whether an intent fails. A nil Fail lets every intent succeed.
	Fail func(types.Intent) bool
	// Err, if set, is returned instead of outcomes.
	Err   error
	Calls [][]types.Intent
}

// Execute implements channel.Executor.
func (m *MockExecutor) Execute(_ context.Context, intents []types.Intent) ([]types.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, append([]types.Intent(nil), intents...))
	if m.Err != nil {
		return nil, m.Err
	}
	outcomes := make([]types.Outcome, len(intents))
	for i, in := range intents {
		if m.Fail != nil && m.Fail(in) {
			outcomes[i] = types.Failure(in.Seq, "Program log: transfer rejected")
			continue
		}
		outcomes[i] = types.Success(in.Seq, fmt.Sprintf("Program log: %v", in))
	}
	return outcomes, nil
}

// MockSubmitter confirms every batch except the ones listed in Reject.
type MockSubmitter struct {
	mu sync.Mutex
	// Reject maps batch indices to rejection reasons.
	Reject map[int]string
	// ErrAt makes Submit fail for the batch with this index, if non-negative.
	ErrAt int
	Err   error
	// Submitted holds every submitted batch in order.
	Submitted []settlement.Batch
}

// NewMockSubmitter returns a submitter that confirms everything.
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{Reject: make(map[int]string), ErrAt: -1}
}

// Submit implements channel.Submitter.
func (m *MockSubmitter) Submit(_ context.Context, batch settlement.Batch) (settlement.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if batch.Index == m.ErrAt {
		return settlement.Result{}, m.Err
	}
	m.Submitted = append(m.Submitted, batch)
	if reason, ok := m.Reject[batch.Index]; ok {
		return settlement.RejectedResult(batch.Index, reason), nil
	}
	return settlement.ConfirmedResult(batch.Index, fmt.Sprintf("tx%d", batch.Index)), nil
}
