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
	"errors"
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"perun.network/go-perun/log"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/channel/types"
	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/wallet"
)

var _ channel.Submitter = (*StellarSubmitter)(nil)

// StellarSubmitter settles batches as classic Stellar transactions. The fee
// account pays the fees and provides the sequence number; every debtor of a
// batch signs for its payments.
type StellarSubmitter struct {
	hzClient   horizonclient.ClientInterface
	sender     Sender
	wallet     *wallet.EphemeralWallet
	feePayer   *keypair.Full
	passphrase string
	baseFee    int64
	log        log.Embedding
}

// NewStellarSubmitter returns a submitter. The fee account is loaded through
// hzClient before each submission.
func NewStellarSubmitter(hzClient horizonclient.ClientInterface, sender Sender, w *wallet.EphemeralWallet,
	feePayer *keypair.Full, passphrase string, baseFee int64,
) *StellarSubmitter {
	if passphrase == "" {
		passphrase = NETWORK_PASSPHRASE
	}
	return &StellarSubmitter{
		hzClient:   hzClient,
		sender:     sender,
		wallet:     w,
		feePayer:   feePayer,
		passphrase: passphrase,
		baseFee:    baseFee,
		log:        log.MakeEmbedding(log.Default()),
	}
}

// Submit implements channel.Submitter.
func (s *StellarSubmitter) Submit(ctx context.Context, batch settlement.Batch) (settlement.Result, error) {
	logger := s.log.Log().WithField("batch", batch.Index)

	signers, err := s.wallet.Signers(batch.Debtors()...)
	if errors.Is(err, wallet.ErrMissingKey) {
		logger.Warnf("Cannot sign batch: %v", err)
		return settlement.RejectedResult(batch.Index, err.Error()), nil
	}
	if err != nil {
		return settlement.Result{}, err
	}

	feeAccount, err := s.hzClient.AccountDetail(horizonclient.AccountRequest{AccountID: s.feePayer.Address()})
	if err != nil {
		return settlement.Result{}, fmt.Errorf("loading fee account: %w", err)
	}
	tx, err := BuildSettlementTx(&feeAccount, s.baseFee, batch)
	if err != nil {
		return settlement.RejectedResult(batch.Index, err.Error()), nil
	}
	tx, err = SignTx(tx, s.passphrase, append([]*keypair.Full{s.feePayer}, withoutKey(signers, s.feePayer)...)...)
	if err != nil {
		return settlement.Result{}, err
	}

	hash, err := s.sender.Send(ctx, tx)
	var rejected *TxRejectedError
	if errors.As(err, &rejected) {
		logger.Warnf("Batch rejected: %s", rejected.Reason)
		return settlement.RejectedResult(batch.Index, rejected.Reason), nil
	}
	if err != nil {
		return settlement.Result{}, err
	}
	logger.WithField("tx", hash).Infof("Settled %d operations", batch.Len())
	return settlement.ConfirmedResult(batch.Index, hash), nil
}

func withoutKey(signers []*keypair.Full, kp *keypair.Full) []*keypair.Full {
	key := types.MakeAccountKey(kp)
	out := signers[:0:0]
	for _, s := range signers {
		if types.MakeAccountKey(s) != key {
			out = append(out, s)
		}
	}
	return out
}
