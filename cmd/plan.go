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
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"perun.network/perun-paytube-backend/channel"
	"perun.network/perun-paytube-backend/client"
	"perun.network/perun-paytube-backend/config"
	"perun.network/perun-paytube-backend/settlement"
	"perun.network/perun-paytube-backend/util"
)

var errDryRun = errors.New("dry run does not submit")

// dryRunSubmitter refuses every batch.
type dryRunSubmitter struct{}

var _ channel.Submitter = dryRunSubmitter{}

func (dryRunSubmitter) Submit(context.Context, settlement.Batch) (settlement.Result, error) {
	return settlement.Result{}, errDryRun
}

func newPlanCmd(cfg *config.Config) *cobra.Command {
	var (
		transfers string
		genesis   string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the settlement of a transfer file against local genesis balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			f, err := util.LoadTransferFile(transfers)
			if err != nil {
				return err
			}
			intents, err := f.Intents()
			if err != nil {
				return err
			}
			snapshots, err := util.LoadGenesis(genesis)
			if err != nil {
				return err
			}

			st, err := newStack(cfg)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, st.Close()) }()

			db := client.NewLocalDB(st.kv)
			if err := db.WriteGenesis(snapshots...); err != nil {
				return err
			}
			ch, err := st.newChannel(client.NewLocalExecutor(client.NewCachingLoader(db)), dryRunSubmitter{})
			if err != nil {
				return err
			}
			rep, err := ch.Plan(cmd.Context(), intents)
			if rep != nil {
				printReport(cmd.OutOrStdout(), rep, verbose)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&transfers, flagTransfers, "", "path of the transfer file (JSON)")
	cmd.Flags().StringVar(&genesis, flagGenesis, "", "path of the genesis account file (JSON)")
	cmd.Flags().BoolVar(&verbose, flagVerbose, false, "dump the full settlement report")
	_ = cmd.MarkFlagRequired(flagTransfers)
	_ = cmd.MarkFlagRequired(flagGenesis)
	return cmd
}
