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

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"perun.network/perun-paytube-backend/client"
	"perun.network/perun-paytube-backend/config"
	"perun.network/perun-paytube-backend/payment"
	"perun.network/perun-paytube-backend/util"
)

var errNoFeePayer = errors.New("transfer file has no fee payer")

func newSettleCmd(cfg *config.Config) *cobra.Command {
	var (
		transfers string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Execute the transfers of a file and settle them on Stellar",
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
			w, feePayer, err := f.Wallet()
			if err != nil {
				return err
			}
			if feePayer == nil {
				return errNoFeePayer
			}

			st, err := newStack(cfg)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, st.Close()) }()

			hz := client.NewHorizonClient(cfg.HorizonURL)
			exec := client.NewLocalExecutor(client.NewCachingLoader(client.NewHorizonSource(hz)))
			sender := st.newSender(client.NewHorizonSender(hz))
			sub := client.NewStellarSubmitter(hz, sender, w, feePayer, cfg.NetworkPassphrase, cfg.BaseFee)
			ch, err := st.newChannel(exec, sub)
			if err != nil {
				return err
			}

			session := payment.NewSession(ch)
			for _, in := range intents {
				if _, err := session.Transfer(in.Sender, in.Receiver, in.Asset, in.Amount); err != nil {
					return err
				}
			}
			rep, err := session.Close(cmd.Context())
			if rep != nil {
				printReport(cmd.OutOrStdout(), rep, verbose)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&transfers, flagTransfers, "", "path of the transfer file (JSON)")
	cmd.Flags().BoolVar(&verbose, flagVerbose, false, "dump the full settlement report")
	_ = cmd.MarkFlagRequired(flagTransfers)
	return cmd
}
