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
// Package cmd implements the paytube command line interface.
package cmd

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	plogrus "perun.network/go-perun/log/logrus"

	"perun.network/perun-paytube-backend/config"
)

const (
	flagTransfers = "transfers"
	flagGenesis   = "genesis"
	flagVerbose   = "verbose"
)

// NewRootCmd returns the paytube root command with all subcommands.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	cfg := config.DefaultConfig

	root := &cobra.Command{
		Use:   "paytube",
		Short: "Net off-chain payments and settle them on Stellar",
		Long: `
paytube executes a batch of off-chain transfers, nets the successful ones into
per account balance changes and settles the result with as few payments as
possible. Configuration is read from flags and PAYTUBE_* environment variables.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
			v.AutomaticEnv()
			if err := cfg.GetViperConfig(v); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			plogrus.Set(level, &logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}
	config.AddFlags(root)
	root.AddCommand(
		newSettleCmd(&cfg),
		newPlanCmd(&cfg),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
