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
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// FlagMaxOpsPerBatch is a flag for the settlement batch size
	FlagMaxOpsPerBatch = "paytube.max_ops_per_batch"
	// FlagHorizonURL is a flag for the Horizon endpoint
	FlagHorizonURL = "paytube.horizon_url"
	// FlagRPCURL is a flag for the Soroban RPC endpoint
	FlagRPCURL = "paytube.rpc_url"
	// FlagNetworkPassphrase is a flag for the network passphrase transactions are signed for
	FlagNetworkPassphrase = "paytube.network_passphrase"
	// FlagDBPath is a flag for the directory of the local database
	FlagDBPath = "paytube.db_path"
	// FlagBaseFee is a flag for the per-operation fee in stroops
	FlagBaseFee = "paytube.base_fee"
	// FlagMaxIters is a flag for the number of confirmation polls
	FlagMaxIters = "paytube.max_iters"
	// FlagPollingInterval is a flag for the time between confirmation polls
	FlagPollingInterval = "paytube.polling_interval"
	// FlagLogLevel is a flag for the log level
	FlagLogLevel = "paytube.log_level"
	// FlagStrictValidation is a flag for aborting passes on invalid transfers
	FlagStrictValidation = "paytube.strict_validation"
	// FlagSubmitter is a flag for selecting the submission path
	FlagSubmitter = "paytube.submitter"
	// FlagPrometheusListenAddr is a flag for the metrics listen address
	FlagPrometheusListenAddr = "paytube.prometheus_listen_addr"
)

// Submission paths.
const (
	SubmitterHorizon = "horizon"
	SubmitterRPC     = "rpc"
)

var (
	ErrInvalidBatchSize = errors.New("max_ops_per_batch must be positive")
	ErrUnknownSubmitter = errors.New("unknown submitter")
)

// Config stores the settlement engine configuration.
type Config struct {
	// MaxOpsPerBatch is the maximum number of operations per settlement transaction.
	MaxOpsPerBatch    int    `mapstructure:"max_ops_per_batch"`
	HorizonURL        string `mapstructure:"horizon_url"`
	RPCURL            string `mapstructure:"rpc_url"`
	NetworkPassphrase string `mapstructure:"network_passphrase"`
	// DBPath is the directory of the local account database. Empty means in memory.
	DBPath string `mapstructure:"db_path"`
	// BaseFee is the per-operation fee in stroops.
	BaseFee int64 `mapstructure:"base_fee"`
	// MaxIters and PollingInterval bound the wait for a confirmation via RPC.
	MaxIters         int           `mapstructure:"max_iters"`
	PollingInterval  time.Duration `mapstructure:"polling_interval"`
	LogLevel         string        `mapstructure:"log_level"`
	StrictValidation bool          `mapstructure:"strict_validation"`
	Submitter        string        `mapstructure:"submitter"`
	// PrometheusListenAddr enables the metrics endpoint if set.
	PrometheusListenAddr string `mapstructure:"prometheus_listen_addr"`
}

// GetViperConfig reads configuration parameters from Viper instance.
func (c *Config) GetViperConfig(v *viper.Viper) error {
	c.MaxOpsPerBatch = v.GetInt(FlagMaxOpsPerBatch)
	c.HorizonURL = v.GetString(FlagHorizonURL)
	c.RPCURL = v.GetString(FlagRPCURL)
	c.NetworkPassphrase = v.GetString(FlagNetworkPassphrase)
	c.DBPath = v.GetString(FlagDBPath)
	c.BaseFee = v.GetInt64(FlagBaseFee)
	c.MaxIters = v.GetInt(FlagMaxIters)
	c.PollingInterval = v.GetDuration(FlagPollingInterval)
	c.LogLevel = v.GetString(FlagLogLevel)
	c.StrictValidation = v.GetBool(FlagStrictValidation)
	c.Submitter = v.GetString(FlagSubmitter)
	c.PrometheusListenAddr = v.GetString(FlagPrometheusListenAddr)
	return c.Validate()
}

// AddFlags adds the configuration options to cobra Command.
func AddFlags(cmd *cobra.Command) {
	def := DefaultConfig
	cmd.PersistentFlags().Int(FlagMaxOpsPerBatch, def.MaxOpsPerBatch, "maximum number of operations per settlement transaction")
	cmd.PersistentFlags().String(FlagHorizonURL, def.HorizonURL, "Horizon endpoint")
	cmd.PersistentFlags().String(FlagRPCURL, def.RPCURL, "Soroban RPC endpoint")
	cmd.PersistentFlags().String(FlagNetworkPassphrase, def.NetworkPassphrase, "network passphrase")
	cmd.PersistentFlags().String(FlagDBPath, def.DBPath, "directory of the local account database (empty: in memory)")
	cmd.PersistentFlags().Int64(FlagBaseFee, def.BaseFee, "fee per operation in stroops")
	cmd.PersistentFlags().Int(FlagMaxIters, def.MaxIters, "number of confirmation polls (rpc submitter)")
	cmd.PersistentFlags().Duration(FlagPollingInterval, def.PollingInterval, "time between confirmation polls (rpc submitter)")
	cmd.PersistentFlags().String(FlagLogLevel, def.LogLevel, "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().Bool(FlagStrictValidation, def.StrictValidation, "abort a pass if any transfer is invalid")
	cmd.PersistentFlags().String(FlagSubmitter, def.Submitter, "submission path (horizon or rpc)")
	cmd.PersistentFlags().String(FlagPrometheusListenAddr, def.PrometheusListenAddr, "address of the prometheus endpoint (empty: disabled)")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxOpsPerBatch <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, c.MaxOpsPerBatch)
	}
	switch c.Submitter {
	case SubmitterHorizon, SubmitterRPC:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSubmitter, c.Submitter)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
