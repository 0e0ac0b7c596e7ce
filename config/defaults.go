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
	"time"

	"github.com/stellar/go/txnbuild"

	"perun.network/perun-paytube-backend/client"
	"perun.network/perun-paytube-backend/settlement"
)

// DefaultConfig keeps default values of Config
var DefaultConfig = Config{
	MaxOpsPerBatch:    settlement.DefaultMaxOpsPerBatch,
	HorizonURL:        client.HorizonURL,
	RPCURL:            client.SorobanRPCLink,
	NetworkPassphrase: client.NETWORK_PASSPHRASE,
	BaseFee:           txnbuild.MinBaseFee,
	MaxIters:          client.DefaultMaxIters,
	PollingInterval:   client.DefaultPollingInterval,
	LogLevel:          "info",
	Submitter:         SubmitterHorizon,
}

// DefaultPollingTimeout is the longest time the default configuration waits
// for a confirmation.
var DefaultPollingTimeout = time.Duration(client.DefaultMaxIters) * client.DefaultPollingInterval
