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
	"fmt"
	"io"

	"github.com/2opremio/pretty"

	"perun.network/perun-paytube-backend/channel"
)

func printReport(w io.Writer, rep *channel.Report, verbose bool) {
	fmt.Fprintf(w, "session %s\n", rep.Session)
	fmt.Fprintf(w, "transfers: %d succeeded, %d failed, %d invalid\n", rep.Succeeded, len(rep.Failed), len(rep.Invalid))
	for _, ie := range rep.Invalid {
		fmt.Fprintf(w, "  invalid #%d: %s\n", ie.Seq, ie.Reason)
	}
	for _, f := range rep.Failed {
		reason := "no logs"
		if len(f.Logs) > 0 {
			reason = f.Logs[len(f.Logs)-1]
		}
		fmt.Fprintf(w, "  failed #%d: %s\n", f.Intent.Seq, reason)
	}
	fmt.Fprintf(w, "batches: %d (%d operations)\n", len(rep.Batches), rep.NumOperations())
	for i, b := range rep.Batches {
		status := "planned"
		if i < len(rep.Results) {
			res := rep.Results[i]
			status = res.Status.String()
			if res.Confirmed() {
				status += " " + res.TxHash
			} else {
				status += ": " + res.Reason
			}
		}
		fmt.Fprintf(w, "  batch %d: %d operations, %s\n", b.Index, b.Len(), status)
		for _, op := range b.Operations {
			fmt.Fprintf(w, "    %v\n", op)
		}
	}
	if verbose {
		fmt.Fprintf(w, "\nReport:\n\n%# +v\n", pretty.Formatter(rep))
	}
}
