package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmgilman/go/filestore/errors"
)

// ExitTempFail is returned for failures that may succeed when retried
// (sysexits EX_TEMPFAIL).
const ExitTempFail = 75

// Report writes err to w, as a JSON object when asJSON is set.
func Report(w io.Writer, err error, asJSON bool) {
	if err == nil {
		return
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(errors.ToJSON(err)); encErr == nil {
			return
		}
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsRetryable(err):
		return ExitTempFail
	default:
		return 1
	}
}
