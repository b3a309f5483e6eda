package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Structured logging for the session through one
 *		*log.Logger per session, tagged with the session's role.
 *		Only the session start and HDLC frames that fail their FCS
 *		are logged; state transitions, timer expiry and training
 *		failures are not.
 *
 *---------------------------------------------------------------*/

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// newSessionLogger builds a charmbracelet/log logger prefixed with the
// session's role, matching the T.30 convention of logging everything from
// the point of view of "am I the caller or the answerer."
func newSessionLogger(role Role, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := log.NewWithOptions(out, log.Options{
		Prefix:          "spanfax",
		ReportTimestamp: true,
	})
	return logger.With("role", role.String())
}
