package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	T.30 page-header line formatting (the "CSI/time/page N"
 *		banner fax machines print along the top of each page),
 *		using lestrrat-go/strftime for the timestamp portion
 *		rather than hand-rolling time.Time formatting.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/lestrrat-go/strftime"
)

// pageHeaderTimeLayout mirrors the original's "%d-%b-%Y %H:%M" banner
// timestamp.
const pageHeaderTimeLayout = "%d-%b-%Y %H:%M"

// PageHeaderConfig describes the caller-supplied fields that go into a
// page header banner: the local station ident, the remote CSI/TSI (if
// any was received), and the clock used to stamp it.
type PageHeaderConfig struct {
	LocalIdent string
	RemoteCSI  string
	Clock      Clock
}

// pageHeader renders the page-header text for page number n (1-based),
// e.g. "spanfax-go              30-Jul-2026 14:05      Page 003".
func pageHeader(cfg PageHeaderConfig, n int) (string, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	f, err := strftime.New(pageHeaderTimeLayout)
	if err != nil {
		return "", err
	}
	stamp := f.FormatString(clock.Now())

	ident := cfg.LocalIdent
	if cfg.RemoteCSI != "" {
		ident = fmt.Sprintf("%s -> %s", cfg.LocalIdent, cfg.RemoteCSI)
	}
	return fmt.Sprintf("%-24s%-20s   Page %03d", ident, stamp, n), nil
}
