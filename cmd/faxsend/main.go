// Command faxsend drives an outgoing T.30 fax call from a YAML session
// descriptor by calling Session.Tx in a loop; it reads nothing from
// stdin.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	spanfax "github.com/n0fax/spanfax-go/src"
)

func main() {
	var overrides spanfax.CLIOverrides
	spanfax.RegisterFlags(pflag.CommandLine, &overrides)
	pflag.Parse()

	fileCfg, err := spanfax.LoadFileConfig(overrides.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "faxsend: %s\n", err)
		os.Exit(1)
	}
	fileCfg = overrides.Apply(fileCfg)
	fileCfg.Role = "calling"

	cfg, err := fileCfg.ToSessionConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "faxsend: %s\n", err)
		os.Exit(1)
	}
	cfg.LogOutput = os.Stderr

	cfg.Callbacks.PhaseE = func(status spanfax.Status) {
		fmt.Fprintf(os.Stderr, "faxsend: call ended: %s\n", status)
		if status.IsFailure() {
			os.Exit(1)
		}
	}

	session, err := spanfax.NewSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "faxsend: %s\n", err)
		os.Exit(1)
	}

	buf := make([]int16, 160)
	for !session.Done() {
		n := session.Tx(buf)
		if n == 0 {
			break
		}
	}
}
