// Command faxrecv answers an incoming T.30 fax call from a YAML session
// descriptor, reading PCM audio from stdin and writing decoded page rows
// to a row-oriented sink the caller wires in.
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
		fmt.Fprintf(os.Stderr, "faxrecv: %s\n", err)
		os.Exit(1)
	}
	fileCfg = overrides.Apply(fileCfg)
	fileCfg.Role = "answering"

	cfg, err := fileCfg.ToSessionConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "faxrecv: %s\n", err)
		os.Exit(1)
	}
	cfg.LogOutput = os.Stderr

	cfg.Callbacks.Document = func(event spanfax.DocumentEvent) {
		if event == spanfax.DocumentPageEnded {
			fmt.Fprintln(os.Stderr, "faxrecv: page received")
		}
	}
	cfg.Callbacks.PhaseE = func(status spanfax.Status) {
		fmt.Fprintf(os.Stderr, "faxrecv: call ended: %s\n", status)
		if status.IsFailure() {
			os.Exit(1)
		}
	}

	session, err := spanfax.NewSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "faxrecv: %s\n", err)
		os.Exit(1)
	}

	stdin := os.Stdin
	buf := make([]byte, 320)
	samples := make([]int16, 160)
	for !session.Done() {
		n, err := stdin.Read(buf)
		if n == 0 || err != nil {
			break
		}
		for i := 0; i < n/2; i++ {
			samples[i] = int16(buf[2*i]) | int16(buf[2*i+1])<<8
		}
		session.Rx(samples[:n/2])
	}
}
