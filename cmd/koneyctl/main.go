// koneyctl is a CLI tool for operating the Koney alert forwarder.
//
// Installation:
//
//	go build -o koneyctl ./cmd/koneyctl
//	mv koneyctl /usr/local/bin/
//
// Usage:
//
//	koneyctl trigger --url http://koney-forwarder.koney-system.svc:8080
//	koneyctl fingerprint encode --mode cat
//	koneyctl fingerprint decode -- "-uu -u -uu -u -u -uu -uu -uu -u -u -uu"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "koneyctl",
		Short: "Operate the Koney alert forwarder",
		Long: `koneyctl is a CLI tool for interacting with the Koney alert forwarder.

It can schedule pipeline runs by hand and work with the fingerprint
encodings that mark Koney's own trap self-tests.`,
		Version: version,
	}

	rootCmd.AddCommand(triggerCmd())
	rootCmd.AddCommand(fingerprintCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
