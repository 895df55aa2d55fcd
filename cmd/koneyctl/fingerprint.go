package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patrickpichler/koney/internal/fingerprint"
)

func fingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Work with self-test fingerprint encodings",
	}

	cmd.AddCommand(fingerprintEncodeCmd())
	cmd.AddCommand(fingerprintDecodeCmd())

	return cmd
}

func fingerprintEncodeCmd() *cobra.Command {
	var mode string
	var code int

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print a fingerprint in echo or cat encoding",
		Long: `Print a fingerprint the way Koney's self-test commands smuggle it
into process arguments.

Examples:
  # The echo form, an environment-style marker
  koneyctl fingerprint encode --mode echo

  # The cat form, the marker's bits as -u/-uu flags
  koneyctl fingerprint encode --mode cat --code 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch mode {
			case "echo":
				fmt.Fprintln(cmd.OutOrStdout(), fingerprint.EncodeEcho(code))
			case "cat":
				fmt.Fprintln(cmd.OutOrStdout(), fingerprint.EncodeCat(code))
			default:
				return fmt.Errorf("unknown mode %q, want echo or cat", mode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "cat", "Encoding: echo or cat")
	cmd.Flags().IntVar(&code, "code", fingerprint.Marker, "Fingerprint code to encode")

	return cmd
}

func fingerprintDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <encoding>",
		Short: "Decode a cat-flag fingerprint back to its code",
		Long: `Decode a sequence of -u/-uu flags back into the fingerprint code.

Examples:
  koneyctl fingerprint decode -- "-uu -u -uu -u -u -uu -uu -uu -u -u -uu"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := fingerprint.DecodeCat(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to decode: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.Itoa(code))
			return nil
		},
	}

	return cmd
}
