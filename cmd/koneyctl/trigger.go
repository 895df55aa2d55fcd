package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func triggerCmd() *cobra.Command {
	var url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Schedule a debounced pipeline run on a forwarder",
		Long: `Schedule a pipeline run by posting to the forwarder's webhook
endpoint, the same way the Tetragon export hook does.

Examples:
  # Trigger the in-cluster forwarder via a port-forward
  koneyctl trigger --url http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrigger(cmd, url, timeout)
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://koney-forwarder.koney-system.svc:8080", "Base URL of the forwarder")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}

func runTrigger(cmd *cobra.Command, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/handlers/tetragon", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach forwarder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("forwarder rejected the trigger: %s", resp.Status)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Pipeline run scheduled")
	return nil
}
