package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickpichler/koney/internal/fingerprint"
)

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTrigger_PostsToForwarder(t *testing.T) {
	var path, method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		method = r.Method
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	out, err := executeCommand(triggerCmd(), "--url", server.URL)
	require.NoError(t, err)

	assert.Equal(t, "/handlers/tetragon", path)
	assert.Equal(t, http.MethodPost, method)
	assert.Contains(t, out, "scheduled")
}

func TestTrigger_ReportsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := executeCommand(triggerCmd(), "--url", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestTrigger_ReportsUnreachableForwarder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := executeCommand(triggerCmd(), "--url", server.URL, "--timeout", (100 * time.Millisecond).String())
	require.Error(t, err)
}

func TestFingerprintEncode_Cat(t *testing.T) {
	out, err := executeCommand(fingerprintCmd(), "encode", "--mode", "cat")
	require.NoError(t, err)
	assert.Equal(t, fingerprint.EncodeCat(fingerprint.Marker), strings.TrimSpace(out))
}

func TestFingerprintEncode_Echo(t *testing.T) {
	out, err := executeCommand(fingerprintCmd(), "encode", "--mode", "echo", "--code", "42")
	require.NoError(t, err)
	assert.Equal(t, "KONEY_FINGERPRINT_42", strings.TrimSpace(out))
}

func TestFingerprintEncode_UnknownMode(t *testing.T) {
	_, err := executeCommand(fingerprintCmd(), "encode", "--mode", "base64")
	require.Error(t, err)
}

func TestFingerprintDecode_RoundTrip(t *testing.T) {
	out, err := executeCommand(fingerprintCmd(), "decode", "--", fingerprint.EncodeCat(1337))
	require.NoError(t, err)
	assert.Equal(t, "1337", strings.TrimSpace(out))
}

func TestFingerprintDecode_Invalid(t *testing.T) {
	_, err := executeCommand(fingerprintCmd(), "decode", "--", "-uuu -u")
	require.Error(t, err)
}
