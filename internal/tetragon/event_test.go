package tetragon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_VariantSelection(t *testing.T) {
	for _, kind := range []string{"process_kprobe", "process_uprobe", "process_tracepoint", "process_lsm"} {
		t.Run(kind, func(t *testing.T) {
			raw := `{"` + kind + `":{"policy_name":"koney-tracing-policy-a"},"time":"2025-01-01T00:00:00Z"}`

			var ev Event
			require.NoError(t, json.Unmarshal([]byte(raw), &ev))
			assert.Equal(t, kind, ev.Kind())
			assert.Equal(t, "koney-tracing-policy-a", ev.PolicyName())
		})
	}
}

func TestEvent_UnrecognizedKind(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"process_exit":{"policy_name":"x"},"time":"t"}`), &ev))

	assert.Equal(t, "unrecognized", ev.Kind())
	assert.Nil(t, ev.Probe())
	assert.Empty(t, ev.PolicyName())
}

func TestProbeEvent_FirstFilePath(t *testing.T) {
	p := &ProbeEvent{Args: []Argument{{FileArg: &FileArg{Path: "/etc/secret"}}}}
	assert.Equal(t, "/etc/secret", p.FirstFilePath())

	assert.Empty(t, (&ProbeEvent{}).FirstFilePath())
	assert.Empty(t, (&ProbeEvent{Args: []Argument{{}}}).FirstFilePath())
}
