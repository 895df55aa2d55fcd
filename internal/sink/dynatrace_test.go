package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8stypes "k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/patrickpichler/koney/internal/alert"
	"github.com/patrickpichler/koney/internal/types"
)

func testAlert() types.DeceptionAlert {
	policy := "honeypot-prod"
	return types.DeceptionAlert{
		Timestamp:           "2025-01-01T00:00:00Z",
		DeceptionPolicyName: &policy,
		TrapType:            types.TrapTypeFilesystemHoneytoken,
		Metadata:            map[string]any{"file_path": "/etc/secret"},
		Pod: &types.PodMetadata{
			Name:      "victim",
			Namespace: "team-a",
			Container: types.ContainerMetadata{ID: "containerd://abc", Name: "app"},
		},
		Node:    &types.NodeMetadata{Name: "node-1"},
		Process: &types.ProcessMetadata{UID: 1000, PID: 42, CWD: "/root", Binary: "/bin/cat", Arguments: "/etc/secret"},
	}
}

func newTestClusterInfo() *ClusterInfo {
	client := fake.NewSimpleClientset(&corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: metav1.NamespaceSystem,
			UID:  k8stypes.UID("cluster-uid-1"),
		},
	})
	return NewClusterInfo(client, zap.NewNop())
}

func newTestSender() *DynatraceSender {
	return NewDynatraceSender(newTestClusterInfo(), 5*time.Second, zap.NewNop())
}

func TestSend_PostsAcceptedPayload(t *testing.T) {
	var (
		gotPath    string
		gotAuth    string
		gotType    string
		gotPayload map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	target := DynatraceSink{APIURL: srv.URL, APIToken: "dt0c01.sample", Severity: types.SeverityHigh}
	require.NoError(t, newTestSender().Send(context.Background(), testAlert(), target))

	assert.Equal(t, "/platform/ingest/v1/security.events", gotPath)
	assert.Equal(t, "Api-Token dt0c01.sample", gotAuth)
	assert.Equal(t, "application/json", gotType)

	wantID, err := alert.ID(testAlert())
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01T00:00:00Z", gotPayload["timestamp"])
	assert.Equal(t, "honeypot-prod", gotPayload["koney.deception_policy_name"])
	assert.Equal(t, "filesystem_honeytoken", gotPayload["koney.trap_type"])
	assert.Equal(t, "/etc/secret", gotPayload["koney.metadata.file_path"])
	assert.Equal(t, wantID, gotPayload["event.id"])
	assert.Equal(t, wantID, gotPayload["finding.id"])
	assert.Equal(t, "Access to honeytoken (/etc/secret) in pod (team-a/victim) detected", gotPayload["event.description"])
	assert.Equal(t, "HIGH", gotPayload["finding.severity"])
	assert.Equal(t, 8.9, gotPayload["dt.security.risk.score"])
	assert.Equal(t, "cluster-uid-1", gotPayload["k8s.cluster.uid"])
	assert.Equal(t, "team-a", gotPayload["k8s.namespace.name"])
	assert.Equal(t, "node-1", gotPayload["k8s.node.name"])
	assert.Equal(t, "cat", gotPayload["process.executable.name"])
	assert.Equal(t, "/bin", gotPayload["process.executable.path"])
	assert.Equal(t, "containerd://abc", gotPayload["object.id"])
}

func TestSend_NonAcceptedStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // 200 is not the ingest contract
	}))
	defer srv.Close()

	target := DynatraceSink{APIURL: srv.URL, APIToken: "t", Severity: types.SeverityLow}
	err := newTestSender().Send(context.Background(), testAlert(), target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 200")
}

func TestSend_UnreachableSink(t *testing.T) {
	target := DynatraceSink{APIURL: "http://127.0.0.1:1", APIToken: "t", Severity: types.SeverityLow}
	err := newTestSender().Send(context.Background(), testAlert(), target)
	require.Error(t, err)
}

func TestBuildPayload_MissingContext(t *testing.T) {
	a := types.DeceptionAlert{
		Timestamp: "2025-01-01T00:00:00Z",
		TrapType:  types.TrapTypeUnknown,
		Metadata:  map[string]any{},
	}

	payload, err := buildPayload(a, types.SeverityMedium, "")
	require.NoError(t, err)

	assert.Nil(t, payload["koney.deception_policy_name"])
	assert.Nil(t, payload["koney.metadata.file_path"])
	assert.Equal(t, "", payload["k8s.pod.name"])
	assert.Equal(t, "", payload["process.executable.name"])
	assert.Equal(t, "", payload["process.executable.path"])
	assert.Equal(t, 6.9, payload["dt.security.risk.score"])
	assert.Equal(t, "Koney alert triggered", payload["finding.title"])
}

func TestClusterInfo_CachesUID(t *testing.T) {
	info := newTestClusterInfo()
	ctx := context.Background()

	assert.Equal(t, "cluster-uid-1", info.UID(ctx))
	assert.Equal(t, "cluster-uid-1", info.UID(ctx))
}

func TestClusterInfo_LookupFailure(t *testing.T) {
	info := NewClusterInfo(fake.NewSimpleClientset(), zap.NewNop())
	assert.Empty(t, info.UID(context.Background()))
}
