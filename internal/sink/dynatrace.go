package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickpichler/koney/internal/alert"
	"github.com/patrickpichler/koney/internal/types"
)

const (
	// ingestPath is appended to the sink's API URL.
	ingestPath = "/platform/ingest/v1/security.events"

	// payloadVersion tracks the flattened payload schema.
	// TODO: bump event.version when fields change.
	payloadVersion = "2025-07-18"

	// DefaultTimeout bounds one delivery attempt.
	DefaultTimeout = 25 * time.Second
)

// DynatraceSender delivers alerts to the Dynatrace security-event ingest
// API. Success is HTTP 202; anything else is a delivery failure for that
// sink.
type DynatraceSender struct {
	httpClient  *http.Client
	clusterInfo *ClusterInfo
	logger      *zap.Logger
}

// NewDynatraceSender creates a sender with the given per-request timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewDynatraceSender(clusterInfo *ClusterInfo, timeout time.Duration, logger *zap.Logger) *DynatraceSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DynatraceSender{
		httpClient:  &http.Client{Timeout: timeout},
		clusterInfo: clusterInfo,
		logger:      logger.Named("dynatrace"),
	}
}

// Send maps the alert into the Dynatrace wire format and POSTs it.
func (s *DynatraceSender) Send(ctx context.Context, a types.DeceptionAlert, target DynatraceSink) error {
	payload, err := buildPayload(a, target.Severity, s.clusterInfo.UID(ctx))
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	start := time.Now()
	status, err := s.post(ctx, target, body)
	deliverDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return err
}

// post executes one delivery attempt and returns a metrics status label.
func (s *DynatraceSender) post(ctx context.Context, target DynatraceSink, body []byte) (string, error) {
	url := strings.TrimSuffix(target.APIURL, "/") + ingestPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "error", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Token "+target.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "error", fmt.Errorf("post security event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusAccepted {
		return "rejected", fmt.Errorf("security event ingest returned HTTP %d", resp.StatusCode)
	}

	return "accepted", nil
}

// buildPayload flattens the alert into the Dynatrace security-event field
// map. The deterministic alert ID doubles as event and finding ID so the
// backend can deduplicate redeliveries.
func buildPayload(a types.DeceptionAlert, severity types.Severity, clusterUID string) (map[string]any, error) {
	alertID, err := alert.ID(a)
	if err != nil {
		return nil, err
	}
	description := alert.Description(a)

	var pod types.PodMetadata
	if a.Pod != nil {
		pod = *a.Pod
	}
	var node types.NodeMetadata
	if a.Node != nil {
		node = *a.Node
	}
	var process types.ProcessMetadata
	if a.Process != nil {
		process = *a.Process
	}

	binaryName, binaryPath := splitBinary(process.Binary)
	severityLabel := strings.ToUpper(string(severity))

	var policyName any
	if a.DeceptionPolicyName != nil {
		policyName = *a.DeceptionPolicyName
	}

	payload := map[string]any{
		"timestamp": a.Timestamp,

		// koney metadata (flattened)
		"koney.deception_policy_name": policyName,
		"koney.trap_type":             string(a.TrapType),
		"koney.metadata.file_path":    a.Metadata["file_path"],

		// event metadata
		"event.kind":        "SECURITY_EVENT",
		"event.type":        "DETECTION_FINDING",
		"event.name":        "Detection finding event",
		"event.provider":    "Koney",
		"event.version":     payloadVersion,
		"event.id":          alertID,
		"event.description": description,

		// detection metadata
		"detection.type": "KONEY_ALERT",

		// security finding metadata
		"finding.id":           alertID,
		"finding.title":        description,
		"finding.description":  description,
		"finding.time.created": a.Timestamp,
		"finding.severity":     severityLabel,

		// security event metadata
		"dt.security.risk.level": severityLabel,
		"dt.security.risk.score": severity.RiskScore(),

		// product metadata
		"product.name":   "Koney",
		"product.vendor": "Dynatrace Research",

		// kubernetes metadata
		"k8s.cluster.uid":    clusterUID,
		"k8s.namespace.name": pod.Namespace,
		"k8s.node.name":      node.Name,
		"k8s.pod.name":       pod.Name,
		"k8s.container.name": pod.Container.Name,
		"k8s.container.id":   pod.Container.ID,

		// process metadata
		"process.executable.name":      binaryName,
		"process.executable.path":      binaryPath,
		"process.executable.arguments": process.Arguments,
		"process.pid":                  process.PID,
		"process.uid":                  process.UID,
		"process.cwd":                  process.CWD,

		// source object metadata (for enrichment)
		"object.type": "KUBERNETES_CONTAINER",
		"object.id":   pod.Container.ID,
	}

	return payload, nil
}

// splitBinary separates an executable path into name and directory.
func splitBinary(binary string) (name, dir string) {
	if binary == "" {
		return "", ""
	}
	return path.Base(binary), path.Dir(binary)
}
