// Package alert normalizes decoded Tetragon events into DeceptionAlert
// records and derives their external identifiers and descriptions.
package alert

import (
	"context"

	"go.uber.org/zap"

	"github.com/patrickpichler/koney/internal/tetragon"
	"github.com/patrickpichler/koney/internal/types"
)

// fileAccessFunctions are the kprobe functions that indicate a filesystem
// honeytoken was touched.
var fileAccessFunctions = map[string]bool{
	"security_file_permission": true,
	"security_mmap_file":       true,
}

// PolicyResolver looks up the deception policy that owns a tracing policy.
type PolicyResolver interface {
	// ResolveDeceptionPolicy returns the owning deception policy name for
	// the given tracing-policy name, or "" when the tracing policy carries
	// no reference label.
	ResolveDeceptionPolicy(ctx context.Context, tracingPolicyName string) (string, error)
}

// Mapper converts raw events into normalized alerts. All extraction is
// defensive: missing event context yields nil alert fields, never an error.
type Mapper struct {
	resolver PolicyResolver
	logger   *zap.Logger
}

// NewMapper creates a Mapper using the given resolver for the deception
// policy side lookup.
func NewMapper(resolver PolicyResolver, logger *zap.Logger) *Mapper {
	return &Mapper{
		resolver: resolver,
		logger:   logger.Named("mapper"),
	}
}

// Map normalizes one event. A failed policy lookup produces a nil
// DeceptionPolicyName and a warning, not a pipeline abort.
func (m *Mapper) Map(ctx context.Context, event tetragon.Event) types.DeceptionAlert {
	alert := types.DeceptionAlert{
		Timestamp: event.Time,
		TrapType:  types.TrapTypeUnknown,
		Metadata:  map[string]any{},
	}

	if name := event.PolicyName(); name != "" {
		resolved, err := m.resolver.ResolveDeceptionPolicy(ctx, name)
		switch {
		case err != nil:
			m.logger.Warn("Failed to resolve deception policy",
				zap.String("tracing_policy", name),
				zap.Error(err),
			)
		case resolved != "":
			alert.DeceptionPolicyName = &resolved
		}
	}

	if k := event.ProcessKprobe; k != nil && fileAccessFunctions[k.FunctionName] {
		alert.TrapType = types.TrapTypeFilesystemHoneytoken
		alert.Metadata["file_path"] = k.FirstFilePath()
	}

	alert.Pod = extractPod(event)
	alert.Node = extractNode(event)
	alert.Process = extractProcess(event)

	return alert
}

func extractPod(event tetragon.Event) *types.PodMetadata {
	probe := event.Probe()
	if probe == nil || probe.Process == nil || probe.Process.Pod == nil {
		return nil
	}

	pod := probe.Process.Pod
	meta := &types.PodMetadata{
		Name:      pod.Name,
		Namespace: pod.Namespace,
	}
	if pod.Container != nil {
		meta.Container = types.ContainerMetadata{
			ID:   pod.Container.ID,
			Name: pod.Container.Name,
		}
	}
	return meta
}

func extractNode(event tetragon.Event) *types.NodeMetadata {
	if event.NodeName == "" {
		return nil
	}
	return &types.NodeMetadata{Name: event.NodeName}
}

func extractProcess(event tetragon.Event) *types.ProcessMetadata {
	probe := event.Probe()
	if probe == nil || probe.Process == nil {
		return nil
	}

	p := probe.Process
	return &types.ProcessMetadata{
		UID:       p.UID,
		PID:       p.PID,
		CWD:       p.CWD,
		Binary:    p.Binary,
		Arguments: p.Arguments,
	}
}
