package types

// TrapType classifies which kind of deception trap an alert originated from.
type TrapType string

const (
	TrapTypeUnknown              TrapType = "unknown"
	TrapTypeFilesystemHoneytoken TrapType = "filesystem_honeytoken"
	TrapTypeHTTPEndpoint         TrapType = "http_endpoint"
	TrapTypeHTTPPayload          TrapType = "http_payload"
)

// ContainerMetadata identifies the container a trap was touched in.
type ContainerMetadata struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PodMetadata identifies the pod a trap was touched in.
type PodMetadata struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Container ContainerMetadata `json:"container"`
}

// NodeMetadata identifies the node the triggering process ran on.
type NodeMetadata struct {
	Name string `json:"name"`
}

// ProcessMetadata describes the process that touched the trap.
type ProcessMetadata struct {
	UID       uint32 `json:"uid"`
	PID       uint32 `json:"pid"`
	CWD       string `json:"cwd"`
	Binary    string `json:"binary"`
	Arguments string `json:"arguments"`
}

// DeceptionAlert is the normalized alert record produced by the mapper and
// consumed by the self-test filter and the delivery dispatcher. Pod, node and
// process context may each be absent independently; a nil pointer is the
// typed null for a missing record.
//
// Field order is load-bearing: the alert's external identifier is a hash over
// the canonical JSON serialization, and encoding/json emits struct fields in
// declaration order.
type DeceptionAlert struct {
	// Timestamp is ISO-8601, truncated to whole seconds. Sub-second
	// precision is discarded upstream so that identical kernel events
	// collapse to one deduplication key.
	Timestamp string `json:"timestamp"`

	// DeceptionPolicyName is the higher-level policy that provisioned the
	// trap, resolved via a side lookup. Nil when the lookup fails.
	DeceptionPolicyName *string `json:"deception_policy_name"`

	// TrapType is never empty; unclassifiable events carry TrapTypeUnknown.
	TrapType TrapType `json:"trap_type"`

	// Metadata holds trap-type dependent context, e.g. "file_path" for
	// filesystem honeytokens.
	Metadata map[string]any `json:"metadata"`

	Pod     *PodMetadata     `json:"pod"`
	Node    *NodeMetadata    `json:"node"`
	Process *ProcessMetadata `json:"process"`
}
