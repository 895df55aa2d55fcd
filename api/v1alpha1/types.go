// Package v1alpha1 contains the API types the alert forwarder consumes.
//
// The forwarder never writes these objects; they are owned by the Koney
// operator. They are read through the dynamic client as unstructured objects
// and decoded into the typed specs below, so no scheme registration is
// needed here.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// GroupVersion identifies the Koney API group served by the operator.
var GroupVersion = schema.GroupVersion{Group: "research.dynatrace.com", Version: "v1alpha1"}

// DeceptionAlertSinkGVR addresses the namespaced DeceptionAlertSink objects.
var DeceptionAlertSinkGVR = GroupVersion.WithResource("deceptionalertsinks")

// TracingPolicyGVR addresses the cluster-scoped Tetragon TracingPolicy
// objects the operator provisions for each trap.
var TracingPolicyGVR = schema.GroupVersionResource{
	Group:    "cilium.io",
	Version:  "v1alpha1",
	Resource: "tracingpolicies",
}

// DeceptionPolicyRefLabel is the label on a TracingPolicy that references the
// owning DeceptionPolicy by name.
const DeceptionPolicyRefLabel = "koney/deception-policy"

// TracingPolicyPrefix is the name prefix of all TracingPolicies created by
// the Koney operator. Log lines and resolved policy names are validated
// against it.
const TracingPolicyPrefix = "koney-tracing-policy-"

// DeceptionAlertSink configures one external alerting backend.
type DeceptionAlertSink struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec DeceptionAlertSinkSpec `json:"spec,omitempty"`
}

// DeceptionAlertSinkList contains a list of DeceptionAlertSink.
type DeceptionAlertSinkList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DeceptionAlertSink `json:"items"`
}

// DeceptionAlertSinkSpec holds the per-backend configuration. Exactly one
// backend is expected to be set.
type DeceptionAlertSinkSpec struct {
	// Dynatrace describes how to deliver alerts to a Dynatrace environment.
	Dynatrace *DynatraceSinkSpec `json:"dynatrace,omitempty"`
}

// DynatraceSinkSpec references the credentials and severity for a Dynatrace
// security-event ingest endpoint.
type DynatraceSinkSpec struct {
	// SecretName names a Secret in the forwarder namespace holding the
	// `apiUrl` and `apiToken` keys.
	SecretName string `json:"secretName,omitempty"`

	// Severity is the level stamped on ingested findings, one of
	// low, medium, high, critical (case-insensitive). Defaults to high.
	Severity string `json:"severity,omitempty"`
}
