package alert

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"

	"github.com/patrickpichler/koney/api/v1alpha1"
)

// ClusterPolicyResolver resolves deception policy names by reading the
// reference label off the cluster-scoped TracingPolicy object.
type ClusterPolicyResolver struct {
	client dynamic.Interface
}

// NewClusterPolicyResolver creates a resolver backed by the dynamic client.
func NewClusterPolicyResolver(client dynamic.Interface) *ClusterPolicyResolver {
	return &ClusterPolicyResolver{client: client}
}

// ResolveDeceptionPolicy implements PolicyResolver. A deleted tracing policy
// or a transient API error surfaces as an error; the caller degrades to a
// nil policy name.
func (r *ClusterPolicyResolver) ResolveDeceptionPolicy(ctx context.Context, tracingPolicyName string) (string, error) {
	tp, err := r.client.Resource(v1alpha1.TracingPolicyGVR).Get(ctx, tracingPolicyName, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("get tracing policy %q: %w", tracingPolicyName, err)
	}

	return tp.GetLabels()[v1alpha1.DeceptionPolicyRefLabel], nil
}
