package sink

import (
	"context"
	"sync"

	"go.uber.org/zap"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ClusterInfo provides a stable identifier for the cluster the forwarder
// runs in: the UID of the kube-system namespace. The value cannot change
// for the lifetime of a cluster, so a successful lookup is cached for the
// process lifetime; failed lookups are retried on the next use.
type ClusterInfo struct {
	client kubernetes.Interface
	logger *zap.Logger

	mu  sync.Mutex
	uid string
}

// NewClusterInfo creates a lazy cluster identity lookup.
func NewClusterInfo(client kubernetes.Interface, logger *zap.Logger) *ClusterInfo {
	return &ClusterInfo{
		client: client,
		logger: logger.Named("cluster-info"),
	}
}

// UID returns the cluster identifier, or "" when the lookup fails.
func (c *ClusterInfo) UID(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != "" {
		return c.uid
	}

	ns, err := c.client.CoreV1().Namespaces().Get(ctx, metav1.NamespaceSystem, metav1.GetOptions{})
	if err != nil {
		c.logger.Warn("Failed to resolve cluster identifier", zap.Error(err))
		return ""
	}

	c.uid = string(ns.GetUID())
	return c.uid
}
