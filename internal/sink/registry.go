package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/patrickpichler/koney/api/v1alpha1"
	"github.com/patrickpichler/koney/internal/types"
	"github.com/patrickpichler/koney/internal/util"
)

const (
	secretKeyAPIURL   = "apiUrl"
	secretKeyAPIToken = "apiToken"
)

// Registry lists the externally configured DeceptionAlertSink objects and
// resolves their referenced credentials. Nothing is cached: sinks are read
// fresh on every pipeline run so configuration changes take effect without
// a restart.
type Registry struct {
	dynamicClient dynamic.Interface
	client        kubernetes.Interface
	namespace     string
	logger        *zap.Logger
}

// NewRegistry creates a Registry reading sink objects and Secrets from the
// given namespace.
func NewRegistry(dynamicClient dynamic.Interface, client kubernetes.Interface, namespace string, logger *zap.Logger) *Registry {
	return &Registry{
		dynamicClient: dynamicClient,
		client:        client,
		namespace:     namespace,
		logger:        logger.Named("sinks"),
	}
}

// List returns all resolvable sinks. Individually malformed sink objects are
// skipped with a warning; only an unreadable sink list is an error.
func (r *Registry) List(ctx context.Context) ([]Sink, error) {
	objs, err := r.dynamicClient.Resource(v1alpha1.DeceptionAlertSinkGVR).
		Namespace(r.namespace).
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list alert sinks in %s: %w", r.namespace, err)
	}

	sinks := make([]Sink, 0, len(objs.Items))
	for i := range objs.Items {
		obj := &objs.Items[i]
		dt, err := r.resolveDynatrace(ctx, obj)
		if err != nil {
			r.logger.Warn("Skipping unresolvable alert sink",
				zap.String("sink", obj.GetName()),
				zap.Error(err),
			)
			continue
		}
		sinks = append(sinks, Sink{Name: obj.GetName(), Dynatrace: dt})
	}

	return sinks, nil
}

// resolveDynatrace decodes the sink's Dynatrace spec and pulls the
// credentials out of the referenced Secret.
func (r *Registry) resolveDynatrace(ctx context.Context, obj *unstructured.Unstructured) (*DynatraceSink, error) {
	specMap := util.SafeNestedMap(obj.Object, "spec", "dynatrace")
	if specMap == nil {
		return nil, fmt.Errorf("no supported backend configured")
	}

	var spec v1alpha1.DynatraceSinkSpec
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(specMap, &spec); err != nil {
		return nil, fmt.Errorf("decode dynatrace spec: %w", err)
	}
	if spec.SecretName == "" {
		return nil, fmt.Errorf("dynatrace spec has no secretName")
	}

	severity := types.SeverityHigh
	if spec.Severity != "" {
		parsed, ok := types.ParseSeverity(spec.Severity)
		if !ok {
			return nil, fmt.Errorf("invalid severity %q", spec.Severity)
		}
		severity = parsed
	}

	secret, err := r.client.CoreV1().Secrets(r.namespace).Get(ctx, spec.SecretName, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("read credential secret %q: %w", spec.SecretName, err)
	}

	apiURL := string(secret.Data[secretKeyAPIURL])
	apiToken := string(secret.Data[secretKeyAPIToken])
	if apiURL == "" || apiToken == "" {
		return nil, fmt.Errorf("secret %q is missing %s or %s", spec.SecretName, secretKeyAPIURL, secretKeyAPIToken)
	}

	return &DynatraceSink{
		APIURL:   apiURL,
		APIToken: apiToken,
		Severity: severity,
	}, nil
}
