package tetragon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/patrickpichler/koney/api/v1alpha1"
	"github.com/patrickpichler/koney/internal/dedup"
)

const (
	// maxLineSize bounds the scanner buffer. Tetragon events with large
	// argument payloads can exceed bufio's 64 KiB default.
	maxLineSize = 1 << 20
)

// subsecondPattern strips the nanosecond digits from the event's time field
// before parsing. Events for the same kernel hit often fire multiple times
// within one second; truncating the timestamp makes those lines textually
// identical so the dedup cache collapses them.
var subsecondPattern = regexp.MustCompile(`("time":"\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})\.\d{9}(Z")`)

// ReaderOptions configures where the Tetragon export logs are found.
type ReaderOptions struct {
	// Namespace is where the Tetragon agent pods run.
	Namespace string
	// PodSelector is the label selector for the agent pods.
	PodSelector string
	// Container is the agent container writing the JSON export stream.
	Container string
	// LookbackSeconds is the trailing log window fetched per read.
	LookbackSeconds int64
}

// DefaultReaderOptions returns the conventional Tetragon deployment layout.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Namespace:       "kube-system",
		PodSelector:     "app.kubernetes.io/name=tetragon",
		Container:       "export-stdout",
		LookbackSeconds: 60,
	}
}

// Reader fetches raw export log lines from the Tetragon agent pods and
// yields decoded events grouped by tracing-policy name.
type Reader struct {
	client kubernetes.Interface
	cache  *dedup.Cache
	logger *zap.Logger
	opts   ReaderOptions
}

// NewReader creates a Reader. The dedup cache is shared across reads so that
// overlapping lookback windows do not re-emit events.
func NewReader(client kubernetes.Interface, cache *dedup.Cache, logger *zap.Logger, opts ReaderOptions) *Reader {
	return &Reader{
		client: client,
		cache:  cache,
		logger: logger.Named("reader"),
		opts:   opts,
	}
}

// ReadEvents tails the export logs of every agent pod for the lookback
// window and returns new, structurally valid events grouped by the
// tracing-policy name that produced them. Returns an empty result when no
// agent pods are found. Unparsable lines are skipped, never fatal.
func (r *Reader) ReadEvents(ctx context.Context) (map[string][]Event, error) {
	pods, err := r.client.CoreV1().Pods(r.opts.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: r.opts.PodSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("list agent pods: %w", err)
	}
	if len(pods.Items) == 0 {
		r.logger.Warn("No Tetragon agent pods found",
			zap.String("namespace", r.opts.Namespace),
			zap.String("selector", r.opts.PodSelector),
		)
		return map[string][]Event{}, nil
	}

	since := r.opts.LookbackSeconds
	grouped := make(map[string][]Event)
	for _, pod := range pods.Items {
		req := r.client.CoreV1().Pods(r.opts.Namespace).GetLogs(pod.Name, &corev1.PodLogOptions{
			Container:    r.opts.Container,
			SinceSeconds: &since,
		})
		stream, err := req.Stream(ctx)
		if err != nil {
			// One unreadable pod must not abort the read.
			r.logger.Warn("Failed to read agent pod logs",
				zap.String("pod", pod.Name),
				zap.Error(err),
			)
			continue
		}
		r.collect(stream, pod.Name, grouped)
		stream.Close()
	}

	return grouped, nil
}

// collect scans one pod's log stream line by line into grouped.
func (r *Reader) collect(stream io.Reader, podName string, grouped map[string][]Event) {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		r.ingestLine(scanner.Text(), grouped)
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("Agent log stream ended early",
			zap.String("pod", podName),
			zap.Error(err),
		)
	}
}

// ingestLine runs the per-line pipeline: substring pre-filter, timestamp
// normalization, dedup, JSON decode, policy re-validation.
func (r *Reader) ingestLine(line string, grouped map[string][]Event) {
	// Cheap pre-filter before touching the regex or the JSON decoder. The
	// prefix may appear in fields populated by unrelated policies, so a
	// match here is only a hint, not an authority decision.
	if !strings.Contains(line, v1alpha1.TracingPolicyPrefix) {
		return
	}

	line = subsecondPattern.ReplaceAllString(line, "$1$2")

	if r.cache.Seen(line) {
		linesTotal.WithLabelValues("duplicate").Inc()
		return
	}

	var event Event
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		linesTotal.WithLabelValues("malformed").Inc()
		r.logger.Debug("Skipping malformed export line", zap.Error(err))
		return
	}

	// The authority boundary: only the policy name resolved from the decoded
	// event counts, not the substring hit above.
	policyName := event.PolicyName()
	if !strings.HasPrefix(policyName, v1alpha1.TracingPolicyPrefix) {
		linesTotal.WithLabelValues("foreign_policy").Inc()
		return
	}

	linesTotal.WithLabelValues("accepted").Inc()
	grouped[policyName] = append(grouped[policyName], event)
}
