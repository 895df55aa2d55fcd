package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickpichler/koney/internal/alert"
	"github.com/patrickpichler/koney/internal/fingerprint"
	"github.com/patrickpichler/koney/internal/sink"
	"github.com/patrickpichler/koney/internal/tetragon"
	"github.com/patrickpichler/koney/internal/types"
)

// EventReader yields new events grouped by tracing-policy name.
type EventReader interface {
	ReadEvents(ctx context.Context) (map[string][]tetragon.Event, error)
}

// Pipeline executes one ingestion-and-dispatch run per debounced trigger.
type Pipeline struct {
	reader     EventReader
	mapper     *alert.Mapper
	dispatcher *sink.Dispatcher
	logger     *zap.Logger

	// alertLog receives one JSON line per forwarded alert, for operator
	// visibility independent of sink delivery. Defaults to stdout.
	alertLog io.Writer
}

// New creates a Pipeline writing the local alert log to stdout.
func New(reader EventReader, mapper *alert.Mapper, dispatcher *sink.Dispatcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		reader:     reader,
		mapper:     mapper,
		dispatcher: dispatcher,
		logger:     logger.Named("pipeline"),
		alertLog:   os.Stdout,
	}
}

// SetAlertLog redirects the local alert log, e.g. to a buffer in tests.
func (p *Pipeline) SetAlertLog(w io.Writer) {
	p.alertLog = w
}

// Run performs one pipeline execution: read, map, filter, log, dispatch.
// No failure inside a run is fatal; partial results are always forwarded.
func (p *Pipeline) Run(ctx context.Context) {
	logger := p.logger.With(zap.String("run_id", uuid.NewString()))
	runsTotal.Inc()

	eventsPerPolicy, err := p.reader.ReadEvents(ctx)
	if err != nil {
		logger.Error("Failed to read tracing events", zap.Error(err))
		return
	}
	if len(eventsPerPolicy) == 0 {
		logger.Debug("No new trap events")
		return
	}

	// Sinks are resolved fresh per run; an unreadable configuration
	// degrades to local logging only.
	sinks := p.dispatcher.ResolveSinks(ctx)

	for policyName, events := range eventsPerPolicy {
		logger.Debug("Transforming events",
			zap.String("tracing_policy", policyName),
			zap.Int("count", len(events)),
		)

		for _, event := range events {
			a := p.mapper.Map(ctx, event)

			if fingerprint.IsSelfTest(&a) {
				alertsTotal.WithLabelValues("self_test").Inc()
				logger.Debug("Suppressing self-test alert",
					zap.String("tracing_policy", policyName),
				)
				continue
			}

			p.logAlert(logger, a)
			alertsTotal.WithLabelValues("forwarded").Inc()

			p.dispatcher.Deliver(ctx, a, sinks)
		}
	}
}

// logAlert writes one alert as a single JSON line to the local alert log.
func (p *Pipeline) logAlert(logger *zap.Logger, a types.DeceptionAlert) {
	data, err := json.Marshal(a)
	if err != nil {
		logger.Error("Failed to serialize alert", zap.Error(err))
		return
	}
	fmt.Fprintln(p.alertLog, string(data))
}
