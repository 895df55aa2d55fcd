package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/patrickpichler/koney/internal/types"
)

// Dispatcher fans one alert out to every resolved sink, isolating failures
// per sink and per alert.
type Dispatcher struct {
	registry  *Registry
	dynatrace *DynatraceSender
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher delivering through the given sender.
func NewDispatcher(registry *Registry, dynatrace *DynatraceSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		dynatrace: dynatrace,
		logger:    logger.Named("dispatcher"),
	}
}

// ResolveSinks reads the sink configuration for one pipeline run. An
// unreadable sink list degrades to zero sinks: alerts are still processed
// and logged locally, just not delivered.
func (d *Dispatcher) ResolveSinks(ctx context.Context) []Sink {
	sinks, err := d.registry.List(ctx)
	if err != nil {
		d.logger.Error("Failed to read alert sink configuration, continuing without sinks", zap.Error(err))
		return nil
	}
	return sinks
}

// Deliver attempts delivery of the alert to every sink. A failure on one
// sink is logged and counted, then delivery continues with the next.
func (d *Dispatcher) Deliver(ctx context.Context, alert types.DeceptionAlert, sinks []Sink) {
	for _, s := range sinks {
		if s.Dynatrace == nil {
			continue
		}

		if err := d.dynatrace.Send(ctx, alert, *s.Dynatrace); err != nil {
			deliverTotal.WithLabelValues(s.Name, "failure").Inc()
			d.logger.Error("Failed to deliver alert to sink",
				zap.String("sink", s.Name),
				zap.Error(err),
			)
			continue
		}
		deliverTotal.WithLabelValues(s.Name, "success").Inc()
	}
}
