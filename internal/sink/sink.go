package sink

import (
	"github.com/patrickpichler/koney/internal/types"
)

// Sink is one resolved delivery target with credentials attached.
type Sink struct {
	// Name is the DeceptionAlertSink object name, used in logs and metrics.
	Name string

	// Dynatrace is set for Dynatrace-backed sinks.
	Dynatrace *DynatraceSink
}

// DynatraceSink holds the resolved connection parameters for one Dynatrace
// environment.
type DynatraceSink struct {
	APIURL   string
	APIToken string
	Severity types.Severity
}
