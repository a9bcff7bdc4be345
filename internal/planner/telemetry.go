package planner

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jonathan/fitplan/internal/planner"

type instruments struct {
	generations         metric.Int64Counter
	failures            metric.Int64Counter
	persistenceFailures metric.Int64Counter
	lookupFailures      metric.Int64Counter
	duration            metric.Float64Histogram
}

// newInstruments registers the planner's metrics. Registration errors leave a
// no-op instrument in place.
func newInstruments(meter metric.Meter) *instruments {
	generations, _ := meter.Int64Counter("fitplan.plan.generations",
		metric.WithDescription("Plan generations that returned a plan"))
	failures, _ := meter.Int64Counter("fitplan.plan.failures",
		metric.WithDescription("Plan generations that failed, by error kind"))
	persistenceFailures, _ := meter.Int64Counter("fitplan.plan.persistence_failures",
		metric.WithDescription("Generated plans that could not be saved"))
	lookupFailures, _ := meter.Int64Counter("fitplan.catalog.lookup_failures",
		metric.WithDescription("Catalog lookups that failed during enrichment"))
	duration, _ := meter.Float64Histogram("fitplan.plan.generation.duration",
		metric.WithDescription("End-to-end plan generation time"),
		metric.WithUnit("s"))
	return &instruments{
		generations:         generations,
		failures:            failures,
		persistenceFailures: persistenceFailures,
		lookupFailures:      lookupFailures,
		duration:            duration,
	}
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func defaultMeter() metric.Meter {
	return otel.Meter(instrumentationName)
}
