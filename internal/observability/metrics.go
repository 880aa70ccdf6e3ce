package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the parity system.
type Metrics struct {
	CasesEvaluated      metric.Int64Counter
	EquivalenceFailures metric.Int64Counter
	CaseMaxAbsError     metric.Float64Histogram
	ActivityCalls       metric.Int64Counter
}

// NewMetrics creates the parity metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("parity")

	casesEvaluated, err := meter.Int64Counter("parity.cases.evaluated",
		metric.WithDescription("Number of test cases evaluated per adapter"),
	)
	if err != nil {
		return nil, err
	}

	equivalenceFailures, err := meter.Int64Counter("parity.equivalence.failures",
		metric.WithDescription("Number of suite comparisons that did not pass"),
	)
	if err != nil {
		return nil, err
	}

	caseMaxAbsError, err := meter.Float64Histogram("parity.case.max_absolute_error",
		metric.WithDescription("Per-case maximum absolute error observed"),
	)
	if err != nil {
		return nil, err
	}

	activityCalls, err := meter.Int64Counter("parity.activity.calls",
		metric.WithDescription("Number of activity invocations"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		CasesEvaluated:      casesEvaluated,
		EquivalenceFailures: equivalenceFailures,
		CaseMaxAbsError:     caseMaxAbsError,
		ActivityCalls:       activityCalls,
	}, nil
}

// RecordCasesEvaluated records evaluated cases for one adapter run.
func (m *Metrics) RecordCasesEvaluated(ctx context.Context, adapterID string, count int) {
	m.CasesEvaluated.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("adapter", adapterID)),
	)
}

// RecordComparison records the outcome of one suite comparison.
func (m *Metrics) RecordComparison(ctx context.Context, algorithm string, allPassed bool, results []float64) {
	if !allPassed {
		m.EquivalenceFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("algorithm", algorithm)),
		)
	}
	for _, maxAbs := range results {
		m.CaseMaxAbsError.Record(ctx, maxAbs,
			metric.WithAttributes(attribute.String("algorithm", algorithm)),
		)
	}
}

// RecordActivity records an activity invocation.
func (m *Metrics) RecordActivity(ctx context.Context, name string) {
	m.ActivityCalls.Add(ctx, 1,
		metric.WithAttributes(attribute.String("activity", name)),
	)
}
