// Package observe provides the OpenTelemetry metrics recorded by signspell
// and the HTTP middleware that times API requests.
//
// Metrics are recorded through the OpenTelemetry Metrics API. InitProvider
// installs a Prometheus exporter bridge so they can be scraped from /metrics.
// Tests should use NewMetrics with their own MeterProvider.
package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all signspell metrics.
const meterName = "github.com/ayusman/signspell"

// Metrics holds all metric instruments for the application. The instruments
// handle their own synchronisation.
type Metrics struct {
	// Frames counts processed frames. Attribute hand is "true" when a hand
	// was detected.
	Frames metric.Int64Counter

	// Detections counts frames classified as a symbol, by symbol.
	Detections metric.Int64Counter

	// LettersConfirmed counts confirmed letters by symbol and whether the
	// word changed.
	LettersConfirmed metric.Int64Counter

	// BufferClears counts clear commands.
	BufferClears metric.Int64Counter

	// ClassifyDuration tracks detector plus classifier latency per frame.
	ClassifyDuration metric.Float64Histogram

	// WSClients tracks connected event stream clients.
	WSClients metric.Int64UpDownCounter

	// HTTPRequestDuration tracks API latency by method and path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds sized for per-frame work.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a Metrics struct using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter("signspell.frames",
		metric.WithDescription("Frames processed, by whether a hand was present."),
	); err != nil {
		return nil, err
	}
	if met.Detections, err = m.Int64Counter("signspell.detections",
		metric.WithDescription("Frames classified as a symbol, by symbol."),
	); err != nil {
		return nil, err
	}
	if met.LettersConfirmed, err = m.Int64Counter("signspell.letters.confirmed",
		metric.WithDescription("Letters confirmed by holding, by symbol and whether they were appended."),
	); err != nil {
		return nil, err
	}
	if met.BufferClears, err = m.Int64Counter("signspell.buffer.clears",
		metric.WithDescription("Times the word buffer was cleared."),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("signspell.classify.duration",
		metric.WithDescription("Latency of landmark detection and classification per frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.WSClients, err = m.Int64UpDownCounter("signspell.ws.clients",
		metric.WithDescription("Connected event stream clients."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("signspell.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordFrame records one processed frame.
func (m *Metrics) RecordFrame(ctx context.Context, hand bool, symbol string, took time.Duration) {
	m.Frames.Add(ctx, 1, metric.WithAttributes(attribute.String("hand", strconv.FormatBool(hand))))
	m.ClassifyDuration.Record(ctx, took.Seconds())
	if symbol != "" {
		m.Detections.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", symbol)))
	}
}

// RecordConfirmation records a confirmed letter.
func (m *Metrics) RecordConfirmation(ctx context.Context, symbol string, appended bool) {
	m.LettersConfirmed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.Bool("appended", appended),
		),
	)
}

// RecordClear records a buffer clear.
func (m *Metrics) RecordClear(ctx context.Context) {
	m.BufferClears.Add(ctx, 1)
}
