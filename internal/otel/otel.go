// Package otel sets up tracing and metrics for tmux-runner.
//
// With an OTLP endpoint (otel_endpoint or OTEL_EXPORTER_OTLP_ENDPOINT) spans
// and counters are exported over HTTP. Without one, the returned Telemetry
// still hands out a tracer and counters; they record nothing.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "tmux-runner"

// defaultExportInterval is how often counters are pushed.
const defaultExportInterval = 15 * time.Second

// Version is set by the caller (from the linker-injected cmd.Version).
// Defaults to "dev" if not set.
var Version = "dev"

// OTELConfig holds the configuration needed by the OTEL init.
type OTELConfig struct {
	Endpoint string // OTLP base URL, e.g. "http://localhost:4318"
	Headers  string // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"
	// ExportInterval overrides the metric push interval; 0 uses 15s.
	ExportInterval time.Duration
}

// Telemetry is what the launcher records through: Tracer goes to the runner,
// Metrics to every component that counts something.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	Tracer  trace.Tracer
	Metrics *Metrics
}

// endpoint is an OTLP base URL split the way the HTTP exporters want it:
// host:port, a path prefix for the /v1/<signal> suffixes, and the scheme.
type endpoint struct {
	host     string
	basePath string
	insecure bool
}

func parseEndpoint(raw string) (endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, fmt.Errorf("otel: invalid endpoint URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return endpoint{}, fmt.Errorf("otel: endpoint %q has no host", raw)
	}
	return endpoint{
		host:     u.Host,
		basePath: strings.TrimRight(u.Path, "/"),
		insecure: u.Scheme == "http",
	}, nil
}

// parseHeaders reads the OTEL_EXPORTER_OTLP_HEADERS format: "k=v,k2=v2".
// Pairs without a key or without "=" are ignored.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(val)
	}
	return headers
}

func newTracerProvider(ctx context.Context, ep endpoint, headers map[string]string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(ep.host),
		otlptracehttp.WithURLPath(ep.basePath + "/v1/traces"),
	}
	if ep.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, ep endpoint, headers map[string]string, res *resource.Resource, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(ep.host),
		otlpmetrichttp.WithURLPath(ep.basePath + "/v1/metrics"),
	}
	if ep.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(headers))
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	), nil
}

// Init builds the tracer and counters. Exporters are registered globally only
// when cfg.Endpoint is set.
func Init(ctx context.Context, cfg OTELConfig) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Endpoint != "" {
		ep, err := parseEndpoint(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(Version),
			),
			resource.WithHost(),
		)
		if err != nil {
			return nil, fmt.Errorf("otel resource: %w", err)
		}

		interval := cfg.ExportInterval
		if interval <= 0 {
			interval = defaultExportInterval
		}
		headers := parseHeaders(cfg.Headers)

		if t.tp, err = newTracerProvider(ctx, ep, headers, res); err != nil {
			return nil, err
		}
		if t.mp, err = newMeterProvider(ctx, ep, headers, res, interval); err != nil {
			_ = t.tp.Shutdown(ctx)
			return nil, err
		}
		otel.SetTracerProvider(t.tp)
		otel.SetMeterProvider(t.mp)
	}

	t.Tracer = otel.Tracer(serviceName)
	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	t.Metrics = metrics
	return t, nil
}

// Shutdown flushes pending spans and counters. A nil Telemetry is a no-op.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
