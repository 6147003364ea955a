package otel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		raw  string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"Authorization=Basic abc", map[string]string{"Authorization": "Basic abc"}},
		{" a = 1 , b=2=3 ,=x, novalue", map[string]string{"a": "1", "b": "2=3"}},
	}
	for _, tt := range tests {
		got := parseHeaders(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("parseHeaders(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("parseHeaders(%q)[%q] = %q, want %q", tt.raw, k, got[k], v)
			}
		}
	}
}

func TestInitWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	tel, err := Init(ctx, OTELConfig{})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	if tel.tp != nil || tel.mp != nil {
		t.Error("telemetry without endpoint should not export")
	}
	if tel.Tracer == nil || tel.Metrics == nil {
		t.Fatal("tracer and metrics must be usable without an endpoint")
	}

	_, span := tel.Tracer.Start(ctx, "prepare")
	span.End()
	tel.Metrics.RecordMatch(ctx, true, map[string]int64{"attach": 2})
	tel.Metrics.RecordLaunch(ctx, "new", "st", errors.New("boom"))
	tel.Metrics.RecordRefreshError(ctx, "sessions")
	tel.Metrics.RecordCacheHit(ctx)
	tel.Metrics.RecordCacheMiss(ctx)
}

func TestInitInvalidEndpoint(t *testing.T) {
	if _, err := Init(context.Background(), OTELConfig{Endpoint: "http://[::1"}); err == nil {
		t.Error("expected error for malformed endpoint")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordMatch(ctx, false, map[string]int64{"new": 1})
	m.RecordLaunch(ctx, "attach", "konsole", nil)
	m.RecordRefreshError(ctx, "projects")
	m.RecordCacheHit(ctx)
	m.RecordCacheMiss(ctx)

	var tel *Telemetry
	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("nil Shutdown: %v", err)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw  string
		want endpoint
	}{
		{"http://localhost:4318", endpoint{host: "localhost:4318", insecure: true}},
		{"https://cloud.example.com/api/public/otel/", endpoint{host: "cloud.example.com", basePath: "/api/public/otel"}},
	}
	for _, tt := range tests {
		got, err := parseEndpoint(tt.raw)
		if err != nil {
			t.Errorf("parseEndpoint(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseEndpoint(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}

	if _, err := parseEndpoint("localhost"); err == nil {
		t.Error("expected error for endpoint without host")
	}
}

func TestInitWithEndpoint(t *testing.T) {
	ctx := context.Background()
	tel, err := Init(ctx, OTELConfig{Endpoint: "http://127.0.0.1:1", Headers: "Authorization=Basic abc"})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if tel.tp == nil || tel.mp == nil {
		t.Fatal("endpoint configured: providers should be set up")
	}
	_, span := tel.Tracer.Start(ctx, "launch")
	span.End()

	// Nothing listens on the endpoint; only the shutdown must return.
	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = tel.Shutdown(shutdownCtx)
}
