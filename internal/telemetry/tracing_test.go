package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	p, err := Setup(context.Background(), Config{ServiceName: "storefront-test", Exporter: exporter})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, span := p.Tracer().Start(context.Background(), "ok-span")
	EndSpan(span, nil)
	_, span = p.Tracer().Start(context.Background(), "failed-span")
	EndSpan(span, errors.New("boom"))

	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Fatalf("expected ok status, got %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "boom" {
		t.Fatalf("expected error status, got %+v", spans[1].Status)
	}
	if got := spans[0].Resource.Attributes(); len(got) == 0 {
		t.Fatalf("expected resource attributes")
	}
}

func TestBuildResourceDefaultsServiceName(t *testing.T) {
	res, err := buildResource(Config{ServiceVersion: "v1.2.3"})
	if err != nil {
		t.Fatalf("build resource: %v", err)
	}
	var name, version string
	for _, kv := range res.Attributes() {
		switch kv.Key {
		case "service.name":
			name = kv.Value.AsString()
		case "service.version":
			version = kv.Value.AsString()
		}
	}
	if name != "storefront" || version != "v1.2.3" {
		t.Fatalf("unexpected resource: name=%q version=%q", name, version)
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	if p.Tracer() == nil {
		t.Fatal("expected fallback tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	EndSpan(nil, nil)
}
