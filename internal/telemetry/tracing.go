// Package telemetry wires OpenTelemetry tracing for the storefront client.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module
const InstrumentationName = "github.com/pyropark/storefront"

// Config drives how tracing is initialized.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is an OTLP/HTTP collector (host:port or URL). Empty keeps
	// spans in-process only.
	Endpoint string
	Insecure bool
	// Exporter overrides Endpoint; used by tests.
	Exporter sdktrace.SpanExporter
}

// Provider owns the tracer provider and its shutdown.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup builds a tracer provider and installs it as the global one.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := buildResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	exporter := cfg.Exporter
	if exporter == nil && strings.TrimSpace(cfg.Endpoint) != "" {
		exporter, err = newOTLPExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}, nil
}

// Tracer returns the module tracer
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tp == nil {
		return otel.Tracer(InstrumentationName)
	}
	return p.tp.Tracer(InstrumentationName)
}

// Flush exports buffered spans without stopping the provider.
func (p *Provider) Flush(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.ForceFlush(ctx)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// EndSpan finalizes span state while standardizing error recording.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "ok")
	}
	span.End()
}

func newOTLPExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	var opts []otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	return exp, nil
}

func buildResource(cfg Config) (*resource.Resource, error) {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "storefront"
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", service)}
	if version := strings.TrimSpace(cfg.ServiceVersion); version != "" {
		attrs = append(attrs, attribute.String("service.version", version))
	}
	custom := resource.NewSchemaless(attrs...)
	res, err := resource.Merge(resource.Default(), custom)
	if err != nil && !errors.Is(err, resource.ErrSchemaURLConflict) {
		return nil, err
	}
	return res, nil
}
