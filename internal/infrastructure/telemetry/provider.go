// Package telemetry provides OpenTelemetry and Pyroscope integration:
// traces, metrics, logs, and continuous profiling behind one provider.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProviderConfig holds configuration for every telemetry signal. The
// collector endpoint and service name are shared; each signal keeps its
// own enable flag so a deployment can ship traces without metrics or
// run the profiler alone.
type ProviderConfig struct {
	ServiceName       string
	CollectorEndpoint string // OTLP gRPC endpoint, e.g. "localhost:4317"
	Insecure          bool   // Non-TLS collector connection (development only)

	TracesEnabled bool
	SamplingRatio float64 // 0.0-1.0, 1.0 = every trace

	MetricsEnabled bool
	ExportInterval time.Duration // Metrics export period, default 60s

	LogsEnabled bool

	ProfilerEnabled       bool
	ProfilerServerAddress string // Pyroscope server, e.g. "http://pyroscope:4040"
}

// Provider bundles the tracer, meter, log, and profiler lifecycles so
// the entry point initializes and shuts down telemetry as one unit.
// Disabled signals become no-ops; a Provider built from an all-disabled
// config is safe to use everywhere.
type Provider struct {
	tracer   *TracerProvider
	meter    *MeterProvider
	logs     *LoggerProvider
	profiler *Profiler
	logger   *zap.Logger
}

// NewProvider initializes every enabled telemetry signal. The profiler
// starts first because span profiles attach to a running Pyroscope
// session. On failure the signals that already started are shut down
// before the error is returned.
func NewProvider(ctx context.Context, cfg ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Provider{logger: logger}

	profiler, err := NewProfiler(ProfilerConfig{
		Enabled:             cfg.ProfilerEnabled,
		ServerAddress:       cfg.ProfilerServerAddress,
		ApplicationName:     cfg.ServiceName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, logger)
	if err != nil {
		return nil, err
	}
	p.profiler = profiler

	tracer, err := NewTracerProvider(ctx, TracesConfig{
		Enabled:           cfg.TracesEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		p.shutdownStarted(ctx)
		return nil, err
	}
	p.tracer = tracer

	if p.profiler.IsEnabled() && p.tracer.IsEnabled() {
		if err := p.tracer.EnableSpanProfiles(); err != nil {
			logger.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	meter, err := NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.ExportInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		p.shutdownStarted(ctx)
		return nil, err
	}
	p.meter = meter

	logs, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		p.shutdownStarted(ctx)
		return nil, err
	}
	p.logs = logs

	return p, nil
}

// Shutdown flushes and stops every signal in reverse start order.
// Errors are collected rather than short-circuiting so one stuck
// exporter does not leave the others unflushed.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error

	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.meter != nil {
		if err := p.meter.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.tracer != nil {
		if err := p.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.profiler != nil {
		if err := p.profiler.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// shutdownStarted tears down whatever NewProvider managed to start
// before an initialization error.
func (p *Provider) shutdownStarted(ctx context.Context) {
	if err := p.Shutdown(ctx); err != nil {
		p.logger.Warn("Partial telemetry shutdown failed", zap.Error(err))
	}
}

// TracerProvider returns the trace lifecycle wrapper. Never nil on a
// Provider built by NewProvider.
func (p *Provider) TracerProvider() *TracerProvider {
	return p.tracer
}

// MeterProvider returns the metrics lifecycle wrapper.
func (p *Provider) MeterProvider() *MeterProvider {
	return p.meter
}

// LoggerProvider returns the OTEL logs lifecycle wrapper.
func (p *Provider) LoggerProvider() *LoggerProvider {
	return p.logs
}

// Profiler returns the Pyroscope profiler wrapper.
func (p *Provider) Profiler() *Profiler {
	return p.profiler
}

// BridgeLogger tees the given logger into the OTEL logs exporter. When
// logs are disabled the original logger is returned unchanged, so the
// call is safe unconditionally.
func (p *Provider) BridgeLogger(base *zap.Logger, level zapcore.Level) *zap.Logger {
	if p.logs == nil || !p.logs.IsEnabled() {
		return base
	}
	otelCore := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    p.logs.GetConfig().ServiceName,
		LoggerProvider: p.logs,
		Level:          level,
	})
	return NewBridgedLogger(base.Core(), otelCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// newResource builds the OTEL resource shared by the trace, metric,
// and log exporters.
func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
}
