package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TelemetryConfig はトレーシング初期化の設定。
type TelemetryConfig struct {
	ServiceName   string
	Version       string
	Tier          string
	Environment   string
	TraceEndpoint string
	SampleRate    float64
}

// Provider は TracerProvider を保持し、シャットダウンを管理する。
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
}

// InitTelemetry は OpenTelemetry TracerProvider を初期化する。
// TraceEndpoint が空の場合はグローバルの no-op プロバイダーのままにする。
func InitTelemetry(ctx context.Context, cfg TelemetryConfig) (*Provider, error) {
	if cfg.TraceEndpoint == "" {
		return &Provider{}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.TraceEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.Version),
			attribute.String("service.namespace", cfg.Tier),
			attribute.String("deployment.environment", cfg.Environment),
		)),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tracerProvider: tp}, nil
}

// Enabled はトレースのエクスポートが有効かを返す。
func (p *Provider) Enabled() bool {
	return p.tracerProvider != nil
}

// Shutdown は TracerProvider をシャットダウンする。
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		return p.tracerProvider.Shutdown(ctx)
	}
	return nil
}
