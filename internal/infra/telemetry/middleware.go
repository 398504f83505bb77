package telemetry

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// GinMiddleware はリクエストごとにスパンを生成し、RED メトリクスとアクセスログを記録する。
// metrics は nil でもよい。
func GinMiddleware(logger *slog.Logger, metrics *Metrics) gin.HandlerFunc {
	tracer := otel.Tracer("k1s0-http")

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}

		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(duration.Seconds())
		}

		LogWithTrace(ctx, logger).Info("Request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		)
	}
}

// GRPCUnaryServerInterceptor は gRPC Unary RPC のトレーシング・メトリクス・ログを記録する。
func GRPCUnaryServerInterceptor(logger *slog.Logger, metrics *Metrics) grpc.UnaryServerInterceptor {
	tracer := otel.Tracer("k1s0-grpc")

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, span := tracer.Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("rpc.method", info.FullMethod)),
		)
		defer span.End()

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		code := status.Code(err)
		service, method := splitFullMethod(info.FullMethod)
		if metrics != nil {
			metrics.GRPCHandledTotal.WithLabelValues(service, method, code.String()).Inc()
			metrics.GRPCHandlingDuration.WithLabelValues(service, method).Observe(duration.Seconds())
		}

		l := LogWithTrace(ctx, logger)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			l.Warn("gRPC call failed",
				slog.String("method", info.FullMethod),
				slog.String("code", code.String()),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()),
			)
		} else {
			l.Info("gRPC call completed",
				slog.String("method", info.FullMethod),
				slog.Duration("duration", duration),
			)
		}
		return resp, err
	}
}

// splitFullMethod は "/pkg.Service/Method" を service と method に分割する。
func splitFullMethod(fullMethod string) (string, string) {
	name := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "unknown", name
}
