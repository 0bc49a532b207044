package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ctrwatch/internal/infrastructure"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelMiddleware traces every request and records the HTTP instruments.
type OTelMiddleware struct {
	tracer          trace.Tracer
	meter           metric.Meter
	businessMetrics *infrastructure.BusinessMetrics
	logger          *slog.Logger
}

// NewOTelMiddleware builds the middleware against the initialized providers.
func NewOTelMiddleware(providers *infrastructure.OTelProviders) (*OTelMiddleware, error) {
	businessMetrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("creating business metrics: %w", err)
	}

	// Tracing may be disabled; the global provider yields a noop tracer.
	tracer := providers.Tracer
	if tracer == nil {
		tracer = otel.Tracer("ctrwatch")
	}

	return &OTelMiddleware{
		tracer:          tracer,
		meter:           providers.Meter,
		businessMetrics: businessMetrics,
		logger:          providers.Logger,
	}, nil
}

// BusinessMetrics exposes the metric instruments created for this middleware
// so the rest of the application can record against the same meter.
func (m *OTelMiddleware) BusinessMetrics() *infrastructure.BusinessMetrics {
	return m.businessMetrics
}

// Handler opens a server span per request, counts it on the HTTP
// instruments, and emits one completion log line carrying the trace id.
func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := m.tracer.Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(r.URL.Path),
				semconv.URLSchemeKey.String(r.URL.Scheme),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
				semconv.HTTPRequestBodySizeKey.Int64(r.ContentLength),
				semconv.ClientAddressKey.String(GetRealIP(r)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		ctx = infrastructure.WithTraceID(ctx, traceID)
		r = r.WithContext(ctx)

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		m.businessMetrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.businessMetrics.HTTPActiveRequests.Add(ctx, -1)

		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		m.finish(ctx, span, r, ww, traceID, duration)
	})
}

func (m *OTelMiddleware) finish(ctx context.Context, span trace.Span, r *http.Request, ww *responseWriter, traceID string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", r.Method),
		attribute.String("route", getRoutePattern(r)),
		attribute.Int("status_code", ww.statusCode),
	)
	m.businessMetrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.businessMetrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)

	span.SetAttributes(
		semconv.HTTPResponseStatusCodeKey.Int(ww.statusCode),
		semconv.HTTPResponseBodySizeKey.Int64(ww.bytesWritten),
		attribute.Float64("http.request.duration", duration.Seconds()),
	)
	if ww.statusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(ww.statusCode))
	}

	m.logger.InfoContext(ctx, "HTTP request completed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("route", getRoutePattern(r)),
		slog.Int("status_code", ww.statusCode),
		slog.Duration("duration", duration),
		slog.String("user_agent", r.UserAgent()),
		slog.String("remote_addr", GetRealIP(r)),
		slog.Int64("bytes_written", ww.bytesWritten),
		slog.String("trace_id", traceID),
	)
}

// responseWriter captures status and size for the span and instruments.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// getRoutePattern prefers the chi route pattern over the raw path so metric
// cardinality stays bounded.
func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// TraceMiddleware opens a named span around a single route. Used for the
// workbook download, which bypasses the JSON render path.
func TraceMiddleware(operationName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracer := otel.Tracer("ctrwatch")
			ctx, span := tracer.Start(r.Context(), operationName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(r.URL.Path),
				),
			)
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BusinessMetricsMiddleware stores the metric instruments on the request
// context for handlers that record domain counters directly.
func BusinessMetricsMiddleware(businessMetrics *infrastructure.BusinessMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), "business_metrics", businessMetrics)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetBusinessMetricsFromContext returns the instruments stored by
// BusinessMetricsMiddleware, or nil outside a request.
func GetBusinessMetricsFromContext(ctx context.Context) *infrastructure.BusinessMetrics {
	if metrics, ok := ctx.Value("business_metrics").(*infrastructure.BusinessMetrics); ok {
		return metrics
	}
	return nil
}

// PipelineTraceHandler wraps a handler that triggers a pipeline run with a
// dedicated span, so refresh and export requests are traceable end to end.
func PipelineTraceHandler(operation string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("ctrwatch.pipeline")
		ctx, span := tracer.Start(r.Context(), fmt.Sprintf("pipeline.%s", operation),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("pipeline.operation", operation),
			),
		)
		defer span.End()

		handler(w, r.WithContext(ctx))
	}
}

// GetRealIP resolves the client address, preferring forwarding headers.
func GetRealIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
