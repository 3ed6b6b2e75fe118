package monitoring

import (
	"context"
	"net/http"
	"sync"
	"time"

	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	meterProvider        *sdkmetric.MeterProvider
	requestCounter       metric.Int64Counter
	latencyHist          metric.Float64Histogram
	externalCallCounter  metric.Int64Counter
	externalCallLatency  metric.Float64Histogram
	externalCallErrCount metric.Int64Counter
	businessEventCounter metric.Int64Counter
	dbLatencyHist        metric.Float64Histogram
	initOnce             sync.Once
	httpHandler          http.Handler
)

// Config captures the minimal setup parameters.
type Config struct {
	ServiceName   string
	ResourceAttrs map[string]string
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter.
// Returns a shutdown function to flush the meter provider.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "unknown-service"
	}

	var attrs []attribute.KeyValue
	attrs = append(attrs, semconv.ServiceName(cfg.ServiceName))
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}

	var initErr error

	initOnce.Do(func() {
		exp, err := prometheus.New(prometheus.WithoutUnits())
		if err != nil {
			initErr = err
			return
		}

		res, err := resource.Merge(
			resource.Default(),
			resource.NewSchemaless(attrs...),
		)
		if err != nil {
			initErr = err
			return
		}

		meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exp),
			sdkmetric.WithResource(res),
		)

		otel.SetMeterProvider(meterProvider)
		httpHandler = promhttp.Handler()

		meter := meterProvider.Meter(cfg.ServiceName)
		requestCounter, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests processed"),
		)
		if err != nil {
			initErr = err
			return
		}

		latencyHist, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("HTTP request duration in seconds"),
		)
		if err != nil {
			initErr = err
			return
		}

		externalCallCounter, err = meter.Int64Counter(
			"external_calls_total",
			metric.WithDescription("Total number of external calls"),
		)
		if err != nil {
			initErr = err
			return
		}

		externalCallLatency, err = meter.Float64Histogram(
			"external_call_duration_seconds",
			metric.WithDescription("Duration of external calls in seconds"),
		)
		if err != nil {
			initErr = err
			return
		}

		externalCallErrCount, err = meter.Int64Counter(
			"external_call_errors_total",
			metric.WithDescription("Total number of failed external calls"),
		)
		if err != nil {
			initErr = err
			return
		}

		businessEventCounter, err = meter.Int64Counter(
			"business_events_total",
			metric.WithDescription("Domain events processed by the service"),
		)
		if err != nil {
			initErr = err
			return
		}

		dbLatencyHist, err = meter.Float64Histogram(
			"db_operation_duration_seconds",
			metric.WithDescription("Duration of database operations in seconds"),
		)
		if err != nil {
			initErr = err
			return
		}
	})

	if initErr != nil {
		return nil, initErr
	}

	shutdown := func(ctx context.Context) error {
		if meterProvider == nil {
			return nil
		}
		return meterProvider.Shutdown(ctx)
	}
	return shutdown, nil
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	if httpHandler == nil {
		return http.NotFoundHandler()
	}
	return httpHandler
}

// HTTPMiddleware records request counts and latency per route and status.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if requestCounter == nil {
			return
		}
		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("path", r.URL.Path),
			attribute.Int("status", rec.status),
		)
		requestCounter.Add(r.Context(), 1, attrs)
		latencyHist.Record(r.Context(), time.Since(start).Seconds(), attrs)
	})
}

// RecordExternalCall records one outbound call against a named target.
func RecordExternalCall(ctx context.Context, target string, duration time.Duration, err error) {
	if externalCallCounter == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("target", target))
	externalCallCounter.Add(ctx, 1, attrs)
	externalCallLatency.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		externalCallErrCount.Add(ctx, 1, attrs)
	}
}

// RecordBusinessEvent counts a domain event by name.
func RecordBusinessEvent(ctx context.Context, name string) {
	if businessEventCounter == nil {
		return
	}
	businessEventCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))
}

// RecordDBLatency records the duration of one database operation.
func RecordDBLatency(ctx context.Context, operation string, duration time.Duration) {
	if dbLatencyHist == nil {
		return
	}
	dbLatencyHist.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
