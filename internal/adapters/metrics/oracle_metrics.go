package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const oracleSubsystem = "oracle"

// OracleMetricsCollector records calls made to the oracle service
type OracleMetricsCollector struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewOracleMetricsCollector creates the oracle collectors
func NewOracleMetricsCollector() *OracleMetricsCollector {
	return &OracleMetricsCollector{
		// Calls by RPC method and gRPC status code
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: oracleSubsystem,
				Name:      "calls_total",
				Help:      "Total number of oracle calls by method and status code",
			},
			[]string{"method", "code"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: oracleSubsystem,
				Name:      "call_duration_seconds",
				Help:      "Oracle call latency distribution",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"method"},
		),
	}
}

// Register registers all oracle metrics with the Prometheus registry
func (c *OracleMetricsCollector) Register(registry prometheus.Registerer) error {
	return registerAll(registry, c.callsTotal, c.callDuration)
}

// RecordCall records one finished oracle call
func (c *OracleMetricsCollector) RecordCall(method string, duration time.Duration, err error) {
	c.callsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
	c.callDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// UnaryClientInterceptor times every unary call on the oracle connection.
// A nil collector passes calls through untouched.
func (c *OracleMetricsCollector) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if c == nil {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		c.RecordCall(shortMethod(method), time.Since(start), err)
		return err
	}
}

// shortMethod strips the service prefix:
// "/portsched.oracle.v1.Oracle/Guess" becomes "Guess"
func shortMethod(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}
