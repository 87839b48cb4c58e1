package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "exadapter"

var (
	hostname, _ = os.Hostname()
	registry    = prometheus.NewRegistry()
)

func GetCounter(metricName, help string, labelNames []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   Namespace,
		Name:        metricName,
		Help:        help,
		ConstLabels: constLabels(),
	}, labelNames)

	return register(counter).(*prometheus.CounterVec)
}

func GetGauge(metricName, help string, labelNames []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   Namespace,
		Name:        metricName,
		Help:        help,
		ConstLabels: constLabels(),
	}, labelNames)

	return register(gauge).(*prometheus.GaugeVec)
}

// GetHistogram buckets are expressed in milliseconds.
func GetHistogram(metricName, help string, labelNames []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   Namespace,
		Name:        metricName,
		Help:        help,
		ConstLabels: constLabels(),
		Buckets:     []float64{10, 25, 50, 100, 200, 300, 400, 500, 750, 1000, 2000, 5000, 10000},
	}, labelNames)

	return register(histogram).(*prometheus.HistogramVec)
}

func constLabels() prometheus.Labels {
	return prometheus.Labels{
		"hostname": hostname,
	}
}

// register returns the collector already registered under the same name, so
// packages can ask for a metric more than once.
func register(c prometheus.Collector) prometheus.Collector {
	if err := registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}

	return c
}

func Registry() *prometheus.Registry {
	return registry
}

func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// Serve exposes /metrics on port until ctx is done.
func Serve(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
