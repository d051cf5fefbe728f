package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// Observer captures telemetry for backend operations.
type Observer interface {
	RecordStore(duration time.Duration, sizeBytes int, err error)
	RecordDelete(duration time.Duration, err error)
}

// PrometheusObserver exports backend metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	storedBytes prometheus.Counter
}

// NewPrometheusObserver registers store/delete metrics labelled with the backend name.
func NewPrometheusObserver(backend string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"backend": backend}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "portfolio",
			Subsystem:   "storage",
			Name:        "operation_duration_seconds",
			Help:        "Latency of storage backend operations.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "portfolio",
			Subsystem:   "storage",
			Name:        "operation_errors_total",
			Help:        "Count of failed storage backend operations.",
			ConstLabels: labels,
		}, []string{"operation"}),
		storedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "portfolio",
			Subsystem:   "storage",
			Name:        "stored_bytes_total",
			Help:        "Cumulative size of artifacts successfully stored.",
			ConstLabels: labels,
		}),
	}

	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	if o.errors, err = register(reg, o.errors); err != nil {
		return nil, err
	}
	if o.storedBytes, err = register(reg, o.storedBytes); err != nil {
		return nil, err
	}
	return o, nil
}

// register returns the already-registered collector when an identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register storage metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordStore(duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("store").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("store").Inc()
		return
	}
	o.storedBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordDelete(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("delete").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("delete").Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordStore(time.Duration, int, error) {}

func (nopObserver) RecordDelete(time.Duration, error) {}

// instrumented decorates a backend with an Observer.
type instrumented struct {
	next     domain.StorageBackend
	observer Observer
}

// Instrumented wraps next so every Store and Delete is reported to observer.
// A nil observer disables reporting.
func Instrumented(next domain.StorageBackend, observer Observer) domain.StorageBackend {
	if observer == nil {
		observer = nopObserver{}
	}
	return &instrumented{next: next, observer: observer}
}

func (i *instrumented) Store(ctx context.Context, data []byte, opts domain.StoreOptions) (*domain.StoredArtifact, error) {
	start := time.Now()
	artifact, err := i.next.Store(ctx, data, opts)
	i.observer.RecordStore(time.Since(start), len(data), err)
	return artifact, err
}

func (i *instrumented) Delete(ctx context.Context, ref string) error {
	start := time.Now()
	err := i.next.Delete(ctx, ref)
	i.observer.RecordDelete(time.Since(start), err)
	return err
}
