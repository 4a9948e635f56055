package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tnqbao/gau-pet-photo-service/service"

type photoMetrics struct {
	cacheHits          metric.Int64Counter
	cacheMisses        metric.Int64Counter
	invalidationErrors metric.Int64Counter
	uploads            metric.Int64Counter
	deletes            metric.Int64Counter
}

func newPhotoMetrics() *photoMetrics {
	meter := otel.Meter(instrumentationName)
	return &photoMetrics{
		cacheHits:          counter(meter, "photo.cache.hits", "Photo lookups served from cache"),
		cacheMisses:        counter(meter, "photo.cache.misses", "Photo lookups that reached the metadata store"),
		invalidationErrors: counter(meter, "photo.cache.invalidation_errors", "Failed cache invalidation calls"),
		uploads:            counter(meter, "photo.uploads", "Photo uploads by outcome"),
		deletes:            counter(meter, "photo.deletes", "Photo deletions by outcome"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (m *photoMetrics) add(ctx context.Context, c metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	c.Add(ctx, n, metric.WithAttributes(attrs...))
}

func outcomeAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
