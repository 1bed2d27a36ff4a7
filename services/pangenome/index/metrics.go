// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("pgtools.index")
	meter  = otel.Meter("pgtools.index")
)

var (
	opLatency  metric.Float64Histogram
	opTotal    metric.Int64Counter
	indexBytes metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		opLatency, err = meter.Float64Histogram(
			"pgtools_index_operation_duration_seconds",
			metric.WithDescription("Duration of index build, save, and load operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		opTotal, err = meter.Int64Counter(
			"pgtools_index_operations_total",
			metric.WithDescription("Total index operations by kind and outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		indexBytes, err = meter.Int64Histogram(
			"pgtools_index_file_bytes",
			metric.WithDescription("Size of index files written or read"),
			metric.WithUnit("By"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startOperationSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func recordOperationMetrics(ctx context.Context, op string, d time.Duration, err error) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.Bool("success", err == nil),
	)
	opLatency.Record(ctx, d.Seconds(), attrs)
	opTotal.Add(ctx, 1, attrs)
}

func recordIndexBytes(ctx context.Context, op string, n int64) {
	if initMetrics() != nil {
		return
	}
	indexBytes.Record(ctx, n, metric.WithAttributes(attribute.String("operation", op)))
}
