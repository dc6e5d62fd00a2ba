package rotatingfile

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golift.io/rotatingfile/compressor"
)

const instrumentationName = "golift.io/rotatingfile"

// Metric names.
const (
	MetricRotations    = "rotatingfile.rotations"
	MetricWriteErrors  = "rotatingfile.write.errors"
	MetricBytesWritten = "rotatingfile.bytes.written"
	MetricCompressions = "rotatingfile.compressions"
)

// Rotation triggers, recorded on the rotations counter.
const (
	triggerSize     = "size"
	triggerInterval = "interval"
	triggerManual   = "manual"
)

type metrics struct {
	rotations    metric.Int64Counter
	writeErrors  metric.Int64Counter
	bytesWritten metric.Int64Counter
	compressions metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	var (
		meter = provider.Meter(instrumentationName)
		m     = &metrics{}
		err   error
	)

	if m.rotations, err = meter.Int64Counter(MetricRotations,
		metric.WithDescription("Number of file rotations."),
		metric.WithUnit("{rotation}")); err != nil {
		return nil, fmt.Errorf("creating rotations counter: %w", err)
	}

	if m.writeErrors, err = meter.Int64Counter(MetricWriteErrors,
		metric.WithDescription("Number of lines that failed to write."),
		metric.WithUnit("{line}")); err != nil {
		return nil, fmt.Errorf("creating write errors counter: %w", err)
	}

	if m.bytesWritten, err = meter.Int64Counter(MetricBytesWritten,
		metric.WithDescription("Bytes written to log files."),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("creating bytes counter: %w", err)
	}

	if m.compressions, err = meter.Int64Counter(MetricCompressions,
		metric.WithDescription("Number of finished background compressions."),
		metric.WithUnit("{file}")); err != nil {
		return nil, fmt.Errorf("creating compressions counter: %w", err)
	}

	return m, nil
}

func (m *metrics) rotated(trigger string) {
	m.rotations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

func (m *metrics) wrote(size int) {
	m.bytesWritten.Add(context.Background(), int64(size))
}

func (m *metrics) writeFailed() {
	m.writeErrors.Add(context.Background(), 1)
}

func (m *metrics) compressed(report *compressor.Report) {
	result := "ok"
	if report.Error != nil {
		result = "error"
	}

	m.compressions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", string(report.Kind)),
		attribute.String("result", result),
	))
}
