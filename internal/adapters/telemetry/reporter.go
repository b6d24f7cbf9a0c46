package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/relay/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Reporter)(nil)

// Reporter is a span processor that logs when task spans start and finish.
type Reporter struct {
	logger ports.Logger
}

// NewReporter returns a Reporter that writes to logger.
func NewReporter(logger ports.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// OnStart is called when a span starts.
func (r *Reporter) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if !s.SpanContext().IsValid() {
		return
	}
	r.logger.Info(fmt.Sprintf("Starting '%s'...", s.Name()))
}

// OnEnd is called when a span ends.
func (r *Reporter) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	elapsed := FormatDuration(s.EndTime().Sub(s.StartTime()))
	if s.Status().Code == codes.Error {
		r.logger.Warn(fmt.Sprintf("'%s' errored after %s", s.Name(), elapsed))
		return
	}
	r.logger.Info(fmt.Sprintf("Finished '%s' after %s", s.Name(), elapsed))
}

// ForceFlush does nothing.
func (r *Reporter) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (r *Reporter) Shutdown(_ context.Context) error {
	return nil
}

// FormatDuration renders d with millisecond resolution below one second and
// two decimals above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}
