// Package logging builds the zap-backed ectologger used across fern and
// carries the request id between middleware and log lines.
package logging

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

type requestIDKey struct{}

// Config controls logger construction.
type Config struct {
	Level  string
	Pretty bool
}

// New builds a logger writing through zap. Pretty selects the development
// console encoder. The returned func flushes buffered entries.
func New(cfg Config) (ectologger.Logger, func(), error) {
	var zc zap.Config
	if cfg.Pretty {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	z, err := zc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapadapter.NewZapEctoLogger(z, ContextFields), func() { _ = z.Sync() }, nil
}

// NewNop returns a logger that discards everything.
func NewNop() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

// SetRequestID stores the request id so log lines written with the request
// context carry it.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the request id stored by SetRequestID.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// ContextFields adds request, trace and span ids found in the message context.
func ContextFields(msg ectologger.EctoLogMessage) ectologger.EctoLogMessage {
	if msg.Ctx == nil {
		return msg
	}

	fields := make(map[string]any, len(msg.Fields)+3)
	maps.Copy(fields, msg.Fields)
	if traceID := tracing.GetTraceID(msg.Ctx); traceID != "" {
		fields["trace_id"] = traceID
		fields["span_id"] = tracing.GetSpanID(msg.Ctx)
	}
	if requestID := GetRequestID(msg.Ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	msg.Fields = fields
	return msg
}
