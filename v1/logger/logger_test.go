package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedClient(tracing bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{Zap: zap.New(core), tracingEnabled: tracing}, logs
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestLogger_Fields(t *testing.T) {
	client, logs := observedClient(false)

	client.Error("Failed to embed image", errors.New("boom"), map[string]interface{}{
		"path": "cat.png",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "cat.png", fields["path"])
}

func TestLogger_WithContextAddsTraceIDs(t *testing.T) {
	client, logs := observedClient(true)

	client.InfoWithContext(spanContext(t), "Embedding image", nil, map[string]interface{}{
		"model": "bria_attribution_model",
	})

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "bria_attribution_model", fields["model"])
}

func TestLogger_WithContextTracingDisabled(t *testing.T) {
	client, logs := observedClient(false)

	client.WarnWithContext(spanContext(t), "Triton server is not ready", nil)
	client.DebugWithContext(context.Background(), "no span", nil)

	for _, entry := range logs.All() {
		_, ok := entry.ContextMap()["trace_id"]
		assert.False(t, ok)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{Debug, zapcore.DebugLevel},
		{Info, zapcore.InfoLevel},
		{Warning, zapcore.WarnLevel},
		{"WARN", zapcore.WarnLevel},
		{Error, zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			client := NewLoggerClient(Config{Level: tt.level, ServiceName: "test"})
			assert.True(t, client.Zap.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, client.Zap.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestFXModule(t *testing.T) {
	var (
		client *Logger
		iface  ContextLogger
	)
	app := fxtest.New(t,
		FXModule,
		fx.Supply(DefaultConfig()),
		fx.Populate(&client, &iface),
	)
	app.RequireStart()
	assert.Same(t, client, iface)
	app.RequireStop()
}
