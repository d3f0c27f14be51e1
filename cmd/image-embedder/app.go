package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/Aleph-Alpha/image-embedder/internal/config"
	"github.com/Aleph-Alpha/image-embedder/v1/assetstore"
	"github.com/Aleph-Alpha/image-embedder/v1/embedding"
	"github.com/Aleph-Alpha/image-embedder/v1/logger"
	"github.com/Aleph-Alpha/image-embedder/v1/metrics"
	"github.com/Aleph-Alpha/image-embedder/v1/tracer"
	"github.com/Aleph-Alpha/image-embedder/v1/triton"
)

// baseOptions supplies the configuration and the logger every app needs.
func baseOptions(cfg config.App) fx.Option {
	return fx.Options(
		fx.WithLogger(func(l *logger.Logger) fxevent.Logger {
			zl := &fxevent.ZapLogger{Logger: l.Zap}
			zl.UseLogLevel(zapcore.DebugLevel)
			return zl
		}),
		fx.Supply(cfg.Log, cfg.Tracer, cfg.Metrics, cfg.Assets, cfg.Triton),
		logger.FXModule,
	)
}

// tritonOptions wires the Triton client on top of baseOptions.
func tritonOptions() fx.Option {
	return fx.Options(
		triton.FXModule,
		fx.Provide(func(l *logger.Logger) triton.Logger { return l }),
	)
}

// embedderOptions wires the complete embedding pipeline: tracing, metrics,
// the asset store, the Triton backend and the embedding client. Every
// component reports its operations to the metrics collector.
func embedderOptions() fx.Option {
	return fx.Options(
		tritonOptions(),
		tracer.FXModule,
		metrics.FXModule,
		assetstore.FXModule,
		embedding.FXModule,
		fx.Provide(
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) metrics.Logger { return l },
			func(l *logger.Logger) assetstore.Logger { return l },
			func(l *logger.Logger) embedding.Logger { return l },
			func(c *triton.Client) embedding.Backend { return c },
		),
		fx.Decorate(
			observeAssets,
			observeTriton,
			instrumentEmbedding,
		),
	)
}

func observeAssets(src assetstore.Source, m metrics.MetricsCollector) assetstore.Source {
	if ms, ok := src.(*assetstore.MinioSource); ok {
		return ms.WithObserver(m)
	}
	return src
}

func observeTriton(c *triton.Client, m metrics.MetricsCollector) *triton.Client {
	return c.WithObserver(m)
}

func instrumentEmbedding(c *embedding.Client, m metrics.MetricsCollector, t *tracer.Tracer) *embedding.Client {
	return c.WithObserver(m).WithTracer(t)
}
