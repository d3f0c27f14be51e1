// Package tracer provides distributed tracing using OpenTelemetry.
//
// A *Tracer installs itself as the global tracer provider, so the otelhttp
// transport of the triton client and the trace-aware logger methods pick up
// the spans it creates. It also satisfies embedding.Tracer:
//
//	tracerClient, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "image-embedder",
//		AppEnv:       "production",
//		EnableExport: true,
//	}, log)
//	if err != nil {
//		return err
//	}
//	client.WithTracer(tracerClient)
//
//	ctx, span := tracerClient.StartSpan(ctx, "embed-directory")
//	defer span.End()
//
// # Propagation
//
// GetCarrier and SetCarrierOnContext convert between a context and W3C
// Trace Context headers, for continuing a trace started elsewhere.
//
// # Configuration
//
// With the application prefix EMBEDDER:
//
//	EMBEDDER_TRACER_SERVICE_NAME=image-embedder
//	EMBEDDER_TRACER_APP_ENV=production
//	EMBEDDER_TRACER_ENABLE_EXPORT=true
//
// The exporter endpoint follows the OTEL_EXPORTER_OTLP_ENDPOINT conventions.
//
// # FX Module Integration
//
//	app := fx.New(
//		tracer.FXModule,
//		fx.Supply(tracer.DefaultConfig()),
//		fx.Provide(func(l *logger.Logger) tracer.Logger { return l }),
//	)
//
// The provider is flushed and shut down when the application stops.
package tracer
