package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/image-embedder/v1/embedding"
	"github.com/Aleph-Alpha/image-embedder/v1/logger"
	"github.com/Aleph-Alpha/image-embedder/v1/metrics"
	"github.com/Aleph-Alpha/image-embedder/v1/tracer"
)

// traceParentEnv carries a W3C traceparent to continue an upstream trace.
const traceParentEnv = "TRACEPARENT"

type embedOptions struct {
	model       string
	normalize   bool
	concurrency int
}

// embedLine is printed as one JSON line per input file.
type embedLine struct {
	Path       string           `json:"path"`
	Model      string           `json:"model"`
	Embeddings embedding.Result `json:"embeddings"`
}

func newEmbedCmd(flags *globalFlags) *cobra.Command {
	opts := &embedOptions{}

	cmd := &cobra.Command{
		Use:   "embed IMAGE...",
		Short: "Embed image files and print one JSON line per image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := embedding.ParseModelIdentifier(opts.model)
			if err != nil {
				return err
			}
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", opts.concurrency)
			}
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			var (
				client    *embedding.Client
				collector metrics.MetricsCollector
				tr        *tracer.Tracer
				log       *logger.Logger
			)
			app := fx.New(
				baseOptions(cfg),
				embedderOptions(),
				fx.Populate(&client, &collector, &tr, &log),
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			if parent := os.Getenv(traceParentEnv); parent != "" {
				ctx = tr.SetCarrierOnContext(ctx, map[string]string{"traceparent": parent})
			}
			ctx, span := tr.StartSpan(ctx, "image-embedder.embed")
			defer span.End()

			log.DebugWithContext(ctx, "Embedding run started", nil, map[string]interface{}{
				"files":       len(args),
				"traceparent": tr.GetCarrier(ctx)["traceparent"],
			})

			e := newEmbedder(client, collector, log)
			err = e.run(ctx, args, embedding.ImageOptions{Model: model, Normalize: opts.normalize}, opts.concurrency, cmd.OutOrStdout())
			if err != nil {
				tr.RecordErrorOnSpan(span, err)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.model, "model", "m", embedding.DefaultModel.String(), "Model identifier")
	cmd.Flags().BoolVar(&opts.normalize, "normalize", false, "L2-normalize every embedding")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 4, "Number of images embedded concurrently")
	return cmd
}

// imageEmbedder is the part of *embedding.Client the command uses.
type imageEmbedder interface {
	EmbedImageBytes(ctx context.Context, data []byte, opts embedding.ImageOptions) (embedding.Result, error)
}

type embedder struct {
	client  imageEmbedder
	metrics metrics.MetricsCollector
	log     logger.ContextLogger

	files      *prometheus.CounterVec
	imageBytes *prometheus.HistogramVec
}

// newEmbedder registers the per-file CLI metrics on m.
func newEmbedder(client imageEmbedder, m metrics.MetricsCollector, log logger.ContextLogger) *embedder {
	return &embedder{
		client:  client,
		metrics: m,
		log:     log,
		files: m.CreateCounter("cli_files_total",
			"Image files processed by the embed command", []string{"status"}),
		imageBytes: m.CreateHistogram("cli_image_bytes",
			"Size of the embedded image files in bytes", []string{"model"}, prometheus.ExponentialBuckets(4096, 4, 8)),
	}
}

// embedFile embeds one file and records the outcome.
func (e *embedder) embedFile(ctx context.Context, path string, opts embedding.ImageOptions) (embedding.Result, error) {
	start := time.Now()
	defer e.metrics.RecordOperationDuration(start, "cli", "embed_file", opts.Model.String())

	result, err := e.readAndEmbed(ctx, path, opts)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	e.files.WithLabelValues(status).Inc()
	e.metrics.IncrementOperations("cli", "embed_file", opts.Model.String(), status)
	return result, err
}

func (e *embedder) readAndEmbed(ctx context.Context, path string, opts embedding.ImageOptions) (embedding.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	e.imageBytes.WithLabelValues(opts.Model.String()).Observe(float64(len(data)))

	result, err := e.client.EmbedImageBytes(ctx, data, opts)
	if err != nil {
		e.log.ErrorWithContext(ctx, "Failed to embed image", err, map[string]interface{}{
			"path": path,
		})
		return nil, fmt.Errorf("embed %s: %w", path, err)
	}
	for _, v := range result.Vectors() {
		e.metrics.ObserveEmbeddingDimension(opts.Model.String(), len(v))
	}
	e.log.DebugWithContext(ctx, "Embedded image", nil, map[string]interface{}{
		"path":  path,
		"model": opts.Model.String(),
	})
	return result, nil
}

// run embeds every path with at most concurrency calls in flight and writes
// the results in input order. The first failure cancels the remaining files.
func (e *embedder) run(ctx context.Context, paths []string, opts embedding.ImageOptions, concurrency int, w io.Writer) error {
	results := make([]embedding.Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := e.embedFile(ctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for i, path := range paths {
		if err := enc.Encode(embedLine{Path: path, Model: opts.Model.String(), Embeddings: results[i]}); err != nil {
			return err
		}
	}
	return nil
}
