package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/image-embedder/v1/embedding"
	"github.com/Aleph-Alpha/image-embedder/v1/triton"
)

func newHealthCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that Triton is ready and serves every known model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			var client *triton.Client
			app := fx.New(
				baseOptions(cfg),
				tritonOptions(),
				fx.Populate(&client),
			)
			if err := app.Err(); err != nil {
				return err
			}
			if err := app.Start(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			return checkHealth(cmd.Context(), client, cmd.OutOrStdout())
		},
	}
}

type readinessChecker interface {
	ServerReady(ctx context.Context) error
	ModelReady(ctx context.Context, modelName string) error
}

// checkHealth prints one status line for the server and each model and
// fails if any of them is not ready.
func checkHealth(ctx context.Context, c readinessChecker, w io.Writer) error {
	if err := c.ServerReady(ctx); err != nil {
		fmt.Fprintf(w, "server\tNOT READY\t%v\n", err)
		return err
	}
	fmt.Fprintln(w, "server\tREADY")

	var failed int
	for _, m := range embedding.KnownModels() {
		if err := c.ModelReady(ctx, m.String()); err != nil {
			failed++
			fmt.Fprintf(w, "%s\tNOT READY\t%v\n", m, err)
			continue
		}
		fmt.Fprintf(w, "%s\tREADY\n", m)
	}
	if failed > 0 {
		return fmt.Errorf("%d model(s) not ready", failed)
	}
	return nil
}
