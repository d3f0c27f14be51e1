package main

import (
	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/image-embedder/internal/config"
	"github.com/Aleph-Alpha/image-embedder/v1/assetstore"
)

// globalFlags are shared by every subcommand and override the loaded
// configuration when set.
type globalFlags struct {
	configPath string
	tritonURL  string
	assetsDir  string
	logLevel   string
}

// NewRootCmd builds the image-embedder command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "image-embedder",
		Short:         "Compute image embeddings with a Triton served model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.tritonURL, "triton-url", "", "Triton HTTP endpoint, host:port or URL")
	root.PersistentFlags().StringVar(&flags.assetsDir, "assets-dir", "", "Directory holding the model client asset directories")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warning or error")

	root.AddCommand(
		newEmbedCmd(flags),
		newModelsCmd(),
		newHealthCmd(flags),
	)
	return root
}

// load reads the configuration and applies the flags the user set.
func (f *globalFlags) load(cmd *cobra.Command) (config.App, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.App{}, err
	}

	pf := cmd.Flags()
	if pf.Changed("triton-url") {
		cfg.Triton.URL = f.tritonURL
	}
	if pf.Changed("assets-dir") {
		cfg.Assets.Kind = assetstore.KindDir
		cfg.Assets.Dir = f.assetsDir
	}
	if pf.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, nil
}
