package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vitalvas/autoroute/autorouter"
	"github.com/vitalvas/autoroute/openapi"
)

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the OpenAPI document of the discovered route modules",
		Long: "Generate the OpenAPI document of the discovered route modules. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  autoroute generate --dir routes --out build --output openapi.json
  autoroute --config autoroute.yaml generate --format yaml --collect-tags`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, cmd.OutOrStdout(), newLogger(cmd.ErrOrStderr(), cfg.Verbose))
		},
	}

	flags := cmd.Flags()
	addStringFlags(flags, discoveryFields)
	addBoolFlags(flags, boolFields)
	addStringFlags(flags, generateFields)

	return cmd
}

func runGenerate(ctx context.Context, cfg *Config, stdout io.Writer, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	override, err := cfg.loadOverride()
	if err != nil {
		return err
	}

	ar := autorouter.New(cfg.discoveryConfig(logger))

	schemas, err := ar.Schemas(ctx)
	if err != nil {
		return fmt.Errorf("discover routes: %w", err)
	}

	gen := openapi.NewGenerator(ar, schemas, override, cfg.generatorConfig(logger))
	doc, err := gen.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate document: %w", err)
	}

	if cfg.Output == "" {
		return openapi.Encode(stdout, doc, openapi.Format(cfg.Format))
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return newUsageError(fmt.Sprintf("output error for %s: %v", cfg.Output, err))
	}

	if err := openapi.Encode(f, doc, openapi.Format(cfg.Format)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}

	return f.Close()
}
