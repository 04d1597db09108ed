package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/assemble"
	flowio "github.com/flowsmith/flowsmith/pkg/io"
	"github.com/flowsmith/flowsmith/pkg/layout"
)

// assembleCommand creates the assemble command.
func (c *CLI) assembleCommand() *cobra.Command {
	var (
		output     string
		flowName   string
		configPath string
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "assemble [graph.json|graph.yaml]",
		Short: "Build an integration flow archive from a pipeline graph",
		Long: `Build an integration flow archive from a pipeline graph.

The assemble command validates the graph, computes a deterministic
layout, renders every node through its component template, and packages
the result as a zip archive ready for deployment.

Identical input always produces a byte-identical archive. Results are
cached locally for faster subsequent runs; use --refresh to force a full
recomputation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAssemble(cmd.Context(), args[0], output, flowName, configPath, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output archive (default: <flow name>.zip)")
	cmd.Flags().StringVarP(&flowName, "name", "n", "", "flow name (default: input file base name)")
	cmd.Flags().StringVar(&configPath, "config", "", "layout config TOML file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and recompute everything")

	return cmd
}

func (c *CLI) runAssemble(ctx context.Context, input, output, flowName, configPath string, noCache, refresh bool) error {
	g, err := flowio.Import(input)
	if err != nil {
		return err
	}

	opts, err := c.buildOptions(input, flowName, configPath, refresh)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Assembling %s...", opts.FlowName))
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Assembly failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Assembled %s", opts.FlowName))

	outputPath := output
	if outputPath == "" {
		outputPath = opts.FlowName + ".zip"
	}
	if err := os.WriteFile(outputPath, result.Archive, 0o644); err != nil {
		return fmt.Errorf("write archive %s: %w", outputPath, err)
	}

	printSuccess("Assembly complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.PackageHit)
	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	printNewline()
	printNextStep("Inspect", "unzip -l "+outputPath)

	return nil
}

// buildOptions assembles run options from the CLI flags. The flow name
// defaults to the input file's base name.
func (c *CLI) buildOptions(input, flowName, configPath string, refresh bool) (assemble.Options, error) {
	if flowName == "" {
		base := filepath.Base(input)
		flowName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	opts := assemble.Options{
		FlowName: flowName,
		Refresh:  refresh,
		Logger:   c.Logger,
	}
	if configPath != "" {
		cfg, err := layout.LoadConfig(configPath)
		if err != nil {
			return assemble.Options{}, err
		}
		opts.Layout = cfg
	}
	return opts, nil
}
