package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/assemble"
	flowio "github.com/flowsmith/flowsmith/pkg/io"
	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml]",
		Short: "Compute layout geometry for a pipeline graph",
		Long: `Compute layout geometry for a pipeline graph.

The layout command validates the graph, runs the grid placement and
waypoint routing stages, and writes the resulting geometry as JSON. The
same graph and spacing always produce the same geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], output, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <graph>.layout.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "layout config TOML file")

	return cmd
}

func (c *CLI) runLayout(input, output, configPath string) error {
	g, err := flowio.Import(input)
	if err != nil {
		return err
	}

	cfg := layout.DefaultConfig()
	if configPath != "" {
		cfg, err = layout.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	reg := template.Default()
	warnings, err := assemble.Validate(g, reg)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		printWarning("%s", w)
	}

	prog := newProgress(c.Logger)
	lay, err := layout.Compute(g, assemble.Categories(g, reg), cfg)
	if err != nil {
		return err
	}
	prog.done("Computed layout")

	data, err := json.MarshalIndent(lay, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		base := filepath.Base(input)
		output = strings.TrimSuffix(base, filepath.Ext(base)) + ".layout.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write layout %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printDetail("%.0fx%.0f canvas, %d nodes", lay.Width, lay.Height, len(lay.Bounds))
	return nil
}
