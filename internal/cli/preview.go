package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	flowio "github.com/flowsmith/flowsmith/pkg/io"
	"github.com/flowsmith/flowsmith/pkg/preview"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "preview [graph.json|graph.yaml]",
		Short: "Render a pipeline graph as DOT or SVG",
		Long: `Render a pipeline graph as DOT or SVG.

Without --output the DOT source is printed to stdout. With an .svg
output path the graph is rendered through graphviz; any other output
path receives the DOT source. Unknown component types are drawn dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd, args[0], output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg renders through graphviz, otherwise DOT)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include lane numbers and config parameters in node labels")

	return cmd
}

func (c *CLI) runPreview(cmd *cobra.Command, input, output string, detailed bool) error {
	g, err := flowio.Import(input)
	if err != nil {
		return err
	}

	dot := preview.ToDOT(g, template.Default(), preview.Options{Detailed: detailed})

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), dot)
		return nil
	}

	data := []byte(dot)
	if strings.HasSuffix(output, ".svg") {
		spinner := newSpinnerWithContext(cmd.Context(), "Rendering SVG...")
		spinner.Start()
		data, err = preview.RenderSVG(cmd.Context(), dot)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write preview %s: %w", output, err)
	}

	printSuccess("Preview written")
	printFile(output)
	return nil
}
