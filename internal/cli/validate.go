package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/assemble"
	"github.com/flowsmith/flowsmith/pkg/errors"
	flowio "github.com/flowsmith/flowsmith/pkg/io"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [graph.json|graph.yaml]",
		Short: "Check a pipeline graph without assembling it",
		Long: `Check a pipeline graph without assembling it.

Validation runs the same structural checks as assemble: endpoint rules,
acyclicity over sequence flows, connectivity, message flow participant
rules, and per-node slot arity. Unknown component types produce warnings
rather than errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(input string) error {
	g, err := flowio.Import(input)
	if err != nil {
		return err
	}

	c.Logger.Debug("validating graph", "path", input, "nodes", g.NodeCount())

	warnings, err := assemble.Validate(g, template.Default())
	for _, w := range warnings {
		printWarning("%s", w)
	}
	if err != nil {
		printError("%s", errors.UserMessage(err))
		return fmt.Errorf("validation failed")
	}

	printSuccess("Graph is valid")
	printStats(g.NodeCount(), g.EdgeCount(), false)
	if len(warnings) > 0 {
		printDetail("%d component(s) will use the generic fallback template", len(warnings))
	}
	return nil
}
