package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/template"
)

// templatesCommand creates the templates command.
func (c *CLI) templatesCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse the registered component templates",
		Long: `Browse the registered component templates.

Lists every component type the engine knows how to render, with its
category, slot arities, and required config parameters. Use
--interactive for a navigable catalog with per-template details.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTemplates(interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the catalog interactively")

	return cmd
}

func (c *CLI) runTemplates(interactive bool) error {
	specs := template.Default().Specs()

	if interactive {
		model := NewTemplateListModel(specs)
		final, err := tea.NewProgram(model).Run()
		if err != nil {
			return fmt.Errorf("run template browser: %w", err)
		}
		if m, ok := final.(TemplateListModel); ok && m.Selected != nil {
			printTemplateDetail(m.Selected)
		}
		return nil
	}

	fmt.Println(templateTable(specs, -1, len(specs), 0))
	printNewline()
	printInfo("%d templates registered", len(specs))
	return nil
}

// templateTable renders specs[offset:offset+height] as a bordered table.
// cursor is the absolute index of the highlighted row, or -1 for none.
func templateTable(specs []*template.Spec, cursor, height, offset int) string {
	end := offset + height
	if end > len(specs) {
		end = len(specs)
	}

	rows := [][]string{}
	for i := offset; i < end; i++ {
		s := specs[i]
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		rows = append(rows, []string{
			marker,
			s.Type,
			s.Category,
			slotString(s.Incoming),
			slotString(s.Outgoing),
			strings.Join(s.Required, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Type", "Category", "In", "Out", "Required").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if offset+row == cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col >= 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// slotString formats an arity contract, e.g. "1", "0-1", "1+".
func slotString(s template.Slots) string {
	switch {
	case s.Max < 0:
		return fmt.Sprintf("%d+", s.Min)
	case s.Min == s.Max:
		return fmt.Sprintf("%d", s.Min)
	default:
		return fmt.Sprintf("%d-%d", s.Min, s.Max)
	}
}

func printTemplateDetail(s *template.Spec) {
	fmt.Println(StyleTitle.Render(s.Type))
	printDetail("category: %s", s.Category)
	printDetail("incoming: %s, outgoing: %s", slotString(s.Incoming), slotString(s.Outgoing))
	if len(s.Required) > 0 {
		printDetail("required: %s", strings.Join(s.Required, ", "))
	}
	if s.Description != "" {
		printDetail("%s", s.Description)
	}
}
