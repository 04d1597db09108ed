package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowsmith/flowsmith/pkg/template"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// TemplateListModel is the bubbletea model for the interactive template
// catalog. Enter selects a template; its details are printed after the
// program exits.
type TemplateListModel struct {
	Specs    []*template.Spec
	Cursor   int
	Selected *template.Spec
	Height   int
	Offset   int
}

// NewTemplateListModel creates a new template list model.
func NewTemplateListModel(specs []*template.Spec) TemplateListModel {
	return TemplateListModel{
		Specs:  specs,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m TemplateListModel) Init() tea.Cmd {
	return nil
}

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Specs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Specs[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TemplateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Component Templates"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	b.WriteString(templateTable(m.Specs, m.Cursor, m.Height, m.Offset))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Specs))))

	return b.String()
}
