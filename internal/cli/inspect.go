package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
	"github.com/matzehuels/flowgrid/pkg/render/text"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// inspectCommand creates the interactive layout browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "inspect [service.json|layout.json]",
		Short: "Browse a layout interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loadLayout(cmd.Context(), args[0], noCache)
			if err != nil {
				return err
			}
			prog := tea.NewProgram(NewInspectModel(l), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// loadLayout reads a layout file, or lays out a service file.
func (c *CLI) loadLayout(ctx context.Context, input string, noCache bool) (grid.Layout, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return grid.Layout{}, fmt.Errorf("read %s: %w", input, err)
	}
	if isLayout(data) {
		return grid.UnmarshalLayout(data)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return grid.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Layout(ctx, pipeline.Options{Service: data, Source: input, Logger: c.Logger})
	if err != nil {
		return grid.Layout{}, fmt.Errorf("compute layout: %w", err)
	}
	return *result.Layout, nil
}

// =============================================================================
// InspectModel - Interactive node browser
// =============================================================================

// InspectModel is the bubbletea model for browsing placed nodes. Nodes are
// listed in traversal order; the detail pane follows the cursor.
type InspectModel struct {
	Layout   grid.Layout
	Cursor   int
	Offset   int
	Height   int
	ShowGrid bool
}

// NewInspectModel creates a browser over l.
func NewInspectModel(l grid.Layout) InspectModel {
	return InspectModel{Layout: l, Height: 15}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Layout.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "l", "right":
			m.follow()
		case "g":
			m.ShowGrid = !m.ShowGrid
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

// follow moves the cursor to the current node's first placed destination.
func (m *InspectModel) follow() {
	if len(m.Layout.Nodes) == 0 {
		return
	}
	for _, d := range m.Layout.Nodes[m.Cursor].Destinations {
		for i, n := range m.Layout.Nodes {
			if n.ID != d {
				continue
			}
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			} else if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
			return
		}
	}
}

func (m InspectModel) View() string {
	var b strings.Builder

	title := m.Layout.Service
	if title == "" {
		title = "Layout"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d×%d grid", m.Layout.Rows, m.Layout.Columns)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ follow  g grid  q quit"))
	b.WriteString("\n\n")

	if m.ShowGrid {
		b.WriteString(text.Render(m.Layout, text.Options{MaxWidth: 14}))
		return b.String()
	}
	if len(m.Layout.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("no placed nodes"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Layout.Nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := m.Layout.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.ID, n.Kind, fmt.Sprintf("%d,%d", n.Row, n.Column)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Cell").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Layout.Nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if kind, ok := flow.ParseKind(m.Layout.Nodes[idx].Kind); ok && kind == flow.KindBranch {
				base = base.Foreground(colorYellow)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layout.Nodes))))
	if n := len(m.Layout.Unconnected); n > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  %d unconnected", n)))
	}
	return b.String()
}

func (m InspectModel) detail() string {
	n := m.Layout.Nodes[m.Cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styleKey.Render("label"), StyleValue.Render(n.DisplayLabel()))
	fmt.Fprintf(&b, "%s %s\n", styleKey.Render("cell"), StyleValue.Render(fmt.Sprintf("row %d, column %d", n.Row, n.Column)))
	dests := "—"
	if len(n.Destinations) > 0 {
		dests = strings.Join(n.Destinations, ", ")
	}
	fmt.Fprintf(&b, "%s %s", styleKey.Render("next"), StyleValue.Render(dests))
	return b.String()
}
