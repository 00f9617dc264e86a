// Package text renders a placed flow as a terminal table, one cell per grid
// position.
package text

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")).Padding(0, 1)
	styleCell     = lipgloss.NewStyle().Padding(0, 1)
	styleBranch   = styleCell.Foreground(lipgloss.Color("220"))
	styleSentinel = styleCell.Foreground(lipgloss.Color("35"))
	styleBorder   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Markers prefixed to cells by node kind.
const (
	markerBranch   = "◇ "
	markerSentinel = "✓ "
)

// Options configures the table.
type Options struct {
	// Labels shows page titles instead of node IDs.
	Labels bool
	// MaxWidth truncates cell text to this many runes. Zero keeps full text.
	MaxWidth int
}

// Render draws the layout as a table with one column per grid column and one
// row per grid row. The first column holds the row number.
func Render(l grid.Layout, opts Options) string {
	kinds := make(map[[2]int]flow.Kind, len(l.Nodes))
	cells := make([][]string, l.Rows)
	for r := range cells {
		cells[r] = make([]string, l.Columns+1)
		cells[r][0] = strconv.Itoa(r)
	}
	for _, n := range l.Nodes {
		if n.Row < 0 || n.Row >= l.Rows || n.Column < 0 || n.Column >= l.Columns {
			continue
		}
		kind, _ := flow.ParseKind(n.Kind)
		kinds[[2]int{n.Row, n.Column}] = kind
		cells[n.Row][n.Column+1] = cellText(n, kind, opts)
	}

	headers := make([]string, l.Columns+1)
	headers[0] = "row"
	for c := range l.Columns {
		headers[c+1] = strconv.Itoa(c)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return styleHeader
			}
			switch kinds[[2]int{row, col - 1}] {
			case flow.KindBranch:
				return styleBranch
			case flow.KindCheckAnswers, flow.KindConfirmation:
				return styleSentinel
			}
			return styleCell
		})

	out := t.Render()
	if l.Service != "" {
		out = styleHeader.Render(l.Service) + "\n" + out
	}
	return out + "\n"
}

func cellText(n grid.NodePosition, kind flow.Kind, opts Options) string {
	s := n.ID
	if opts.Labels {
		s = n.DisplayLabel()
	}
	if opts.MaxWidth > 0 {
		if r := []rune(s); len(r) > opts.MaxWidth {
			s = string(r[:max(opts.MaxWidth-1, 0)]) + "…"
		}
	}
	switch {
	case kind == flow.KindBranch:
		return markerBranch + s
	case kind.IsSentinel():
		return markerSentinel + s
	}
	return s
}
