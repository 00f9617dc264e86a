package text

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowgrid/pkg/flow"
	"github.com/matzehuels/flowgrid/pkg/grid"
)

func TestRender(t *testing.T) {
	l := grid.Layout{
		Service: "Juggling licence",
		Rows:    2,
		Columns: 3,
		Nodes: []grid.NodePosition{
			{ID: "start", Kind: "page", Label: "Your name", Row: 0, Column: 0},
			{ID: "juggle", Kind: "branch", Row: 0, Column: 1},
			{ID: "balls", Kind: "page", Row: 1, Column: 2},
			{ID: "cya", Kind: "checkanswers", Row: 0, Column: 2},
		},
	}

	out := Render(l, Options{})
	for _, want := range []string{"Juggling licence", "row", "start", markerBranch + "juggle", "balls", markerSentinel + "cya"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Your name") {
		t.Error("Render() should show IDs unless Labels is set")
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var ballsLine, startLine int
	for i, line := range lines {
		if strings.Contains(line, "balls") {
			ballsLine = i
		}
		if strings.Contains(line, "start") {
			startLine = i
		}
	}
	if ballsLine <= startLine {
		t.Errorf("row 1 should be drawn below row 0:\n%s", out)
	}
}

func TestCellText(t *testing.T) {
	n := grid.NodePosition{ID: "what-is-your-address", Label: "What is your address?"}
	tests := []struct {
		name string
		kind flow.Kind
		opts Options
		want string
	}{
		{"id", flow.KindPage, Options{}, "what-is-your-address"},
		{"label", flow.KindPage, Options{Labels: true}, "What is your address?"},
		{"truncated", flow.KindPage, Options{MaxWidth: 8}, "what-is…"},
		{"branch marker", flow.KindBranch, Options{MaxWidth: 5}, markerBranch + "what…"},
		{"sentinel marker", flow.KindConfirmation, Options{}, markerSentinel + "what-is-your-address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellText(n, tt.kind, tt.opts); got != tt.want {
				t.Errorf("cellText() = %q, want %q", got, tt.want)
			}
		})
	}
}
