package render

import (
	"slices"
	"strings"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

// Format is a diagram output format.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
	FormatText Format = "txt"
)

// Formats lists every supported format in output order.
var Formats = []Format{FormatDOT, FormatSVG, FormatText}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ParseFormats parses a comma-separated format list such as "svg,txt".
// Duplicates are dropped and an empty list yields [FormatSVG].
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for part := range strings.SplitSeq(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		f := Format(part)
		if !slices.Contains(Formats, f) {
			return nil, apperr.New(apperr.ErrCodeUnsupported, "unsupported format %q (use dot, svg or txt)", part)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []Format{FormatSVG}, nil
	}
	return out, nil
}
