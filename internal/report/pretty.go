package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// PrettyOpts configures WritePretty.
type PrettyOpts struct {
	Color bool
	Width int // content column width, 0 means 32
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// WritePretty writes a human-readable table per report:
//
//	tracker#3 out [0,12) 3 regions
//	  [   0,   5) gap                        "hello"
//	  [   5,  12) #1 file@105 2:1            "world!!" <- "wor"
func WritePretty(w io.Writer, reports []*Report, opts PrettyOpts) error {
	width := opts.Width
	if width <= 0 {
		width = 32
	}
	gapColor := color.New(color.FgRed, color.Faint)
	srcColor := color.New(color.FgCyan)
	for _, c := range []*color.Color{gapColor, srcColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, rep := range reports {
		title := fmt.Sprintf("tracker#%d", rep.TrackerID)
		if rep.Name != "" {
			title += " " + rep.Name
		}
		title += fmt.Sprintf(" [%d,%d) %d regions", rep.Index, rep.Index+rep.Length, len(rep.Entries))
		if rep.Simplified {
			title += " (simplified)"
		}
		if opts.Color {
			title = headerStyle.Render(title)
		}
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}

		for _, e := range rep.Entries {
			span := fmt.Sprintf("[%4d,%4d)", e.Offset, e.Offset+e.Length)
			var source string
			if e.Gap {
				source = gapColor.Sprint(pad("gap", 26))
			} else {
				label := fmt.Sprintf("#%d", e.SourceID)
				if e.SourceName != "" {
					label += " " + e.SourceName
				}
				label += "@" + strconv.FormatUint(uint64(e.SourceOffset), 10)
				if e.Growth != "" {
					label += " " + e.Growth
				}
				source = srcColor.Sprint(pad(label, 26))
			}
			line := fmt.Sprintf("  %s %s %s", span, source, quote(e.Content, width))
			if e.SourceContent != "" && e.SourceContent != e.Content {
				line += " <- " + quote(e.SourceContent, width)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// pad pads or truncates s to exactly n columns.
func pad(s string, n int) string {
	if runewidth.StringWidth(s) > n {
		return runewidth.Truncate(s, n, "…")
	}
	return runewidth.FillRight(s, n)
}

func quote(s string, width int) string {
	q := strconv.Quote(s)
	if runewidth.StringWidth(q) <= width {
		return q
	}
	return runewidth.Truncate(q, width, "...")
}
