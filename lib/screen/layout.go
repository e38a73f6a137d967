package screen

import (
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/jayjanssen/myq-mon/lib/monitor"
	"github.com/jayjanssen/myq-mon/lib/views"
	"github.com/mattn/go-runewidth"
)

// Fixed screen lines
const (
	hostLine     = 1
	versionLine  = 2
	gatedLine    = 4
	noticeLine   = 7
	titleLine    = 9
	rowsLine     = 12
	panelColumn  = 40
	labelWidth   = 24
	maxNotices   = titleLine - noticeLine
	rowSpacing   = 1
	detailIndent = 1
)

// Text is one string at a screen position
type Text struct {
	X, Y  int
	S     string
	Style ui.Style
}

var (
	plain    = ui.NewStyle(ui.ColorClear)
	bold     = ui.NewStyle(ui.ColorClear, ui.ColorClear, ui.ModifierBold)
	boldRed  = ui.NewStyle(ui.ColorRed, ui.ColorClear, ui.ModifierBold)
	red      = ui.NewStyle(ui.ColorRed)
	title    = ui.NewStyle(ui.ColorMagenta, ui.ColorClear, ui.ModifierBold)
	valueSty = ui.NewStyle(ui.ColorGreen, ui.ColorClear, ui.ModifierBold)
)

var colors = map[string]ui.Color{
	"":        ui.ColorClear,
	"green":   ui.ColorGreen,
	"magenta": ui.ColorMagenta,
	"cyan":    ui.ColorCyan,
	"red":     ui.ColorRed,
	"blue":    ui.ColorBlue,
}

func detailStyle(d views.Detail) ui.Style {
	if d.Bold {
		return ui.NewStyle(colors[d.Color], ui.ColorClear, ui.ModifierBold)
	}
	return ui.NewStyle(colors[d.Color])
}

// Layout places everything in frame on a width x height screen. Texts past
// the last line are dropped and the rest clipped to the width.
func Layout(frame *monitor.Frame, width, height int) []Text {
	var texts []Text
	add := func(x, y int, s string, style ui.Style) {
		texts = append(texts, Text{X: x, Y: y, S: s, Style: style})
	}

	add(1, 0, fmt.Sprintf("%s  %s  %s", frame.Tool, frame.Time.Format("15:04:05"), frame.Interval), plain)
	host, version := frame.Host, frame.Version
	if frame.Gated {
		// the panel shares these lines
		host = runewidth.Truncate(host, panelColumn-2, "")
		version = runewidth.Truncate(version, panelColumn-2, "")
	}
	add(1, hostLine, host, bold)
	add(1, versionLine, version, plain)

	// status panel: beside the gated section, or below the header without one
	x, y := 1, gatedLine
	if frame.Gated {
		x, y = panelColumn, hostLine
		add(1, gatedLine, "trx: "+orDash(frame.TrxCount), red)
		add(1, gatedLine+1, "hll: "+orDash(frame.HLL), red)
	}
	for _, v := range frame.Status {
		if v.Gap {
			y++
		}
		add(x, y, statusLine(v), plain)
		y++
	}
	for i, v := range frame.Sys {
		if i == 0 {
			y++
		}
		add(x, y, statusLine(v), plain)
		y++
	}

	if !frame.Gated {
		// panel only tools put notices after the panel
		for i, n := range frame.Notices {
			add(1, y+1+i, n, boldRed)
		}
		return clip(texts, width, height)
	}

	for i, n := range frame.Notices {
		if i == maxNotices {
			break
		}
		add(1, noticeLine+i, n, boldRed)
	}

	if frame.View != nil {
		add(1, titleLine, frame.View.Title, title)
	} else {
		add(1, titleLine, frame.Mode.String(), title)
	}

	if frame.Placeholder != "" {
		add(1, rowsLine, frame.Placeholder, boldRed)
		return clip(texts, width, height)
	}

	y = rowsLine
	for _, row := range frame.Rows {
		if y >= height {
			break
		}
		if len(frame.View.Heading) > 0 {
			for _, c := range frame.View.Heading {
				add(c.X, y, c.Label, plain)
				add(c.X, y+1, c.Value(row), valueSty)
			}
			y += 2
		}
		for _, c := range frame.View.Columns {
			add(c.X, y, c.Label, plain)
			add(c.X, y+1, c.Value(row), valueSty)
		}
		y += 2
		gap := true
		for _, d := range frame.View.Details {
			if row.IsNull(d.Field) {
				continue
			}
			if gap {
				y++
				gap = false
			}
			add(detailIndent, y, flatten(row.Str(d.Field)), detailStyle(d))
			y++
		}
		y += rowSpacing
	}

	return clip(texts, width, height)
}

func statusLine(v monitor.StatusValue) string {
	return fmt.Sprintf("%-*s %s", labelWidth, v.Label+":", v.Value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var flattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// flatten keeps multi-line statements on one screen line
func flatten(s string) string {
	return flattener.Replace(s)
}

func clip(texts []Text, width, height int) []Text {
	out := texts[:0]
	for _, t := range texts {
		if t.Y >= height || t.X >= width || t.S == "" {
			continue
		}
		t.S = runewidth.Truncate(t.S, width-t.X, "")
		out = append(out, t)
	}
	return out
}
