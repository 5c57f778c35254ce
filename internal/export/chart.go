package export

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value float64
}

// ChartOptions size and colour a chart. Zero values take the defaults.
type ChartOptions struct {
	Width, Height int    // 600x400
	Color         string // #4a90e2
	// ValueFormat renders the number above each bar; %.0f by default.
	ValueFormat string
}

func formatValue(format string, v float64) string {
	if format == "" {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return fmt.Sprintf(format, v)
}

// BarChartSVG renders a standalone dark-background SVG bar chart. Bars are
// scaled to the largest value; negative values are drawn as empty bars.
func BarChartSVG(title string, bars []Bar, opts ChartOptions) string {
	if opts.Width <= 0 {
		opts.Width = 600
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	if opts.Color == "" {
		opts.Color = "#4a90e2"
	}
	width, height := opts.Width, opts.Height
	padding := 50
	maxBarHeight := float64(height - 2*padding)

	maxVal := 0.0
	for _, b := range bars {
		maxVal = math.Max(maxVal, b.Value)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#1a1a1a" />`)
	fmt.Fprintf(&sb, `<text x="%d" y="30" fill="white" font-family="Arial" font-size="20" text-anchor="middle">%s</text>`, width/2, html.EscapeString(title))

	if len(bars) > 0 {
		barWidth := (width - 2*padding) / len(bars)
		for i, b := range bars {
			barHeight := 0
			if maxVal > 0 && b.Value > 0 {
				barHeight = int(b.Value / maxVal * maxBarHeight)
			}
			x := padding + i*barWidth
			y := height - padding - barHeight
			cx := x + barWidth/2

			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="4" />`, x+5, y, max(barWidth-10, 1), barHeight, html.EscapeString(opts.Color))
			fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="12" text-anchor="end" transform="rotate(-45 %d %d)">%s</text>`, cx, height-padding+20, cx, height-padding+20, html.EscapeString(b.Label))
			fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="10" text-anchor="middle">%s</text>`, cx, y-5, html.EscapeString(formatValue(opts.ValueFormat, b.Value)))
		}
	}

	fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="white" stroke-width="2" />`, padding, height-padding, width-padding, height-padding)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// WriteSVG writes a chart to path, creating the directory.
func WriteSVG(path, svg string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(svg); err != nil {
		return fmt.Errorf("write svg %s: %w", path, err)
	}
	return f.Close()
}
