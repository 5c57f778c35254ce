package export

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarChartSVG(t *testing.T) {
	svg := BarChartSVG("Win rate <pro>", []Bar{
		{Label: "Team Spirit", Value: 0.62},
		{Label: "Tundra & Co", Value: 0.31},
		{Label: "Nobody", Value: -1},
	}, ChartOptions{ValueFormat: "%.2f", Color: "#e74c3c"})

	// must be well-formed XML
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}

	assert.True(t, strings.HasPrefix(svg, `<svg width="600" height="400"`))
	assert.Contains(t, svg, "Win rate &lt;pro&gt;")
	assert.Contains(t, svg, "Tundra &amp; Co")
	assert.Contains(t, svg, ">0.62<")
	assert.Contains(t, svg, `height="300" fill="#e74c3c"`, "largest bar fills the plot height")
	assert.Contains(t, svg, `height="0" fill="#e74c3c"`, "negative values are empty bars")
}

func TestBarChartSVG_Empty(t *testing.T) {
	svg := BarChartSVG("Nothing", nil, ChartOptions{})
	assert.Contains(t, svg, "Nothing")
	assert.NotContains(t, svg, "<rect x=")
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
}

func TestWriteSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "a.svg")
	require.NoError(t, WriteSVG(path, "<svg></svg>"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(data))
}
