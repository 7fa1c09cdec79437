package plot

import (
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/gramsim/gram/internal/model"
	"github.com/gramsim/gram/internal/sweep"
)

var profileColors = []drawing.Color{
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorBlue,
}

// RenderProfile renders one condition's matrix as a line chart of
// threshold error against the removed mechanism, one series per
// permanent mechanism, and writes it as PNG.
func RenderProfile(w io.Writer, label string, m sweep.Matrix) error {
	xs := make([]float64, model.NumMechanisms)
	for j := range xs {
		xs[j] = float64(j)
	}

	series := make([]chart.Series, 0, model.NumMechanisms)
	for i := 0; i < model.NumMechanisms; i++ {
		ys := make([]float64, model.NumMechanisms)
		copy(ys, m[i][:])
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("permanent %d", i),
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: profileColors[i%len(profileColors)], StrokeWidth: 2.0},
		})
	}

	graph := chart.Chart{
		Title:  strings.ToUpper(label),
		Width:  480,
		Height: 360,
		XAxis: chart.XAxis{
			Name:  "removed repressor",
			Style: chart.Style{FontSize: 10.0},
			Ticks: []chart.Tick{
				{Value: 0, Label: "0"},
				{Value: 1, Label: "1"},
				{Value: 2, Label: "2"},
			},
		},
		YAxis: chart.YAxis{
			Name:  "threshold error",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering profile chart: %w", err)
	}
	return nil
}
