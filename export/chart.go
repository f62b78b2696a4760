package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Dosada05/tournament-generator/models"
)

var (
	barColor  = drawing.ColorFromHex("2f6f4e")
	lineColor = drawing.ColorFromHex("c9a227")
)

// RoundChart renders a PNG bar chart with the number of games of each round.
func RoundChart(t *models.Tournament) ([]byte, error) {
	rounds := t.Rounds()
	bars := make([]chart.Value, 0, len(rounds))
	most := 0
	for _, r := range rounds {
		n := len(r.Games())
		if n > most {
			most = n
		}
		bars = append(bars, chart.Value{
			Label: r.Name,
			Value: float64(n),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}
	if most == 0 {
		return nil, fmt.Errorf("%w: tournament %q has no games to chart", models.ErrInsufficientData, t.Name)
	}

	graph := chart.BarChart{
		Title:    t.Name,
		Width:    120 * max(len(bars), 4),
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(most + 1)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DurationChart plots simulated tournament lengths, in minutes, sorted from the
// shortest run to the longest.
func DurationChart(durations []time.Duration) ([]byte, error) {
	if len(durations) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 runs to chart, %d given", models.ErrInsufficientData, len(durations))
	}
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	xValues := make([]float64, len(sorted))
	yValues := make([]float64, len(sorted))
	for i, d := range sorted {
		xValues[i] = float64(i + 1)
		yValues[i] = d.Minutes()
	}
	lo, hi := yValues[0], yValues[len(yValues)-1]
	if hi == lo {
		hi = lo + 1
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  "Run",
			Range: &chart.ContinuousRange{Min: 1, Max: float64(len(sorted))},
		},
		YAxis: chart.YAxis{
			Name:  "Minutes",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Tournament time",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
