// Package charts renders the rtt samples of a session as a PNG chart.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tcpprobe/tcpprobe/statistics"
)

// ErrNotEnoughSamples is returned when there are fewer than two rtt samples
// to draw a line through.
var ErrNotEnoughSamples = errors.New("at least two successful probes are needed for a chart")

const smaPeriod = 10

// WriteLatencyChart renders the latency chart of s into the PNG file at path.
func WriteLatencyChart(path string, s *statistics.Statistics) error {
	if len(s.RTT) < 2 {
		return ErrNotEnoughSamples
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", path, err)
	}

	if err := RenderLatencyChart(file, s); err != nil {
		file.Close()
		return fmt.Errorf("render chart %s: %w", path, err)
	}

	return file.Close()
}

// RenderLatencyChart writes the latency chart of s to w as PNG.
// Samples are plotted in the order they were recorded.
func RenderLatencyChart(w io.Writer, s *statistics.Statistics) error {
	if len(s.RTT) < 2 {
		return ErrNotEnoughSamples
	}

	xValues := make([]float64, len(s.RTT))
	for i := range s.RTT {
		xValues[i] = float64(i + 1)
	}

	samples := chart.ContinuousSeries{
		Name: "rtt",
		Style: chart.Style{
			StrokeColor: chart.GetDefaultColor(0),
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: s.RTT,
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("TCP connect latency - %s", s.Target()),
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1200,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Successful probe",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Latency (ms)",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: []chart.Series{samples},
	}

	if len(s.RTT) > smaPeriod {
		graph.Series = append(graph.Series, chart.SMASeries{
			Name: "Moving Avg",
			Style: chart.Style{
				StrokeColor:     chart.GetDefaultColor(1),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
			},
			InnerSeries: samples,
			Period:      smaPeriod,
		})
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return graph.Render(chart.PNG, w)
}
