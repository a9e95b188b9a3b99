package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/sitstand.report/internal/httputil"
	"github.com/banshee-data/sitstand.report/internal/pipeline"
)

// handleChart renders the aligned tilt of a recording with its detected
// peaks and valleys as an HTML page.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	res, _ := s.analyze(w, r)
	if res == nil {
		return
	}

	var buf bytes.Buffer
	if err := renderPitchChart(&buf, res); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func renderPitchChart(w io.Writer, res *pipeline.ResultSummary) error {
	seg := res.Segments
	points := func(idx []int) []opts.ScatterData {
		out := make([]opts.ScatterData, 0, len(idx))
		for _, i := range idx {
			out = append(out, opts.ScatterData{Value: []interface{}{seg.Time[i], seg.Pitch[i]}})
		}
		return out
	}
	all := make([]int, len(seg.Time))
	for i := range all {
		all[i] = i
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sit-to-stand tilt", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Sagittal tilt",
			Subtitle: fmt.Sprintf("run=%s repetitions=%d %s", res.ID, res.Totals.Repetitions, res.Classification),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "tilt (deg)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("tilt", points(all), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
	scatter.AddSeries("peaks", points(seg.Peaks), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	scatter.AddSeries("valleys", points(seg.Valleys), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return scatter.Render(w)
}
