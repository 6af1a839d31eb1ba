package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kakaka820/Titanic/pkg/analysis"
)

// Importances draws a horizontal bar per feature, most important on top, and
// saves it to filename. The extension picks the format (.png, .svg, .pdf).
func Importances(imps []analysis.Importance, filename string) error {
	if len(imps) == 0 {
		return errors.New("chart: no importances to plot")
	}
	p := plot.New()
	p.Title.Text = "Feature Importance (Random Forest)"
	p.X.Label.Text = "Mean decrease in impurity"

	// Bars are drawn bottom-up, so reverse to put the top feature first.
	n := len(imps)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, imp := range imps {
		values[n-1-i] = imp.Importance
		names[n-1-i] = imp.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(10))
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 50, G: 90, B: 200, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)

	height := vg.Length(n)*14*vg.Millimeter/5 + 2*vg.Inch
	if err := p.Save(6*vg.Inch, height, filename); err != nil {
		return fmt.Errorf("chart: saving %s: %w", filename, err)
	}
	return nil
}

// Models draws held-out accuracy and CV score side by side for each model.
func Models(metrics []analysis.Metric, filename string) error {
	if len(metrics) == 0 {
		return errors.New("chart: no metrics to plot")
	}
	p := plot.New()
	p.Title.Text = "Model Comparison"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min, p.Y.Max = 0, 1

	acc := make(plotter.Values, len(metrics))
	cv := make(plotter.Values, len(metrics))
	names := make([]string, len(metrics))
	for i, m := range metrics {
		acc[i], cv[i], names[i] = m.Accuracy, m.CVScore, m.Model
	}

	w := vg.Points(20)
	accBars, err := plotter.NewBarChart(acc, w)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	accBars.Color = color.RGBA{R: 50, G: 90, B: 200, A: 255}
	accBars.Offset = -w / 2

	cvBars, err := plotter.NewBarChart(cv, w)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	cvBars.Color = color.RGBA{R: 230, G: 120, B: 40, A: 255}
	cvBars.Offset = w / 2

	p.Add(accBars, cvBars)
	p.Legend.Add("test accuracy", accBars)
	p.Legend.Add("cv score", cvBars)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("chart: saving %s: %w", filename, err)
	}
	return nil
}
