package pipeline

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

var (
	cvColor      = color.RGBA{R: 66, G: 133, B: 244, A: 255}
	holdoutColor = color.RGBA{R: 219, G: 68, B: 55, A: 255}
)

// SavePlot draws the mean cross-validated accuracy and the held-out accuracy
// of every kernel as grouped bars and saves the chart to path.
func SavePlot(r *Report, path string) error {
	p := plot.New()
	p.Title.Text = "Accuracy per kernel (" + r.Descriptor + ")"
	p.Y.Label.Text = "accuracy (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	cv := make(plotter.Values, len(r.CV.Kernels))
	for i, k := range r.CV.Kernels {
		cv[i] = r.CV.Mean(k)
	}
	held := make(plotter.Values, len(r.CV.Kernels))
	for i := range held {
		if i < len(r.HeldOut) {
			held[i] = r.HeldOut[i].Accuracy
		}
	}

	width := vg.Points(18)
	cvBars, err := plotter.NewBarChart(cv, width)
	if err != nil {
		return errors.Wrap(err, "cv bars")
	}
	cvBars.Color = cvColor
	cvBars.LineStyle.Width = 0
	cvBars.Offset = -width / 2

	heldBars, err := plotter.NewBarChart(held, width)
	if err != nil {
		return errors.Wrap(err, "held-out bars")
	}
	heldBars.Color = holdoutColor
	heldBars.LineStyle.Width = 0
	heldBars.Offset = width / 2

	p.Add(cvBars, heldBars)
	p.Legend.Add("cross-validation mean", cvBars)
	p.Legend.Add("held-out", heldBars)
	p.Legend.Top = true
	p.NominalX(r.CV.Kernels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
