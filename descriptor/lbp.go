package descriptor

import (
	"image"
	"math/bits"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// uniformBins is the number of uniform 8-bit patterns plus one bin shared by
// all non-uniform patterns.
const uniformBins = 59

// neighbours lists the 8 radius-1 offsets clockwise from the top-left pixel.
var neighbours = [8]image.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0},
	{X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0},
}

// uniformTable maps every 8-bit pattern to its histogram bin.
var uniformTable = buildUniformTable()

func buildUniformTable() [256]int {
	var table [256]int
	next := 0
	for code := 0; code < 256; code++ {
		if transitions(uint8(code)) <= 2 {
			table[code] = next
			next++
		} else {
			table[code] = uniformBins - 1
		}
	}
	return table
}

// transitions counts circular 0/1 changes in an 8-bit pattern.
func transitions(code uint8) int {
	return bits.OnesCount8(code ^ bits.RotateLeft8(code, 1))
}

// LBPConfig holds the layout of a local binary pattern descriptor.
type LBPConfig struct {
	Window image.Point
	// GridX and GridY split the window into cells, each with its own histogram.
	GridX int
	GridY int
	// Uniform maps the 256 patterns onto 59 bins.
	Uniform bool
}

// DefaultLBPConfig returns a 4x4 grid of 7x7 cells over a 28x28 window with
// uniform patterns.
func DefaultLBPConfig() LBPConfig {
	return LBPConfig{
		Window:  DefaultWindow,
		GridX:   4,
		GridY:   4,
		Uniform: true,
	}
}

// Validate checks that the grid divides the window.
func (c LBPConfig) Validate() error {
	if c.Window.X <= 0 || c.Window.Y <= 0 {
		return errors.NewValidationError("window", "must be positive", c.Window)
	}
	if c.GridX <= 0 || c.GridY <= 0 {
		return errors.NewValidationError("grid", "must be positive", image.Point{X: c.GridX, Y: c.GridY})
	}
	if c.Window.X%c.GridX != 0 || c.Window.Y%c.GridY != 0 {
		return errors.NewValidationError("grid", "must divide the window", image.Point{X: c.GridX, Y: c.GridY})
	}
	return nil
}

// LBP is a local binary pattern histogram descriptor.
type LBP struct {
	cfg  LBPConfig
	bins int
	size int
}

// NewLBP validates cfg and builds the descriptor.
func NewLBP(cfg LBPConfig) (*LBP, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bins := 256
	if cfg.Uniform {
		bins = uniformBins
	}
	return &LBP{cfg: cfg, bins: bins, size: cfg.GridX * cfg.GridY * bins}, nil
}

// Name implements Descriptor.
func (l *LBP) Name() string { return "lbp" }

// Size implements Descriptor.
func (l *LBP) Size() int { return l.size }

// Window implements Descriptor.
func (l *LBP) Window() image.Point { return l.cfg.Window }

// Config returns the configuration the descriptor was built with.
func (l *LBP) Config() LBPConfig { return l.cfg }

// Compute implements Descriptor.
//
// A neighbour sets its bit when it is at least as bright as the centre pixel;
// borders are replicated. Each cell histogram is normalized to sum to one.
func (l *LBP) Compute(img *image.Gray) ([]float64, error) {
	if err := checkImage("LBP.Compute", img, l.cfg.Window); err != nil {
		return nil, err
	}

	w, h := l.cfg.Window.X, l.cfg.Window.Y
	pix := img.Pix
	stride := img.Stride
	at := func(x, y int) uint8 {
		return pix[clamp(y, h)*stride+clamp(x, w)]
	}

	cellW, cellH := w/l.cfg.GridX, h/l.cfg.GridY
	out := make([]float64, l.size)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := at(x, y)
			var code uint8
			for bit, n := range neighbours {
				if at(x+n.X, y+n.Y) >= center {
					code |= 1 << uint(bit)
				}
			}

			bin := int(code)
			if l.cfg.Uniform {
				bin = uniformTable[code]
			}
			cell := (y/cellH)*l.cfg.GridX + x/cellW
			out[cell*l.bins+bin]++
		}
	}

	for cell := 0; cell < l.cfg.GridX*l.cfg.GridY; cell++ {
		hist := out[cell*l.bins : (cell+1)*l.bins]
		floats.Scale(1/float64(cellW*cellH), hist)
	}
	return out, nil
}
