package descriptor

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// HOGConfig holds the geometry of a histogram of oriented gradients.
type HOGConfig struct {
	Window      image.Point
	Block       image.Point
	BlockStride image.Point
	Cell        image.Point
	Bins        int
	// ClipThreshold is the L2-Hys clipping value applied to each normalized block.
	ClipThreshold float64
}

// DefaultHOGConfig returns the digit configuration: 28x28 window, 8x8 blocks
// moved by 2 pixels, 4x4 cells and 9 orientation bins.
func DefaultHOGConfig() HOGConfig {
	return HOGConfig{
		Window:        DefaultWindow,
		Block:         image.Point{X: 8, Y: 8},
		BlockStride:   image.Point{X: 2, Y: 2},
		Cell:          image.Point{X: 4, Y: 4},
		Bins:          9,
		ClipThreshold: 0.2,
	}
}

// Validate checks that blocks tile the window and cells tile the blocks.
func (c HOGConfig) Validate() error {
	for _, f := range []struct {
		name string
		p    image.Point
	}{
		{"window", c.Window}, {"block", c.Block}, {"block_stride", c.BlockStride}, {"cell", c.Cell},
	} {
		if f.p.X <= 0 || f.p.Y <= 0 {
			return errors.NewValidationError(f.name, "must be positive", f.p)
		}
	}
	if c.Bins <= 0 {
		return errors.NewValidationError("bins", "must be positive", c.Bins)
	}
	if c.ClipThreshold <= 0 {
		return errors.NewValidationError("clip_threshold", "must be positive", c.ClipThreshold)
	}
	if c.Block.X > c.Window.X || c.Block.Y > c.Window.Y {
		return errors.NewValidationError("block", "must fit in the window", c.Block)
	}
	if c.Block.X%c.Cell.X != 0 || c.Block.Y%c.Cell.Y != 0 {
		return errors.NewValidationError("block", "must be a multiple of the cell size", c.Block)
	}
	if (c.Window.X-c.Block.X)%c.BlockStride.X != 0 || (c.Window.Y-c.Block.Y)%c.BlockStride.Y != 0 {
		return errors.NewValidationError("block_stride", "must tile the window", c.BlockStride)
	}
	return nil
}

// HOG is a histogram of oriented gradients descriptor.
type HOG struct {
	cfg      HOGConfig
	blocksX  int
	blocksY  int
	cellsX   int
	cellsY   int
	size     int
	binWidth float64
}

// NewHOG validates cfg and builds the descriptor.
func NewHOG(cfg HOGConfig) (*HOG, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &HOG{
		cfg:      cfg,
		blocksX:  (cfg.Window.X-cfg.Block.X)/cfg.BlockStride.X + 1,
		blocksY:  (cfg.Window.Y-cfg.Block.Y)/cfg.BlockStride.Y + 1,
		cellsX:   cfg.Block.X / cfg.Cell.X,
		cellsY:   cfg.Block.Y / cfg.Cell.Y,
		binWidth: 180 / float64(cfg.Bins),
	}
	h.size = h.blocksX * h.blocksY * h.cellsX * h.cellsY * cfg.Bins
	return h, nil
}

// Name implements Descriptor.
func (h *HOG) Name() string { return "hog" }

// Size implements Descriptor.
func (h *HOG) Size() int { return h.size }

// Window implements Descriptor.
func (h *HOG) Window() image.Point { return h.cfg.Window }

// Config returns the configuration the descriptor was built with.
func (h *HOG) Config() HOGConfig { return h.cfg }

// Compute implements Descriptor.
//
// Gradients use centered differences with replicated borders. Orientations
// are unsigned, in [0, 180), and each pixel votes for the two nearest bins
// with its gradient magnitude. Every block is L2-Hys normalized.
func (h *HOG) Compute(img *image.Gray) ([]float64, error) {
	if err := checkImage("HOG.Compute", img, h.cfg.Window); err != nil {
		return nil, err
	}

	w, ht := h.cfg.Window.X, h.cfg.Window.Y
	pix := intensities(img)

	// per-pixel votes: two bins and their weights
	bin0 := make([]int, w*ht)
	bin1 := make([]int, w*ht)
	w0 := make([]float64, w*ht)
	w1 := make([]float64, w*ht)
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			gx := pix[y*w+clamp(x+1, w)] - pix[y*w+clamp(x-1, w)]
			gy := pix[clamp(y+1, ht)*w+x] - pix[clamp(y-1, ht)*w+x]
			mag := math.Hypot(gx, gy)

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			if angle >= 180 {
				angle -= 180
			}

			f := angle/h.binWidth - 0.5
			b := math.Floor(f)
			frac := f - b
			i := y*w + x
			bin0[i] = mod(int(b), h.cfg.Bins)
			bin1[i] = mod(int(b)+1, h.cfg.Bins)
			w0[i] = mag * (1 - frac)
			w1[i] = mag * frac
		}
	}

	blockLen := h.cellsX * h.cellsY * h.cfg.Bins
	out := make([]float64, h.size)
	offset := 0
	for by := 0; by < h.blocksY; by++ {
		for bx := 0; bx < h.blocksX; bx++ {
			block := out[offset : offset+blockLen]
			originX := bx * h.cfg.BlockStride.X
			originY := by * h.cfg.BlockStride.Y

			for cy := 0; cy < h.cellsY; cy++ {
				for cx := 0; cx < h.cellsX; cx++ {
					hist := block[(cy*h.cellsX+cx)*h.cfg.Bins : (cy*h.cellsX+cx+1)*h.cfg.Bins]
					x0 := originX + cx*h.cfg.Cell.X
					y0 := originY + cy*h.cfg.Cell.Y
					for y := y0; y < y0+h.cfg.Cell.Y; y++ {
						for x := x0; x < x0+h.cfg.Cell.X; x++ {
							i := y*w + x
							hist[bin0[i]] += w0[i]
							hist[bin1[i]] += w1[i]
						}
					}
				}
			}

			l2Hys(block, h.cfg.ClipThreshold)
			offset += blockLen
		}
	}

	if err := errors.CheckNumericalStability("HOG.Compute", out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// l2Hys normalizes v in place: L2 norm, clip, L2 norm again.
func l2Hys(v []float64, clip float64) {
	const eps = 1e-3
	norm := floats.Norm(v, 2)
	floats.Scale(1/math.Sqrt(norm*norm+eps*eps), v)
	for i := range v {
		v[i] = errors.ClipValue(v[i], 0, clip)
	}
	norm = floats.Norm(v, 2)
	floats.Scale(1/math.Sqrt(norm*norm+eps*eps), v)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
