// Package descriptor turns a grayscale digit image into a fixed-length
// feature vector.
//
// Two algorithms are provided, a histogram of oriented gradients ("hog") and
// uniform local binary patterns ("lbp"). Both are immutable after
// construction, so a single instance is shared by every worker of a batch.
// Further algorithms are added with Register.
package descriptor

import (
	"image"
	"sort"
	"strings"
	"sync"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// DefaultWindow is the nominal digit image size.
var DefaultWindow = image.Point{X: 28, Y: 28}

// Descriptor computes a feature vector from an image.
type Descriptor interface {
	// Name returns the registry tag of the algorithm.
	Name() string

	// Size returns the length of every vector produced by Compute.
	Size() int

	// Window returns the image size Compute accepts.
	Window() image.Point

	// Compute returns a new vector of length Size(). It fails when img does
	// not match Window().
	Compute(img *image.Gray) ([]float64, error)
}

// Factory builds a Descriptor with its default configuration.
type Factory func() (Descriptor, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"hog": func() (Descriptor, error) { return NewHOG(DefaultHOGConfig()) },
		"lbp": func() (Descriptor, error) { return NewLBP(DefaultLBPConfig()) },
	}
)

// Register makes a descriptor available under tag.
func Register(tag string, factory Factory) error {
	if tag == "" {
		return errors.NewValidationError("tag", "must not be empty", tag)
	}
	if factory == nil {
		return errors.NewValidationError("factory", "must not be nil", tag)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[tag]; ok {
		return errors.NewValidationError("tag", "already registered", tag)
	}
	registry[tag] = factory
	return nil
}

// New builds the descriptor registered under tag.
func New(tag string) (Descriptor, error) {
	registryMu.RLock()
	factory, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.NewValidationError("descriptor", "unknown descriptor, expected one of "+strings.Join(Tags(), ", "), tag)
	}

	d, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, "building descriptor %q", tag)
	}
	return d, nil
}

// Tags returns the registered tags in sorted order.
func Tags() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// IsRegistered reports whether tag names a known descriptor.
func IsRegistered(tag string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[tag]
	return ok
}

// checkImage validates img against the expected window.
func checkImage(op string, img *image.Gray, window image.Point) error {
	if img == nil {
		return errors.NewValueError(op, "nil image")
	}
	size := img.Bounds().Size()
	if size.Y != window.Y {
		return errors.NewDimensionError(op, window.Y, size.Y, 0)
	}
	if size.X != window.X {
		return errors.NewDimensionError(op, window.X, size.X, 1)
	}
	return nil
}

// intensities returns the pixels of img as a row-major float slice.
func intensities(img *image.Gray) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x, v := range row {
			out[y*w+x] = float64(v)
		}
	}
	return out
}
