// Package digittest draws small synthetic "0" and "1" images for tests.
package digittest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Size is the edge length of generated images.
const Size = 28

// Zero draws a ring whose radius and centre vary slightly with variant.
func Zero(variant int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	cx := 13.5 + float64(variant%3-1)
	cy := 13.5 + float64((variant/3)%3-1)
	r := 8.0 + float64(variant%2)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if math.Abs(d-r) <= 1.5 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// One draws a vertical bar whose column and length vary slightly with variant.
func One(variant int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	x0 := 12 + variant%3
	top := 4 + variant%2
	for y := top; y < Size-4; y++ {
		for x := x0; x < x0+3; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

// WriteClass writes n images produced by draw into dir as PNG files named
// img_000.png, img_001.png and so on. dir is created if needed.
func WriteClass(t testing.TB, dir string, n int, draw func(int) *image.Gray) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create %s: %v", dir, err)
	}
	for i := 0; i < n; i++ {
		WritePNG(t, filepath.Join(dir, fmt.Sprintf("img_%03d.png", i)), draw(i))
	}
}

// WritePNG encodes img to path.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// Layout writes the train/test directory tree used by the CLI under root:
// train/zero, train/one, test/zero and test/one.
func Layout(t testing.TB, root string, trainPerClass, testPerClass int) {
	t.Helper()
	WriteClass(t, filepath.Join(root, "train", "zero"), trainPerClass, Zero)
	WriteClass(t, filepath.Join(root, "train", "one"), trainPerClass, One)
	WriteClass(t, filepath.Join(root, "test", "zero"), testPerClass, func(i int) *image.Gray { return Zero(i + 1) })
	WriteClass(t, filepath.Join(root, "test", "one"), testPerClass, func(i int) *image.Gray { return One(i + 1) })
}

// Scaled enlarges img by an integer factor with nearest-neighbour sampling.
func Scaled(img *image.Gray, factor int) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	for y := 0; y < b.Dy()*factor; y++ {
		for x := 0; x < b.Dx()*factor; x++ {
			out.SetGray(x, y, img.GrayAt(b.Min.X+x/factor, b.Min.Y+y/factor))
		}
	}
	return out
}
