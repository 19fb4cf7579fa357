package dataset

import (
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// ImageSource loads the grayscale image stored at path.
type ImageSource func(path string) (*image.Gray, error)

// LoadGray decodes the image at path and converts it to 8-bit grayscale.
// PNG, JPEG, GIF, BMP, TIFF and WebP files are supported.
func LoadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", path)
	}
	return ToGray(img), nil
}

// ResizingSource returns an ImageSource that scales every image to size with
// bilinear interpolation. Images already of that size are returned unchanged.
func ResizingSource(size image.Point) ImageSource {
	return func(path string) (*image.Gray, error) {
		img, err := LoadGray(path)
		if err != nil {
			return nil, err
		}
		return Resize(img, size), nil
	}
}

// ToGray converts img to an *image.Gray whose bounds start at the origin.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// Resize scales img to size.
func Resize(img *image.Gray, size image.Point) *image.Gray {
	if img.Bounds().Size() == size {
		return img
	}
	dst := image.NewGray(image.Rect(0, 0, size.X, size.Y))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
