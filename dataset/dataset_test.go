package dataset

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/descriptor"
	"github.com/YuminosukeSato/digitcv/internal/digittest"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
)

func twoClasses(t *testing.T, perClass int) []ClassDir {
	t.Helper()
	root := t.TempDir()
	zero := filepath.Join(root, "zero")
	one := filepath.Join(root, "one")
	digittest.WriteClass(t, zero, perClass, digittest.Zero)
	digittest.WriteClass(t, one, perClass, digittest.One)
	return []ClassDir{{Label: 0, Dir: zero}, {Label: 1, Dir: one}}
}

func newLoader(t *testing.T, tag string, opts ...LoaderOption) *Loader {
	t.Helper()
	d, err := descriptor.New(tag)
	require.NoError(t, err)
	logger, _ := log.NewTestLogger(log.LevelDebug)
	opts = append([]LoaderOption{WithLogger(logger)}, opts...)
	return NewLoader(d, opts...)
}

func TestListImagesSortedAndLimited(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.png", "a.png", "b.png", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	paths, err := ListImages(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.png"),
	}, paths)

	limited, err := ListImages(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, paths[:2], limited)
}

func TestListImagesMissingDir(t *testing.T) {
	_, err := ListImages(filepath.Join(t.TempDir(), "missing"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

// linkedClasses mirrors twoClasses with directories of symlinks pointing at
// the real files, plus one dangling link per class.
func linkedClasses(t *testing.T, perClass int) []ClassDir {
	t.Helper()
	src := twoClasses(t, perClass)
	root := t.TempDir()
	linked := make([]ClassDir, len(src))
	for i, c := range src {
		dir := filepath.Join(root, filepath.Base(c.Dir))
		require.NoError(t, os.Mkdir(dir, 0o755))
		entries, err := os.ReadDir(c.Dir)
		require.NoError(t, err)
		for _, e := range entries {
			require.NoError(t, os.Symlink(filepath.Join(c.Dir, e.Name()), filepath.Join(dir, e.Name())))
		}
		require.NoError(t, os.Symlink(filepath.Join(c.Dir, "gone.png"), filepath.Join(dir, "zz_gone.png")))
		linked[i] = ClassDir{Label: c.Label, Dir: dir}
	}
	return linked
}

func TestListImagesFollowsSymlinks(t *testing.T) {
	classes := linkedClasses(t, 3)

	paths, err := ListImages(classes[0].Dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(classes[0].Dir, "img_000.png"),
		filepath.Join(classes[0].Dir, "img_001.png"),
		filepath.Join(classes[0].Dir, "img_002.png"),
	}, paths)

	require.NoError(t, os.Symlink(classes[1].Dir, filepath.Join(classes[0].Dir, "dirlink")))
	paths, err = ListImages(classes[0].Dir, 0)
	require.NoError(t, err)
	assert.Len(t, paths, 3, "links to directories are not images")
}

func TestLoaderLoadSymlinkedImages(t *testing.T) {
	classes := linkedClasses(t, 3)
	loader := newLoader(t, "hog")

	ds, err := loader.Load(context.Background(), classes)
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Len())
	assert.Equal(t, map[int]int{0: 3, 1: 3}, ds.ClassCounts())
}

func TestEnumerateClassOrder(t *testing.T) {
	classes := twoClasses(t, 3)

	paths, labels, err := Enumerate(classes, 0)
	require.NoError(t, err)
	assert.Len(t, paths, 6)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, labels)
	assert.Equal(t, filepath.Join(classes[1].Dir, "img_000.png"), paths[3])
}

func TestLoaderLoad(t *testing.T) {
	for _, tag := range []string{"hog", "lbp"} {
		t.Run(tag, func(t *testing.T) {
			classes := twoClasses(t, 10)
			loader := newLoader(t, tag, WithWorkers(3))

			ds, err := loader.Load(context.Background(), classes)
			require.NoError(t, err)

			assert.Equal(t, 20, ds.Len())
			assert.Equal(t, loader.Descriptor().Size(), ds.Dim())
			assert.Equal(t, tag, ds.Descriptor)
			assert.Equal(t, map[int]int{0: 10, 1: 10}, ds.ClassCounts())
			assert.Len(t, ds.Paths, 20)
		})
	}
}

func TestLoaderRowsMatchSequentialCompute(t *testing.T) {
	classes := twoClasses(t, 4)
	loader := newLoader(t, "hog", WithWorkers(4))

	ds, err := loader.Load(context.Background(), classes)
	require.NoError(t, err)

	for i, path := range ds.Paths {
		img, err := LoadGray(path)
		require.NoError(t, err)
		want, err := loader.Descriptor().Compute(img)
		require.NoError(t, err)
		assert.Equal(t, want, ds.Row(i), "row %d (%s)", i, path)
	}
}

func TestLoaderLimited(t *testing.T) {
	classes := twoClasses(t, 6)
	ds, err := newLoader(t, "lbp").LoadLimited(context.Background(), classes, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []int{0, 0, 1, 1}, ds.Labels)
}

func TestLoaderEmpty(t *testing.T) {
	classes := []ClassDir{{Label: 0, Dir: t.TempDir()}, {Label: 1, Dir: t.TempDir()}}
	_, err := newLoader(t, "hog").Load(context.Background(), classes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestLoaderCorruptFile(t *testing.T) {
	classes := twoClasses(t, 3)
	bad := filepath.Join(classes[0].Dir, "img_999.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))

	_, err := newLoader(t, "hog").Load(context.Background(), classes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestLoaderWrongSize(t *testing.T) {
	dir := t.TempDir()
	digittest.WritePNG(t, filepath.Join(dir, "big.png"), image.NewGray(image.Rect(0, 0, 32, 32)))

	_, err := newLoader(t, "hog").Load(context.Background(), []ClassDir{{Label: 0, Dir: dir}})
	require.Error(t, err)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
	assert.Contains(t, err.Error(), "big.png")
}

func TestLoaderResize(t *testing.T) {
	dir := t.TempDir()
	digittest.WritePNG(t, filepath.Join(dir, "big.png"), image.NewGray(image.Rect(0, 0, 56, 56)))

	ds, err := newLoader(t, "hog", WithResize(descriptor.DefaultWindow)).
		Load(context.Background(), []ClassDir{{Label: 0, Dir: dir}})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoaderCustomSource(t *testing.T) {
	src := func(path string) (*image.Gray, error) {
		return digittest.One(0), nil
	}
	ds, err := newLoader(t, "hog", WithImageSource(src)).
		LoadPaths(context.Background(), []string{"a", "b"}, []int{1, 1})
	require.NoError(t, err)
	assert.True(t, mat.Equal(ds.Features.RowView(0), ds.Features.RowView(1)))
}

func TestLoaderNilImage(t *testing.T) {
	src := func(path string) (*image.Gray, error) { return nil, nil }
	_, err := newLoader(t, "hog", WithImageSource(src)).
		LoadPaths(context.Background(), []string{"a"}, []int{0})
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestLoaderTimeout(t *testing.T) {
	src := func(path string) (*image.Gray, error) {
		time.Sleep(50 * time.Millisecond)
		return digittest.Zero(0), nil
	}
	loader := newLoader(t, "hog", WithImageSource(src), WithWorkers(1), WithTimeout(10*time.Millisecond))
	_, err := loader.LoadPaths(context.Background(), []string{"a", "b", "c", "d"}, []int{0, 0, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLoadPathsMismatch(t *testing.T) {
	_, err := newLoader(t, "hog").LoadPaths(context.Background(), []string{"a"}, nil)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestDatasetSubset(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	ds, err := New(features, []int{0, 1, 0}, nil, "test")
	require.NoError(t, err)

	x, y, err := ds.Subset([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, y)
	assert.Equal(t, []float64{5, 6}, mat.Row(nil, 0, x))
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 1, x))

	_, _, err = ds.Subset(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, _, err = ds.Subset([]int{3})
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestDatasetNewMisaligned(t *testing.T) {
	_, err := New(mat.NewDense(2, 2, nil), []int{0}, nil, "test")
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestToGrayAndResize(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(5, 5, 15, 25))
	g := ToGray(rgba)
	assert.Equal(t, image.Rect(0, 0, 10, 20), g.Bounds())

	r := Resize(g, image.Pt(28, 28))
	assert.Equal(t, image.Pt(28, 28), r.Bounds().Size())
	assert.Same(t, r, Resize(r, image.Pt(28, 28)))
}
