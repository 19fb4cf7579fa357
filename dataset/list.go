package dataset

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// ClassDir pairs a label with the directory holding its images.
type ClassDir struct {
	Label int
	Dir   string
}

// ListImages returns the regular, non-hidden files of dir sorted by name.
// Symlinks count when their target is a regular file; dangling links are
// skipped. When limit is positive at most limit paths are returned.
//
// Sorting makes fold contents reproducible across file systems.
func ListImages(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list images in %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !isRegular(e, path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return paths, nil
}

// isRegular resolves symlinks, which ReadDir reports with their own mode.
func isRegular(e fs.DirEntry, path string) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Enumerate lists the images of every class in order and returns the paths
// with one label per path. Classes are visited in the given order and files
// in sorted order.
func Enumerate(classes []ClassDir, perClass int) ([]string, []int, error) {
	var (
		paths  []string
		labels []int
	)
	for _, c := range classes {
		files, err := ListImages(c.Dir, perClass)
		if err != nil {
			return nil, nil, err
		}
		paths = append(paths, files...)
		for range files {
			labels = append(labels, c.Label)
		}
	}
	return paths, labels, nil
}
