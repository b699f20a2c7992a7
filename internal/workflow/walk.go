package workflow

import (
	"io/fs"
	"os"
	"path/filepath"
)

// WalkFiles returns every file under root whose name carries ext
// (e.g. ".json"), recursing depth-first in directory-listing order.
// Callers must not depend on any ordering beyond that.
//
// A missing root yields an empty slice, not an error; absent optional
// sources contribute zero files.
func WalkFiles(root, ext string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Subdirs returns the names of root's immediate subdirectories in
// directory-listing order.
func Subdirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}
