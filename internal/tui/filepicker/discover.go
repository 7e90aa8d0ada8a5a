// ABOUTME: Finds image files in a directory for the browse view
// ABOUTME: Matches on extension; content is checked when the file is decoded

package filepicker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// ImageFile is a discovered image
type ImageFile struct {
	Name string
	Path string
}

// Discover lists image files in dir sorted by name. A missing directory
// yields an empty list.
func Discover(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []ImageFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := []ImageFile{}
	for _, entry := range entries {
		if entry.IsDir() || !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, ImageFile{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
