// ABOUTME: Encoded image values and data URI helpers for report batches
// ABOUTME: Sniffs media types so only image content enters a batch

package capture

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Image is one encoded image in a report batch
type Image struct {
	Name      string
	MediaType string
	DataURI   string
}

// Size returns the decoded payload size in bytes
func (img Image) Size() int {
	_, payload, ok := strings.Cut(img.DataURI, ",")
	if !ok {
		return 0
	}
	return base64.StdEncoding.DecodedLen(len(payload))
}

// EncodeDataURI renders data as a base64 data URI
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// NewImage sniffs data and wraps it as an Image. Content that is not an
// image is rejected.
func NewImage(name string, data []byte) (Image, error) {
	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		return Image{}, fmt.Errorf("%s is not an image (detected %s)", name, mediaType)
	}
	return Image{
		Name:      name,
		MediaType: mediaType,
		DataURI:   EncodeDataURI(mediaType, data),
	}, nil
}

// DecodeFile reads an image file from disk
func DecodeFile(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewImage(filepath.Base(path), data)
}
