// ABOUTME: Ordered in-memory batch of images awaiting submission
// ABOUTME: Guarded by a mutex so gallery decodes and camera captures can append safely

package capture

import (
	"fmt"
	"sync"
)

// Batch is an ordered list of images. The zero value is ready to use.
type Batch struct {
	mu     sync.Mutex
	images []Image
}

// Add appends images in order
func (b *Batch) Add(images ...Image) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = append(b.images, images...)
}

// Remove deletes the image at position i, keeping the others in order
func (b *Batch) Remove(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.images) {
		return fmt.Errorf("image index %d out of range [0, %d)", i, len(b.images))
	}
	b.images = append(b.images[:i:i], b.images[i+1:]...)
	return nil
}

// Len returns the number of images
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.images)
}

// Images returns a copy of the batch contents
func (b *Batch) Images() []Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Image(nil), b.images...)
}

// DataURIs returns the encoded images in batch order
func (b *Batch) DataURIs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	uris := make([]string, len(b.images))
	for i, img := range b.images {
		uris[i] = img.DataURI
	}
	return uris
}

// Clear empties the batch
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images = nil
}
