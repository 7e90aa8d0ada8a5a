// ABOUTME: Camera access for still captures with single-owner stream discipline
// ABOUTME: A Capturer owns at most one open stream and always releases it on Close

package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/markalston/fieldreport/internal/capture"
)

// JPEGQuality matches the default quality browsers use for canvas JPEG export
const JPEGQuality = 92

var (
	// ErrStreamOpen is returned when opening a second stream
	ErrStreamOpen = errors.New("camera stream already open")
	// ErrNotOpen is returned when capturing without an open stream
	ErrNotOpen = errors.New("camera stream not open")
	// ErrDisposed is returned after Dispose
	ErrDisposed = errors.New("camera disposed")
	// ErrClosed is returned by an Open overtaken by Close
	ErrClosed = errors.New("camera closed while opening")
)

// Device is a source of camera streams
type Device interface {
	Name() string
	CheckPermission(ctx context.Context) (bool, error)
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open camera that yields still frames
type Stream interface {
	Capture(ctx context.Context) (image.Image, error)
	Close() error
}

// Capturer owns the camera stream for one view
type Capturer struct {
	device Device

	mu        sync.Mutex
	stream    Stream
	streamCtx context.Context
	cancel    context.CancelFunc
	disposed  bool

	// gen advances on every release so an in-flight Open can tell it lost
	gen     uint64
	openGen uint64
	opening bool
}

// NewCapturer creates a capturer for device
func NewCapturer(device Device) *Capturer {
	return &Capturer{device: device}
}

// Open checks access and starts a stream. Denied access fails with
// *capture.PermissionError; any other failure wraps
// capture.ErrCameraUnavailable. The device is not called under the lock:
// a Close or Dispose that lands while Open is in flight wins, and the late
// stream is released with ErrClosed.
func (c *Capturer) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.stream != nil || (c.opening && c.openGen == c.gen) {
		c.mu.Unlock()
		return ErrStreamOpen
	}
	gen := c.gen
	c.opening, c.openGen = true, gen
	c.mu.Unlock()

	stream, err := c.start(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openGen == gen {
		c.opening = false
	}
	if err != nil {
		return err
	}
	if c.gen != gen || c.disposed {
		if cerr := stream.Close(); cerr != nil {
			slog.Debug("Late camera stream close failed", "error", cerr)
		}
		slog.Debug("Camera closed before open finished", "device", c.device.Name())
		return ErrClosed
	}
	c.stream = stream
	c.streamCtx, c.cancel = context.WithCancel(context.Background())
	slog.Debug("Camera opened", "device", c.device.Name())
	return nil
}

func (c *Capturer) start(ctx context.Context) (Stream, error) {
	ok, err := c.device.CheckPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", capture.ErrCameraUnavailable, err)
	}
	if !ok {
		return nil, &capture.PermissionError{Device: c.device.Name()}
	}

	stream, err := c.device.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", capture.ErrCameraUnavailable, err)
	}
	return stream, nil
}

// IsOpen reports whether a stream is held
func (c *Capturer) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// Capture grabs one frame and encodes it as a JPEG image. The lock is not
// held while the stream works, so Close can cut a slow capture short.
func (c *Capturer) Capture(ctx context.Context) (capture.Image, error) {
	c.mu.Lock()
	stream, streamCtx := c.stream, c.streamCtx
	c.mu.Unlock()
	if stream == nil {
		return capture.Image{}, ErrNotOpen
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	unwatch := context.AfterFunc(streamCtx, stop)
	defer unwatch()

	frame, err := stream.Capture(ctx)
	if err != nil {
		if streamCtx.Err() != nil {
			return capture.Image{}, ErrNotOpen
		}
		return capture.Image{}, fmt.Errorf("%w: %v", capture.ErrCameraUnavailable, err)
	}
	uri, err := EncodeJPEG(frame)
	if err != nil {
		return capture.Image{}, err
	}
	return capture.Image{
		Name:      fmt.Sprintf("capture-%s.jpg", time.Now().Format("20060102-150405.000")),
		MediaType: "image/jpeg",
		DataURI:   uri,
	}, nil
}

// CaptureInto captures one frame and appends it to batch
func (c *Capturer) CaptureInto(ctx context.Context, batch *capture.Batch) error {
	img, err := c.Capture(ctx)
	if err != nil {
		return err
	}
	batch.Add(img)
	return nil
}

// Close releases the stream. It is safe to call when nothing is open.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release()
}

// Dispose releases the stream and rejects later opens
func (c *Capturer) Dispose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	return c.release()
}

func (c *Capturer) release() error {
	c.gen++
	if c.stream == nil {
		return nil
	}
	c.cancel()
	err := c.stream.Close()
	c.stream, c.streamCtx, c.cancel = nil, nil, nil
	slog.Debug("Camera released", "device", c.device.Name())
	return err
}

// EncodeJPEG renders img as a JPEG data URI
func EncodeJPEG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return capture.EncodeDataURI("image/jpeg", buf.Bytes()), nil
}
