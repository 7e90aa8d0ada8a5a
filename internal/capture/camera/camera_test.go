package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/markalston/fieldreport/internal/capture"
)

type fakeStream struct {
	closed int
}

func (s *fakeStream) Capture(ctx context.Context) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img, nil
}

func (s *fakeStream) Close() error {
	s.closed++
	return nil
}

type fakeDevice struct {
	allowed bool
	opens   int
	stream  *fakeStream
}

func (d *fakeDevice) Name() string { return "fake0" }

func (d *fakeDevice) CheckPermission(ctx context.Context) (bool, error) {
	return d.allowed, nil
}

func (d *fakeDevice) Open(ctx context.Context) (Stream, error) {
	d.opens++
	d.stream = &fakeStream{}
	return d.stream, nil
}

func TestOpenDenied(t *testing.T) {
	dev := &fakeDevice{allowed: false}
	c := NewCapturer(dev)

	err := c.Open(context.Background())
	var permErr *capture.PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected *capture.PermissionError, got %v", err)
	}
	if dev.opens != 0 || c.IsOpen() {
		t.Error("denied access must not open a stream")
	}
}

func TestSingleOwner(t *testing.T) {
	dev := &fakeDevice{allowed: true}
	c := NewCapturer(dev)

	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := c.Open(context.Background()); !errors.Is(err, ErrStreamOpen) {
		t.Errorf("expected ErrStreamOpen, got %v", err)
	}
	if dev.opens != 1 {
		t.Errorf("expected one device open, got %d", dev.opens)
	}

	first := dev.stream
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if first.closed != 1 {
		t.Errorf("expected stream released once, got %d", first.closed)
	}
	// Closing twice is harmless
	c.Close()
	if first.closed != 1 {
		t.Errorf("expected no second release, got %d", first.closed)
	}

	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	c.Dispose()
	if dev.stream.closed != 1 {
		t.Error("Dispose must release the stream")
	}
	if err := c.Open(context.Background()); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}

func TestCaptureInto(t *testing.T) {
	c := NewCapturer(&fakeDevice{allowed: true})
	var batch capture.Batch

	if err := c.CaptureInto(context.Background(), &batch); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}

	c.Open(context.Background())
	defer c.Close()
	for i := 0; i < 2; i++ {
		if err := c.CaptureInto(context.Background(), &batch); err != nil {
			t.Fatalf("CaptureInto error: %v", err)
		}
	}

	images := batch.Images()
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].MediaType != "image/jpeg" || !strings.HasPrefix(images[0].DataURI, "data:image/jpeg;base64,") {
		t.Errorf("unexpected image %+v", images[0].Name)
	}
}

// hangingStream blocks every capture until its context ends
type hangingStream struct {
	started chan struct{}
}

func (s *hangingStream) Capture(ctx context.Context) (image.Image, error) {
	close(s.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *hangingStream) Close() error { return nil }

type hangingDevice struct {
	stream *hangingStream
}

func (d *hangingDevice) Name() string { return "hang0" }

func (d *hangingDevice) CheckPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (d *hangingDevice) Open(ctx context.Context) (Stream, error) {
	return d.stream, nil
}

func TestCloseInterruptsCapture(t *testing.T) {
	stream := &hangingStream{started: make(chan struct{})}
	c := NewCapturer(&hangingDevice{stream: stream})
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open error: %v", err)
	}

	captured := make(chan error, 1)
	go func() {
		_, err := c.Capture(context.Background())
		captured <- err
	}()
	<-stream.started

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()

	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close blocked while a capture was in flight")
	}

	select {
	case err := <-captured:
		if !errors.Is(err, ErrNotOpen) {
			t.Errorf("expected ErrNotOpen from the interrupted capture, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("capture kept running after Close")
	}
	if c.IsOpen() {
		t.Error("expected stream released")
	}
}

func TestCaptureKeepsCallerDeadline(t *testing.T) {
	stream := &hangingStream{started: make(chan struct{})}
	c := NewCapturer(&hangingDevice{stream: stream})
	c.Open(context.Background())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Capture(ctx)
	if !errors.Is(err, capture.ErrCameraUnavailable) {
		t.Errorf("expected ErrCameraUnavailable after the caller's deadline, got %v", err)
	}
	if !c.IsOpen() {
		t.Error("a timed-out capture must not release the stream")
	}
}

// gatedDevice holds Open until release is closed
type gatedDevice struct {
	entered chan struct{}
	release chan struct{}
	stream  *fakeStream
}

func (d *gatedDevice) Name() string { return "gated0" }

func (d *gatedDevice) CheckPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (d *gatedDevice) Open(ctx context.Context) (Stream, error) {
	close(d.entered)
	<-d.release
	return d.stream, nil
}

func TestCloseDuringOpenReleasesLateStream(t *testing.T) {
	dev := &gatedDevice{entered: make(chan struct{}), release: make(chan struct{}), stream: &fakeStream{}}
	c := NewCapturer(dev)

	opened := make(chan error, 1)
	go func() { opened <- c.Open(context.Background()) }()
	<-dev.entered

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind an in-flight Open")
	}

	close(dev.release)
	if err := <-opened; !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if c.IsOpen() {
		t.Error("a stream opened after Close must not be kept")
	}
	if dev.stream.closed != 1 {
		t.Errorf("expected the late stream closed once, got %d", dev.stream.closed)
	}

	// The capturer is reusable once the abandoned open is gone
	dev.entered, dev.release = make(chan struct{}), make(chan struct{})
	close(dev.release)
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if !c.IsOpen() {
		t.Error("expected reopen to hold the stream")
	}
	c.Close()
}

func TestEncodeJPEGRoundTrip(t *testing.T) {
	uri, err := EncodeJPEG(image.NewGray(image.Rect(0, 0, 8, 6)))
	if err != nil {
		t.Fatalf("EncodeJPEG error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("invalid jpeg: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 6 {
		t.Errorf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCommandDevice(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "video0")
	os.WriteFile(node, nil, 0o600)

	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3)))
	frame := filepath.Join(dir, "frame.png")
	os.WriteFile(frame, buf.Bytes(), 0o600)

	dev := &CommandDevice{Path: node, Command: []string{"cat", frame}}
	ok, err := dev.CheckPermission(context.Background())
	if err != nil || !ok {
		t.Fatalf("CheckPermission = %v, %v", ok, err)
	}

	c := NewCapturer(dev)
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer c.Close()

	img, err := c.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	if img.MediaType != "image/jpeg" {
		t.Errorf("expected jpeg re-encode, got %s", img.MediaType)
	}
}

func TestCommandDeviceMissingNode(t *testing.T) {
	dev := &CommandDevice{Path: filepath.Join(t.TempDir(), "nope"), Command: []string{"cat"}}
	c := NewCapturer(dev)

	err := c.Open(context.Background())
	if !errors.Is(err, capture.ErrCameraUnavailable) {
		t.Errorf("expected ErrCameraUnavailable, got %v", err)
	}
}

func TestCommandDeviceArgs(t *testing.T) {
	dev := &CommandDevice{Path: "/dev/video2", Command: []string{"ffmpeg", "-i", "{device}", "-"}}
	if got := strings.Join(dev.args(), " "); got != "-i /dev/video2 -" {
		t.Errorf("unexpected args %q", got)
	}
}
