// ABOUTME: Camera device backed by a video node and an external frame grabber
// ABOUTME: Each capture runs the configured command and decodes the frame from stdout

package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// DevicePlaceholder in a capture command is replaced with the device path
const DevicePlaceholder = "{device}"

// CommandDevice captures frames by running Command against Path
type CommandDevice struct {
	Path    string
	Command []string
}

// Name returns the device path
func (d *CommandDevice) Name() string {
	return d.Path
}

// CheckPermission reports whether the device node can be opened for reading
func (d *CommandDevice) CheckPermission(ctx context.Context) (bool, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return false, nil
		}
		return false, err
	}
	f.Close()
	return true, nil
}

// Open validates the command and returns a stream
func (d *CommandDevice) Open(ctx context.Context) (Stream, error) {
	if len(d.Command) == 0 {
		return nil, fmt.Errorf("no capture command configured")
	}
	if _, err := exec.LookPath(d.Command[0]); err != nil {
		return nil, fmt.Errorf("capture command %q not found: %w", d.Command[0], err)
	}
	return &commandStream{device: d}, nil
}

func (d *CommandDevice) args() []string {
	args := make([]string, len(d.Command)-1)
	for i, arg := range d.Command[1:] {
		args[i] = strings.ReplaceAll(arg, DevicePlaceholder, d.Path)
	}
	return args
}

type commandStream struct {
	device *CommandDevice

	mu     sync.Mutex
	closed bool
}

func (s *commandStream) Capture(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrNotOpen
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.device.Command[0], s.device.args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("capture command failed: %w", err)
		}
		return nil, fmt.Errorf("capture command failed: %w: %s", err, msg)
	}

	frame, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return frame, nil
}

func (s *commandStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
