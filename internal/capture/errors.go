// ABOUTME: Errors raised by the capture pipeline
// ABOUTME: Validation of empty batches and denied camera access

package capture

import "errors"

// ErrCameraUnavailable wraps failures to start or read the camera
var ErrCameraUnavailable = errors.New("camera unavailable")

// ValidationError is a submission rejected before reaching the backend
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PermissionError means access to the camera device was denied
type PermissionError struct {
	Device string
	Err    error
}

func (e *PermissionError) Error() string {
	if e.Err != nil {
		return "camera access denied for " + e.Device + ": " + e.Err.Error()
	}
	return "camera access denied for " + e.Device
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}
