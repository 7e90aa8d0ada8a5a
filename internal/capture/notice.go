// ABOUTME: User-facing notifications for capture, upload, and session actions
// ABOUTME: Maps pipeline and backend errors to titled toasts

package capture

import "errors"

// Notice is a transient user notification
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

// ReportSent is shown after a successful submission
func ReportSent() Notice {
	return Notice{Title: "Report Sent", Description: "Your report has been sent successfully."}
}

// LoggedOut is shown after logout
func LoggedOut() Notice {
	return Notice{Title: "Logged Out", Description: "You have been successfully logged out."}
}

// SessionExpired is shown when the backend rejects the stored token mid-session
func SessionExpired() Notice {
	return Notice{Title: "Session Expired", Description: "Please log in again.", Destructive: true}
}

// LoginFailed wraps a login error. The description is the cause without
// the title prefix.
func LoginFailed(err error) Notice {
	if inner := errors.Unwrap(err); inner != nil {
		err = inner
	}
	return Notice{Title: "Authentication Failed", Description: describe(err, "Please check your credentials and try again."), Destructive: true}
}

// UploadNotice maps a submission error to a notice
func UploadNotice(err error) Notice {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return Notice{Title: "No Images Selected", Description: validationErr.Message, Destructive: true}
	}
	return Notice{Title: "Upload Failed", Description: describe(err, "Failed to send report. Please try again."), Destructive: true}
}

// CameraNotice maps a camera error to a notice
func CameraNotice(err error) Notice {
	var permErr *PermissionError
	if errors.As(err, &permErr) {
		return Notice{Title: "Camera Access Denied", Description: "Please grant read access to " + permErr.Device + ".", Destructive: true}
	}
	return Notice{Title: "Camera Error", Description: "Failed to access camera. Please try again.", Destructive: true}
}

func describe(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
