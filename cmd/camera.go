// ABOUTME: Camera check command
// ABOUTME: Reports whether the configured camera device can be accessed

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/capture/camera"
)

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Camera utilities",
}

var cameraCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check access to the camera device",
	Long: `Check that the configured camera device can be opened for capture.

Exit codes:
  0 - Camera accessible
  1 - Access denied
  2 - Error (device missing, capture command unavailable)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runCameraCheck(ctx, os.Stdout, rt.cameraDevice()))
	},
}

func init() {
	rootCmd.AddCommand(cameraCmd)
	cameraCmd.AddCommand(cameraCheckCmd)
}

// runCameraCheck opens and releases the camera, returning the exit code
func runCameraCheck(ctx context.Context, w io.Writer, device camera.Device) int {
	c := camera.NewCapturer(device)
	defer c.Dispose()

	if err := c.Open(ctx); err != nil {
		return failNotice(w, capture.CameraNotice(err), err)
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]any{"device": device.Name(), "accessible": true})
	} else {
		fmt.Fprintf(w, "Camera:  %s\nAccess:  granted\n", device.Name())
	}
	return exitOK
}
