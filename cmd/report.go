// ABOUTME: Report command that submits gallery files and camera captures
// ABOUTME: Builds one ordered batch and sends it as a single report

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/capture/camera"
	"github.com/markalston/fieldreport/internal/models"
)

var reportCaptures int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Send photo reports",
}

var reportSendCmd = &cobra.Command{
	Use:   "send [image files...]",
	Short: "Send images as one report",
	Long: `Send gallery images and/or camera captures as one report.

Files are added in the order given, followed by camera captures.

Example:
  fieldreport report send site1.jpg site2.png --camera 1`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		var device camera.Device
		if reportCaptures > 0 {
			device = rt.cameraDevice()
		}
		exitWith(runReportSend(ctx, os.Stdout, rt, args, device, reportCaptures))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportSendCmd)
	reportSendCmd.Flags().IntVar(&reportCaptures, "camera", 0, "Number of camera captures to add")
}

// runReportSend assembles and submits a batch, returning the exit code
func runReportSend(ctx context.Context, w io.Writer, rt *runtime, files []string, device camera.Device, captures int) int {
	batch := &capture.Batch{}

	if len(files) > 0 {
		if _, err := capture.AddFiles(ctx, batch, files); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitRejected
		}
	}

	if captures > 0 {
		if err := captureFrames(ctx, device, batch, captures); err != nil {
			return failNotice(w, capture.CameraNotice(err), err)
		}
	}

	uploader := &capture.Uploader{
		Reporter: rt.client,
		Batch:    batch,
	}
	images := batch.Len()
	receipt, err := uploader.Submit(ctx)
	if err != nil {
		return failNotice(w, capture.UploadNotice(err), err)
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]any{"images": images, "receipt": receipt})
		return exitOK
	}
	n := capture.ReportSent()
	fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
	fmt.Fprintf(w, "Images: %d\n", images)
	if id := receiptID(receipt); id != "" {
		fmt.Fprintf(w, "Log:    %s\n", id)
	}
	return exitOK
}

// captureFrames opens the camera, captures n frames into batch, and always
// releases the stream
func captureFrames(ctx context.Context, device camera.Device, batch *capture.Batch, n int) error {
	c := camera.NewCapturer(device)
	defer c.Dispose()

	if err := c.Open(ctx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.CaptureInto(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// receiptID returns the log id from a JSON receipt, if present
func receiptID(r *models.Receipt) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	id, _ := r.Fields["uuid"].(string)
	return id
}
