// ABOUTME: Root command for the fieldreport CLI
// ABOUTME: Handles global flags, configuration, and launching the interactive TUI

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/capture/camera"
	"github.com/markalston/fieldreport/internal/client"
	"github.com/markalston/fieldreport/internal/config"
	"github.com/markalston/fieldreport/internal/credstore"
	"github.com/markalston/fieldreport/internal/history"
	"github.com/markalston/fieldreport/internal/logger"
	"github.com/markalston/fieldreport/internal/session"
	"github.com/markalston/fieldreport/internal/tui"
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
)

// Exit codes shared by all commands
const (
	exitOK       = 0
	exitRejected = 1 // credentials, validation, or permission refused
	exitError    = 2 // connectivity or backend failure
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "fieldreport",
	Short: "Submit photo reports and review report history",
	Long: `fieldreport is a terminal client for the report backend.

Run without a subcommand to start the interactive interface.

Environment Variables:
  FIELD_REPORT_API_URL        Backend API URL (default: https://api.example.com)
  FIELD_REPORT_CONFIG_DIR     Credentials and log directory (default: ~/.config/fieldreport)
  FIELD_REPORT_TIMEOUT        Request timeout in seconds (default: none)
  FIELD_REPORT_CAMERA_DEVICE  Camera device node (default: /dev/video0)
  FIELD_REPORT_CAPTURE_CMD    Frame grabber command, {device} is replaced
  LOG_LEVEL, LOG_FORMAT       Logging level and text|json format`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal and logs to a file instead
		if cmd == cmd.Root() {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		closer, err := logger.InitFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		defer closer.Close()

		rt := newRuntime(cfg)
		defer rt.session.Dispose()
		return tui.Run(tui.Deps{
			Session:   rt.session,
			Client:    rt.client,
			Camera:    rt.cameraDevice(),
			ConfigDir: rt.cfg.ConfigDir,
		})
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides FIELD_REPORT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides FIELD_REPORT_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// loadConfig reads configuration and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	return cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// runtime wires the store, client, and session for one invocation
type runtime struct {
	cfg     *config.Config
	store   *credstore.Store
	client  *client.Client
	session *session.Manager
}

func newRuntime(cfg *config.Config) *runtime {
	store := credstore.New(cfg.ConfigDir)
	c := client.New(cfg.APIURL, store, client.WithTimeout(cfg.Timeout))
	return &runtime{
		cfg:     cfg,
		store:   store,
		client:  c,
		session: session.New(store, c),
	}
}

func (rt *runtime) cameraDevice() *camera.CommandDevice {
	return &camera.CommandDevice{Path: rt.cfg.CameraDevice, Command: rt.cfg.CaptureCommand}
}

// setup loads configuration and builds a runtime, reporting failures to w
func setup(w io.Writer) (*runtime, int) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, exitError
	}
	return newRuntime(cfg), exitOK
}

// signalContext returns a context canceled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// usageError is a flag value rejected before any request is made
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// exitCodeFor classifies an error as a rejection or a failure
func exitCodeFor(err error) int {
	var (
		authErr       *client.AuthError
		apiErr        *client.APIError
		loginErr      *session.LoginError
		validationErr *capture.ValidationError
		permErr       *capture.PermissionError
		usageErr      *usageError
	)
	switch {
	case errors.As(err, &loginErr):
		var netErr *client.NetworkError
		if errors.As(err, &netErr) {
			return exitError
		}
		return exitRejected
	case errors.As(err, &authErr),
		errors.As(err, &validationErr),
		errors.As(err, &permErr),
		errors.As(err, &usageErr),
		errors.Is(err, history.ErrInvalidID):
		return exitRejected
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return exitRejected
		}
		return exitError
	default:
		return exitError
	}
}

// fail prints err and returns its exit code
func fail(w io.Writer, err error) int {
	if IsJSONOutput() {
		writeJSON(w, map[string]string{"error": err.Error()})
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return exitCodeFor(err)
}

// failNotice prints a titled notice and returns the exit code for err
func failNotice(w io.Writer, n capture.Notice, err error) int {
	if IsJSONOutput() {
		writeJSON(w, map[string]string{"error": n.Title, "detail": n.Description})
	} else {
		fmt.Fprintf(w, "Error: %s: %s\n", n.Title, n.Description)
	}
	return exitCodeFor(err)
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// exitWith terminates the process for non-zero codes
func exitWith(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}
