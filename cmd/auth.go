// ABOUTME: Session commands: login, logout, whoami, remember, and token refresh
// ABOUTME: Drive the session manager and report outcomes with exit codes

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/models"
	"github.com/markalston/fieldreport/internal/session"
	"github.com/markalston/fieldreport/internal/tui/login"
)

var (
	loginUsername string
	loginPassword string
	loginRemember bool
)

// promptCredentials asks for missing login fields; replaced in tests
var promptCredentials = func(username, password string, remember bool) (string, string, bool, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&username),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
			huh.NewConfirm().Title("Remember me").Value(&remember),
		),
	).WithTheme(login.Theme())
	err := form.Run()
	return username, password, remember, err
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the report backend",
	Long: `Log in with a username and password. Missing values are prompted for.

With --remember the profile is kept after logout so the username is
pre-filled next time.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		remember := rt.store.RememberMe()
		if cmd.Flags().Changed("remember") {
			remember = loginRemember
		}
		exitWith(runLogin(ctx, os.Stdout, rt, loginUsername, loginPassword, remember))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear stored tokens",
	Run: func(cmd *cobra.Command, args []string) {
		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runLogout(os.Stdout, rt))
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Validate the stored session and show the profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runWhoami(ctx, os.Stdout, rt))
	},
}

var rememberCmd = &cobra.Command{
	Use:       "remember on|off",
	Short:     "Keep or forget the profile after logout",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	Run: func(cmd *cobra.Command, args []string) {
		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runRemember(os.Stdout, rt, args[0]))
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored access token",
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runTokenRefresh(ctx, os.Stdout, rt))
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, rememberCmd, tokenCmd)
	tokenCmd.AddCommand(tokenRefreshCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "Remember the profile after logout")
}

// runLogin logs in and returns the exit code
func runLogin(ctx context.Context, w io.Writer, rt *runtime, username, password string, remember bool) int {
	if username == "" {
		username = rt.session.RememberedUsername()
	}
	if username == "" || password == "" {
		var err error
		username, password, remember, err = promptCredentials(username, password, remember)
		if err != nil {
			return fail(w, fmt.Errorf("login prompt: %w", err))
		}
	}

	if err := rt.session.Login(ctx, username, password, remember); err != nil {
		return failNotice(w, capture.LoginFailed(err), err)
	}

	user := rt.session.Snapshot().User
	if IsJSONOutput() {
		writeJSON(w, map[string]any{"user": user, "remember_me": remember})
	} else {
		fmt.Fprintf(w, "Logged in as %s (%s)\n", user.FullName(), user.Username)
	}
	return exitOK
}

// runLogout logs out and returns the exit code
func runLogout(w io.Writer, rt *runtime) int {
	if err := rt.session.Logout(); err != nil {
		return fail(w, err)
	}
	n := capture.LoggedOut()
	if IsJSONOutput() {
		writeJSON(w, map[string]string{"status": n.Title})
	} else {
		fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
	}
	return exitOK
}

// runWhoami validates the stored session and prints the profile
func runWhoami(ctx context.Context, w io.Writer, rt *runtime) int {
	state, err := rt.session.Initialize(ctx)
	if err != nil {
		return fail(w, err)
	}
	if state != session.Authenticated {
		fail(w, fmt.Errorf("not logged in"))
		return exitRejected
	}

	s := rt.session.Snapshot()
	exp, hasExp := rt.session.AccessTokenExpiry()
	if IsJSONOutput() {
		out := map[string]any{"user": s.User, "remember_me": s.RememberMe}
		if hasExp {
			out["token_expires_at"] = exp.UTC().Format(time.RFC3339)
		}
		writeJSON(w, out)
		return exitOK
	}

	fmt.Fprintln(w, formatProfileHuman(s.User, s.RememberMe, exp, hasExp))
	return exitOK
}

// formatProfileHuman formats a profile for human readability
func formatProfileHuman(u *models.UserProfile, remember bool, exp time.Time, hasExp bool) string {
	expiry := "unknown"
	if hasExp {
		expiry = exp.Local().Format("Jan 2, 2006, 03:04 PM")
		if time.Until(exp) <= 0 {
			expiry += " (expired)"
		}
	}
	return fmt.Sprintf(`Name:        %s
Username:    %s
Email:       %s
Mobile:      %s
Permission:  %s
Remember me: %t
Token until: %s`,
		u.FullName(), u.Username, u.Email, u.Mobile, u.PermissionLevel, remember, expiry)
}

// runRemember sets the remember-me flag
func runRemember(w io.Writer, rt *runtime, value string) int {
	var remember bool
	switch value {
	case "on":
		remember = true
	case "off":
		remember = false
	default:
		fmt.Fprintf(w, "Error: expected on or off, got %q\n", value)
		return exitRejected
	}

	if err := rt.session.SetRememberMe(remember); err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, map[string]bool{"remember_me": remember})
	} else {
		fmt.Fprintf(w, "Remember me: %s\n", value)
	}
	return exitOK
}

// runTokenRefresh refreshes the access token
func runTokenRefresh(ctx context.Context, w io.Writer, rt *runtime) int {
	if err := rt.session.Refresh(ctx); err != nil {
		return fail(w, err)
	}

	exp, ok := rt.session.AccessTokenExpiry()
	if IsJSONOutput() {
		out := map[string]any{"refreshed": true}
		if ok {
			out["token_expires_at"] = exp.UTC().Format(time.RFC3339)
		}
		writeJSON(w, out)
		return exitOK
	}
	if ok {
		fmt.Fprintf(w, "Access token refreshed, valid until %s\n", exp.Local().Format("Jan 2, 2006, 03:04 PM"))
	} else {
		fmt.Fprintln(w, "Access token refreshed")
	}
	return exitOK
}
