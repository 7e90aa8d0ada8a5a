// ABOUTME: Data types shared between the backend client, session, and views
// ABOUTME: JSON tags match the report backend's wire format

package models

import "strings"

// UserProfile is the profile returned by /get-data
type UserProfile struct {
	UUID            string `json:"uuid"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	PermissionLevel string `json:"user_permission"`
	ProfilePhoto    string `json:"profile_photo"`
}

// FullName joins first and last name, falling back to the username
func (u *UserProfile) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// TokenPair is the /userlogin response
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is the /token/refresh response
type AccessToken struct {
	Access string `json:"access"`
}

// Receipt is the opaque /sent-report response.
// Fields holds the decoded JSON object; Text holds a non-JSON body.
type Receipt struct {
	Fields map[string]any `json:"fields,omitempty"`
	Text   string         `json:"text,omitempty"`
}

// LogStatus is the delivery status of a submitted report
type LogStatus string

const (
	StatusPending LogStatus = "pending"
	StatusSent    LogStatus = "sent"
	StatusFailed  LogStatus = "failed"
)

// Known reports whether the status is one the backend documents
func (s LogStatus) Known() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// LogUser is the submitter reference embedded in a log entry
type LogUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
}

// Attachment is an image reference on a log entry
type Attachment struct {
	Image string `json:"image"`
}

// LogEntry is a backend record of one report submission
type LogEntry struct {
	UUID         string       `json:"uuid"`
	Subject      string       `json:"subject"`
	User         LogUser      `json:"user"`
	SentAt       string       `json:"sent_at"`
	SendTime     string       `json:"send_time"`
	Status       LogStatus    `json:"status"`
	ErrorMessage *string      `json:"error_message"`
	Attachments  []Attachment `json:"attachments"`
}

// LogPage is one page of /get-logs
type LogPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []LogEntry `json:"results"`
}

// Credentials is the persisted projection of a session
type Credentials struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *UserProfile `json:"user,omitempty"`
	RememberMe   bool         `json:"remember_me"`
}

// Clone returns a deep copy so callers cannot mutate stored state
func (c Credentials) Clone() Credentials {
	if c.User != nil {
		u := *c.User
		c.User = &u
	}
	return c
}
