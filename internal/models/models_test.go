package models

import "testing"

func TestFullName(t *testing.T) {
	tests := []struct {
		name string
		user UserProfile
		want string
	}{
		{"first and last", UserProfile{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, "Ada Lovelace"},
		{"first only", UserProfile{FirstName: "Ada", Username: "ada"}, "Ada"},
		{"falls back to username", UserProfile{Username: "ada"}, "ada"},
		{"blank names", UserProfile{FirstName: " ", Username: "ada"}, "ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogStatusKnown(t *testing.T) {
	for _, s := range []LogStatus{StatusPending, StatusSent, StatusFailed} {
		if !s.Known() {
			t.Errorf("expected %q to be known", s)
		}
	}
	if LogStatus("queued").Known() {
		t.Error("expected queued to be unknown")
	}
}

func TestCredentialsCloneIsDeep(t *testing.T) {
	orig := Credentials{AccessToken: "a", User: &UserProfile{Username: "ada"}}
	clone := orig.Clone()
	clone.User.Username = "mallory"

	if orig.User.Username != "ada" {
		t.Error("expected clone not to share the user profile")
	}
	if (Credentials{}).Clone().User != nil {
		t.Error("expected nil user to stay nil")
	}
}
