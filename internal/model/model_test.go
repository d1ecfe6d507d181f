package model

import "testing"

func TestNormalizeFullName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane doe"},
		{"JANE DOE", "jane doe"},
		{"  jane   doe  ", "jane doe"},
		{"jane\tdoe", "jane doe"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := NormalizeFullName(tc.in); got != tc.want {
			t.Errorf("NormalizeFullName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRemoteTaskURL(t *testing.T) {
	trk := BugTracker{BaseURL: "http://bugs.example.com"}
	want := "http://bugs.example.com/show_bug.cgi?id=43355"
	if got := trk.RemoteTaskURL("43355"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSnapshotIsClosed(t *testing.T) {
	closed := []string{"RESOLVED", "CLOSED", "VERIFIED"}
	for _, status := range closed {
		snap := TaskSnapshot{Status: status}
		if !snap.IsClosed() {
			t.Errorf("status %q should be closed", status)
		}
	}

	open := []string{"NEW", "ASSIGNED", "REOPENED", ""}
	for _, status := range open {
		snap := TaskSnapshot{Status: status}
		if snap.IsClosed() {
			t.Errorf("status %q should be open", status)
		}
	}
}

func TestMailSourceConfigured(t *testing.T) {
	if (MailSourceConfig{}).Configured() {
		t.Error("empty config should not be configured")
	}
	if (MailSourceConfig{Host: "imap.example.com"}).Configured() {
		t.Error("host alone should not be configured")
	}
	if !(MailSourceConfig{Host: "imap.example.com", Username: "bot"}).Configured() {
		t.Error("host plus username should be configured")
	}
}
