package fogbugz

import (
	"reflect"
	"testing"
)

func TestTokenizeEditedNotification(t *testing.T) {
	lines := []string{
		"A FogBugz case was edited by Jane Doe.",
		"",
		"Case ID: 43355",
		"URL: http://fogbugz.example.com/default.asp?43355",
		"",
		"Changes:",
		"Status changed from 'Active' to 'Resolved (Fixed)'.",
		"",
		"Looks good to me.",
		"",
		"",
		"You are subscribed to this case.",
	}

	tok := Tokenize(lines)

	if tok.Subject != "A FogBugz case was edited by Jane Doe." {
		t.Errorf("subject = %q", tok.Subject)
	}
	if tok.CaseID != 43355 {
		t.Errorf("case id = %d, want 43355", tok.CaseID)
	}
	wantChanges := []string{"Status changed from 'Active' to 'Resolved (Fixed)'."}
	if !reflect.DeepEqual(tok.Changes, wantChanges) {
		t.Errorf("changes = %#v, want %#v", tok.Changes, wantChanges)
	}
	wantComment := []string{"Looks good to me."}
	if !reflect.DeepEqual(tok.Comment, wantComment) {
		t.Errorf("comment = %#v, want %#v", tok.Comment, wantComment)
	}
}

func TestTokenizeLastMessageBlock(t *testing.T) {
	lines := []string{
		"A FogBugz case was edited by Jane Doe.",
		"",
		"Case ID: 77",
		"",
		"Last message:",
		"First reply line.",
		"Second reply line.",
		"",
		"",
		"If you do not want to receive these messages, change your settings.",
	}

	tok := Tokenize(lines)

	if tok.CaseID != 77 {
		t.Errorf("case id = %d, want 77", tok.CaseID)
	}
	if len(tok.Changes) != 0 {
		t.Errorf("changes = %#v, want none", tok.Changes)
	}
	wantComment := []string{"First reply line.", "Second reply line."}
	if !reflect.DeepEqual(tok.Comment, wantComment) {
		t.Errorf("comment = %#v, want %#v", tok.Comment, wantComment)
	}
}

// A terse notification has no "Last message:" marker; the commentary
// starts right after the URL block.
func TestTokenizeImplicitCommentAfterURL(t *testing.T) {
	lines := []string{
		"A FogBugz case was edited by Jane Doe.",
		"",
		"Case ID: 512",
		"URL: http://fogbugz.example.com/default.asp?512",
		"",
		"Ping me when this lands.",
		"",
		"",
		"You are subscribed to this case.",
	}

	tok := Tokenize(lines)

	wantComment := []string{"Ping me when this lands."}
	if !reflect.DeepEqual(tok.Comment, wantComment) {
		t.Errorf("comment = %#v, want %#v", tok.Comment, wantComment)
	}
}

// A Description block after the URL is case metadata, not commentary.
func TestTokenizeURLFollowedByDescription(t *testing.T) {
	lines := []string{
		"A new case was opened by Jane Doe.",
		"",
		"Case ID: 900",
		"URL: http://fogbugz.example.com/default.asp?900",
		"",
		"Description: Something is broken.",
	}

	tok := Tokenize(lines)

	if len(tok.Comment) != 0 {
		t.Errorf("comment = %#v, want none", tok.Comment)
	}
	if tok.CaseID != 900 {
		t.Errorf("case id = %d, want 900", tok.CaseID)
	}
}

func TestTokenizeLastCaseIDWins(t *testing.T) {
	lines := []string{
		"A FogBugz case was edited by Jane Doe.",
		"Case ID: 1",
		"Case ID: 2",
	}

	tok := Tokenize(lines)

	if tok.CaseID != 2 {
		t.Errorf("case id = %d, want 2", tok.CaseID)
	}
}

func TestTokenizeMalformedCaseIDIgnored(t *testing.T) {
	lines := []string{
		"A FogBugz case was edited by Jane Doe.",
		"Case ID: forty-two",
	}

	tok := Tokenize(lines)

	if tok.CaseID != 0 {
		t.Errorf("case id = %d, want 0", tok.CaseID)
	}
}

func TestTokenizeMultipleChangeLines(t *testing.T) {
	lines := []string{
		"A FogBugz case was edited by Jane Doe.",
		"Case ID: 10",
		"Changes:",
		"Milestone changed from 'Backlog' to 'Sprint 4'.",
		"Estimate set to '4 hours'",
	}

	tok := Tokenize(lines)

	wantChanges := []string{
		"Milestone changed from 'Backlog' to 'Sprint 4'.",
		"Estimate set to '4 hours'",
	}
	if !reflect.DeepEqual(tok.Changes, wantChanges) {
		t.Errorf("changes = %#v, want %#v", tok.Changes, wantChanges)
	}
}

func TestTokenizeEmptyBody(t *testing.T) {
	tok := Tokenize(nil)

	if tok.Subject != "" || tok.CaseID != 0 || tok.Changes != nil || tok.Comment != nil {
		t.Errorf("empty body produced %#v", tok)
	}
}
