package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/natea/berserk2/internal/source"
)

const bugJSON = `{
	"bugs": [{
		"summary": "Fix the frobnicator",
		"status": "ASSIGNED",
		"creator": "John Roe",
		"assigned_to": "Jane Doe",
		"estimated_time": 8,
		"actual_time": 3,
		"remaining_time": 5.0
	}]
}`

func TestGetBug(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bugJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot", "s3cret")
	bug, err := c.GetBug(context.Background(), "43355")
	if err != nil {
		t.Fatalf("GetBug: %v", err)
	}

	if gotPath != "/rest/bug/43355" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "login=bot&password=s3cret" {
		t.Errorf("query = %q", gotQuery)
	}
	if bug.Summary != "Fix the frobnicator" {
		t.Errorf("summary = %q", bug.Summary)
	}
	if bug.Status != "ASSIGNED" {
		t.Errorf("status = %q", bug.Status)
	}
	if bug.AssignedTo != "Jane Doe" || bug.SubmittedBy != "John Roe" {
		t.Errorf("people = %q / %q", bug.AssignedTo, bug.SubmittedBy)
	}
	if bug.RemainingHours != 5 {
		t.Errorf("remaining = %v", bug.RemainingHours)
	}
}

func TestGetBugNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bugs": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot", "s3cret")
	if _, err := c.GetBug(context.Background(), "99999"); err == nil {
		t.Fatal("expected error for empty bug list")
	}
}

func TestGetBugUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot", "wrong")
	_, err := c.GetBug(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !source.IsAuthError(err) {
		t.Errorf("expected an auth error, got %v", err)
	}
}

func TestGetBugRetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bugJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot", "s3cret")
	bug, err := c.GetBug(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetBug: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if bug.Status != "ASSIGNED" {
		t.Errorf("status = %q", bug.Status)
	}
}

func TestGetBugServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot", "s3cret")
	if _, err := c.GetBug(context.Background(), "1"); err == nil {
		t.Fatal("expected error")
	}
}
