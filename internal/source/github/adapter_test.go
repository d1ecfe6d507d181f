package github

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/timeline"
)

// recordingStore implements timeline.Store and keeps emitted events.
type recordingStore struct {
	events []model.Event
}

func (r *recordingStore) GetOrCreateActorByFullName(_ context.Context, fullName string) (model.Actor, bool, error) {
	return model.Actor{ID: "actor-" + model.NormalizeFullName(fullName), FullName: fullName}, false, nil
}

func (r *recordingStore) GetOrCreateTask(_ context.Context, remoteTrackerID, trackerID string) (model.Task, bool, error) {
	return model.Task{ID: "task", RemoteTrackerID: remoteTrackerID, TrackerID: trackerID}, false, nil
}

func (r *recordingStore) ListTrackers(_ context.Context) ([]model.BugTracker, error) {
	return []model.BugTracker{{ID: "trk-1"}}, nil
}

func (r *recordingStore) CreateEvent(_ context.Context, e model.Event) (model.Event, error) {
	r.events = append(r.events, e)
	return e, nil
}

func newTestAdapter() (*Adapter, *recordingStore) {
	st := &recordingStore{}
	return NewAdapter(timeline.NewEmitter(st, nil), true), st
}

const masterPayload = `{
	"repository": {"name": "berserk"},
	"ref": "refs/heads/master",
	"commits": [{
		"id": "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678",
		"author": {"name": "Jane Doe"},
		"url": "https://github.com/example/berserk/commit/a1b2c3d",
		"message": "Fix <escaping> in narration",
		"timestamp": "2011-04-12T09:30:00-07:00"
	}]
}`

func TestProcessPayloadMasterPush(t *testing.T) {
	adapter, st := newTestAdapter()

	if err := adapter.ProcessPayload(context.Background(), []byte(masterPayload)); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}
	if len(st.events) != 1 {
		t.Fatalf("events = %d, want 1", len(st.events))
	}

	ev := st.events[0]
	want := `{{ protagonist }} pushed <a href="https://github.com/example/berserk/commit/a1b2c3d" target="_blank">a1b2c3d</a> to berserk.`
	if ev.Message != want {
		t.Errorf("message = %q, want %q", ev.Message, want)
	}
	if ev.Source != model.SourceGitHub {
		t.Errorf("source = %q", ev.Source)
	}
	if ev.ProtagonistID != "actor-jane doe" {
		t.Errorf("protagonist id = %q", ev.ProtagonistID)
	}
	if ev.TaskID != "" {
		t.Errorf("task id = %q, want empty", ev.TaskID)
	}
	if ev.Comment != "Fix &lt;escaping&gt; in narration" {
		t.Errorf("comment = %q", ev.Comment)
	}
}

func TestProcessPayloadBranchPush(t *testing.T) {
	adapter, st := newTestAdapter()

	payload := strings.Replace(masterPayload, "refs/heads/master", "refs/heads/feature-x", 1)
	if err := adapter.ProcessPayload(context.Background(), []byte(payload)); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}

	msg := st.events[0].Message
	if !strings.HasSuffix(msg, "to berserk's feature-x branch.") {
		t.Errorf("message = %q", msg)
	}
}

func TestProcessPayloadUnknownRepository(t *testing.T) {
	adapter, st := newTestAdapter()

	payload := `{
		"ref": "refs/heads/master",
		"commits": [{
			"id": "abc1234",
			"author": {"name": "Jane Doe"},
			"url": "https://example.com/c/abc1234",
			"message": "tweak"
		}]
	}`
	if err := adapter.ProcessPayload(context.Background(), []byte(payload)); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}

	if !strings.HasSuffix(st.events[0].Message, "to Unknown.") {
		t.Errorf("message = %q", st.events[0].Message)
	}
}

// Commit timestamps keep their wall-clock value; the offset is dropped.
func TestProcessPayloadTimestamp(t *testing.T) {
	adapter, st := newTestAdapter()

	if err := adapter.ProcessPayload(context.Background(), []byte(masterPayload)); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}

	want := time.Date(2011, 4, 12, 9, 30, 0, 0, time.UTC)
	if got := st.events[0].Date; !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
}

func TestProcessPayloadMultipleCommits(t *testing.T) {
	adapter, st := newTestAdapter()

	payload := `{
		"repository": {"name": "berserk"},
		"ref": "refs/heads/master",
		"commits": [
			{"id": "1111111aaaa", "author": {"name": "Jane Doe"}, "url": "u1", "message": "one"},
			{"id": "2222222bbbb", "author": {"name": "John Roe"}, "url": "u2", "message": "two"}
		]
	}`
	if err := adapter.ProcessPayload(context.Background(), []byte(payload)); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}

	if len(st.events) != 2 {
		t.Fatalf("events = %d, want 2", len(st.events))
	}
	if !strings.Contains(st.events[0].Message, ">1111111<") {
		t.Errorf("first message = %q", st.events[0].Message)
	}
	if !strings.Contains(st.events[1].Message, ">2222222<") {
		t.Errorf("second message = %q", st.events[1].Message)
	}
}

func TestProcessPayloadInvalidJSON(t *testing.T) {
	adapter, st := newTestAdapter()

	if err := adapter.ProcessPayload(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
	if len(st.events) != 0 {
		t.Errorf("events = %d, want 0", len(st.events))
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %q", got)
	}
	if got := shortID("abcdefgh"); got != "abcdefg" {
		t.Errorf("shortID long = %q", got)
	}
}
