package github

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/timeline"
)

// mainRef is the ref whose pushes are narrated without a branch clause.
const mainRef = "refs/heads/master"

// pushPayload mirrors the relevant portion of a push webhook body.
type pushPayload struct {
	Repository *struct {
		Name string `json:"name"`
	} `json:"repository"`
	Ref     string       `json:"ref"`
	Commits []pushCommit `json:"commits"`
}

type pushCommit struct {
	ID     string `json:"id"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	URL       string `json:"url"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Adapter converts push-event payloads directly into timeline events,
// bypassing the notification tokenizer and rule engine.
type Adapter struct {
	emitter *timeline.Emitter
	enabled bool
}

// NewAdapter creates the push-event adapter. The enabled flag comes from
// configuration; the adapter ships administratively disabled.
func NewAdapter(emitter *timeline.Emitter, enabled bool) *Adapter {
	return &Adapter{emitter: emitter, enabled: enabled}
}

// Name returns the source name recorded on emitted events.
func (a *Adapter) Name() string { return model.SourceGitHub }

// Enabled reports whether the adapter should be invoked. Callers must
// check it before delivering payloads.
func (a *Adapter) Enabled() bool { return a.enabled }

// ProcessPayload parses a JSON push payload and emits one event per
// commit. Push events are not tied to tracked tasks.
func (a *Adapter) ProcessPayload(ctx context.Context, payload []byte) error {
	var data pushPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("parsing push payload: %w", err)
	}

	repoName := "Unknown"
	if data.Repository != nil && data.Repository.Name != "" {
		repoName = data.Repository.Name
	}

	for _, commit := range data.Commits {
		message := commitMessage(commit, data.Ref, repoName)

		date := time.Now()
		if commit.Timestamp != "" {
			if parsed, ok := parseCommitTime(commit.Timestamp); ok {
				date = parsed
			}
		}

		draft := timeline.Draft{
			Source:      model.SourceGitHub,
			Protagonist: commit.Author.Name,
			Message:     message,
			Comment:     []string{html.EscapeString(commit.Message)},
			Date:        date,
		}

		if _, err := a.emitter.Emit(ctx, draft); err != nil {
			return fmt.Errorf("emitting push event for commit %s: %w", shortID(commit.ID), err)
		}
	}

	return nil
}

// commitMessage narrates one pushed commit. Pushes to the main branch
// omit the branch clause.
func commitMessage(commit pushCommit, ref, repoName string) string {
	link := fmt.Sprintf(
		`<a href="%s" target="_blank">%s</a>`, commit.URL, shortID(commit.ID),
	)

	if ref == mainRef {
		return fmt.Sprintf("{{ protagonist }} pushed %s to %s.", link, repoName)
	}

	branch := ref
	if strings.HasPrefix(ref, "refs/heads/") {
		branch = ref[strings.LastIndex(ref, "/")+1:]
	}
	return fmt.Sprintf("{{ protagonist }} pushed %s to %s's %s branch.", link, repoName, branch)
}

// shortID truncates a commit id to its first 7 characters.
func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// parseCommitTime parses a commit timestamp and strips the timezone
// offset, keeping the naive wall-clock value.
func parseCommitTime(ts string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05 -0700",
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			return time.Date(
				t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.UTC,
			), true
		}
	}
	return time.Time{}, false
}
