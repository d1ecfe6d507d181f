package fogbugz

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/timeline"
)

// The actor is identified in the subject line, e.g.
// "A FogBugz case was edited by Aardvark Bobcat."
var protagonistPattern = regexp.MustCompile(`by (\w+ \w+)`)

var assignedPattern = regexp.MustCompile(`A FogBugz case was assigned to (.*) by`)

// Change-line patterns. estimateSetPattern is checked before the generic
// from/to shape and short-circuits it.
var (
	estimateSetPattern = regexp.MustCompile(`^Estimate set to '(\d+.?\d*) hours?'`)
	changedFromPattern = regexp.MustCompile(`^(.+) changed from '?(.*)'? to '?(.*)'?$`)
	casePattern        = regexp.MustCompile(`^Case (\d+)`)
)

// caseNumber extracts the case number from a string like "Case 43355".
// The second result is false when the pattern is absent; callers drop the
// reference instead of failing.
func caseNumber(s string) (int, bool) {
	m := casePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// formatHours renders an hour count in its shortest natural form, so
// "1" and "1.5" both read well.
func formatHours(h float64) string {
	return fmt.Sprintf("%g", h)
}

// ParseToken runs the rule battery over a tokenized notification and
// returns the event drafts it produces: subject-level rules first, then
// one rule evaluation per change line, then the commented-on fallback.
func ParseToken(tok NotificationToken, date time.Time) []timeline.Draft {
	var drafts []timeline.Draft

	protagonist := ""
	if m := protagonistPattern.FindStringSubmatch(tok.Subject); m != nil {
		protagonist = m[1]
	}

	draft := func(deuteragonist, message string) timeline.Draft {
		return timeline.Draft{
			Source:        model.SourceFogBugz,
			CaseID:        tok.CaseID,
			Protagonist:   protagonist,
			Deuteragonist: deuteragonist,
			Message:       message,
			Comment:       tok.Comment,
			Date:          date,
			LinkTask:      true,
		}
	}

	// Some notifications embed the whole action in the subject line.
	switch {
	case strings.HasPrefix(tok.Subject, "A new case"):
		drafts = append(drafts, draft("",
			"{{ protagonist }} opened a new case {{ task_link }}."))
	case strings.HasPrefix(tok.Subject, "A FogBugz case was assigned to"):
		if m := assignedPattern.FindStringSubmatch(tok.Subject); m != nil {
			deuteragonist := m[1]
			if protagonist == deuteragonist {
				drafts = append(drafts, draft("",
					"{{ protagonist }} assigned {{ task_link }} to {{ proto_self }}."))
			} else {
				drafts = append(drafts, draft(deuteragonist,
					"{{ protagonist }} assigned {{ task_link }} to {{ deuteragonist }}."))
			}
		}
	case strings.HasPrefix(tok.Subject, "A FogBugz case was closed by"):
		drafts = append(drafts, draft("",
			"{{ protagonist }} closed {{ task_link }}."))
	}

	// Others list their actions out as change lines.
	for _, change := range tok.Changes {
		if d, ok := parseChangeLine(change, draft); ok {
			drafts = append(drafts, d)
		}
	}

	// Last resort: if nothing else, the user just commented.
	if len(drafts) == 0 && len(tok.Changes) == 0 && len(tok.Comment) > 0 {
		drafts = append(drafts, draft("",
			"{{ protagonist }} commented on {{ task_link }}."))
	}

	return drafts
}

// parseChangeLine converts one change line into at most one draft.
func parseChangeLine(
	change string,
	draft func(deuteragonist, message string) timeline.Draft,
) (timeline.Draft, bool) {
	if m := estimateSetPattern.FindStringSubmatch(change); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return timeline.Draft{}, false
		}
		plural := "hours"
		if hours == 1 {
			plural = "hour"
		}
		return draft("", fmt.Sprintf(
			"{{ protagonist }} estimates {{ task_link }} will require %s %s to complete.",
			formatHours(hours), plural,
		)), true
	}

	// The change line may or may not end in a period.
	change = strings.TrimRight(change, ".")

	m := changedFromPattern.FindStringSubmatch(change)
	if m == nil {
		return timeline.Draft{}, false
	}

	changeType := strings.ToLower(m[1])

	// The pattern isn't greedy enough to always eat the closing quote.
	before := strings.Trim(m[2], "'")
	after := strings.Trim(m[3], "'")

	switch changeType {
	case "milestone":
		return draft("", fmt.Sprintf(
			"{{ protagonist }} moved {{ task_link }} to the '%s' milestone.", after,
		)), true

	case "title":
		return draft("", fmt.Sprintf(
			"{{ protagonist }} changed the title of {{ task_link }} to '%s'.",
			html.EscapeString(after),
		)), true

	case "estimate":
		hours, err := strconv.ParseFloat(firstField(after), 64)
		if err != nil {
			return timeline.Draft{}, false
		}
		plural := "hours"
		if hours == 1 {
			plural = "hour"
		}
		return draft("", fmt.Sprintf(
			"{{ protagonist }} estimates {{ task_link }} will require %s %s to complete.",
			formatHours(hours), plural,
		)), true

	case "non-timesheet elapsed time":
		hours, err := strconv.ParseFloat(firstField(after), 64)
		if err != nil {
			return timeline.Draft{}, false
		}
		plural := "hours have"
		if hours == 1 {
			plural = "hour has"
		}
		return draft("", fmt.Sprintf(
			"{{ protagonist }} reports that %s %s been spent on {{ task_link }}.",
			formatHours(hours), plural,
		)), true

	case "status":
		return draft("", statusMessage(before, after)), true

	case "duplicate of":
		dup, ok := caseNumber(after)
		if !ok {
			return timeline.Draft{}, false
		}
		return draft("", fmt.Sprintf(
			"{{ protagonist }} notes that {{ task_link }} is a duplicate of #%d.", dup,
		)), true

	case "parent":
		parent, ok := caseNumber(after)
		if !ok {
			return timeline.Draft{}, false
		}
		return draft("", fmt.Sprintf(
			"{{ protagonist }} set the parent of {{ task_link }} to #%d.", parent,
		)), true

	case "qa assignee":
		// Comparing against the raw subject protagonist: the drafted
		// event only gets a deuteragonist when it is somebody else.
		d := draft("", "{{ protagonist }} assigned {{ proto_self }} as the QA resource for {{ task_link }}.")
		if d.Protagonist != after {
			d = draft(after, "{{ protagonist }} assigned {{ deuteragonist }} as the QA resource for {{ task_link }}.")
		}
		return d, true

	default:
		if before == "(No Value)" {
			return draft("", fmt.Sprintf(
				"{{ protagonist }} set the %s of {{ task_link }} to %s.",
				changeType, after,
			)), true
		}
		return draft("", fmt.Sprintf(
			"{{ protagonist }} changed the %s of {{ task_link }} from %s to %s.",
			changeType, before, after,
		)), true
	}
}

// statusMessage narrates a status transition. The resolution strings are
// matched exactly as the vendor sends them, misspellings included.
func statusMessage(before, after string) string {
	if strings.HasPrefix(before, "Resolved") && after == "Active" {
		return "{{ protagonist }} reopened {{ task_link }}."
	}

	switch after {
	case "Resolved (Fixed)":
		return "{{ protagonist }} marked {{ task_link }} as fixed."
	case "Resolved (Not Reproducible)":
		return "{{ protagonist }} marked {{ task_link }} as not reproducible."
	case "Resolved (Duplicate)":
		return "{{ protagonist }} marked {{ task_link }} as duplicate."
	case "Resolved (Postpooned)":
		return "{{ protagonist }} marked {{ task_link }} as postponed."
	case "Resolved (By Design)":
		return "{{ protagonist }} marked {{ task_link }} as by design."
	case "Resolved (Won't Fix)":
		return "{{ protagonist }} marked {{ task_link }} as won't fix."
	case "Resolved (Implemented)":
		return "{{ protagonist }} marked {{ task_link }} as implemented."
	case "Resolved (Completed)":
		return "{{ protagonist }} marked {{ task_link }} as completed."
	default:
		return fmt.Sprintf("{{ protagonist }} marked the status of {{ task_link }} as %s.", after)
	}
}

// firstField returns the text before the first space, or the whole
// string when there is none.
func firstField(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
