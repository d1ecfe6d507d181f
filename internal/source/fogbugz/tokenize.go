package fogbugz

import (
	"strconv"
	"strings"
)

// NotificationToken is the structured view of one notification body:
// the subject line, the case number, the itemized change lines, and the
// free-text commentary. It is built per message and consumed immediately
// by the rule engine.
type NotificationToken struct {
	Subject string
	CaseID  int
	Changes []string
	Comment []string
}

// Tokenize scans the lines of a notification body in a single forward
// pass with two lines of lookahead.
//
// The body format is undocumented and inconsistent; the heuristics here
// (the footer marker, the "URL:" shape with no "Last message:" header)
// match the notification vendor's observed output and should not be
// tidied up.
func Tokenize(lines []string) NotificationToken {
	var tok NotificationToken
	if len(lines) > 0 {
		tok.Subject = lines[0]
	}

	inChanges := false
	inComment := false

	for i := 0; i < len(lines); i++ {
		l := strings.TrimSpace(lines[i])

		var m, n string
		hasM := i+1 < len(lines)
		hasN := i+2 < len(lines)
		if hasM {
			m = strings.TrimSpace(lines[i+1])
		}
		if hasN {
			n = strings.TrimSpace(lines[i+2])
		}

		// Two blank lines followed by an unsubscribe footer end the
		// message; the trailing footer is discarded.
		if l == "" && hasM && m == "" {
			if n != "" && (strings.HasPrefix(n, "You are subscribed") ||
				strings.HasPrefix(n, "If you do not want to")) {
				break
			}
		}

		switch {
		case strings.HasPrefix(l, "Changes:"):
			inChanges = true
		case strings.HasPrefix(l, "Last message:"):
			inComment = true
		case !inChanges && !inComment && strings.HasPrefix(l, "URL:") &&
			hasM && m == "" && n != "" && !strings.HasPrefix(n, "Description"):
			// Terse shape with no "Last message:" marker: the comment
			// starts right after the URL block.
			i++
			inComment = true
		case inChanges:
			// The changes block is always followed by commentary,
			// possibly empty.
			if l == "" {
				inChanges = false
				inComment = true
			} else {
				tok.Changes = append(tok.Changes, l)
			}
		case inComment:
			tok.Comment = append(tok.Comment, l)
		}

		// Last occurrence wins; scanning continues past the first hit.
		if strings.HasPrefix(l, "Case ID:") {
			fields := strings.Fields(l)
			if len(fields) >= 3 {
				if id, err := strconv.Atoi(fields[2]); err == nil {
					tok.CaseID = id
				}
			}
		}
	}

	return tok
}
