package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
)

// Mailer delivers a composed message. The production implementation is
// the SMTP sender; tests swap in a recorder.
type Mailer interface {
	Send(from string, to []string, bcc []string, subject, body string) error
}

var reminderSubjectTmpl = template.Must(template.New("subject").Parse(
	`Reminder: update your remaining hours ({{ .Date.Format "Jan 2" }})`,
))

var reminderBodyTmpl = template.Must(template.New("body").Parse(
	`Hi {{ .User.FullName }},

Your remaining hours for the current sprint have not changed in the
last {{ .RemindDays }} day(s). If you have made progress on your tasks,
please take a moment to update them.

Sprint: {{ .Sprint.StartDate.Format "Jan 2" }} - {{ .Sprint.EndDate.Format "Jan 2 2006" }}
Tasks assigned to you today: {{ .TaskCount }}
Remaining hours on record: {{ .RemainingHours }}
`,
))

// reminderData feeds the mail templates.
type reminderData struct {
	Date           time.Time
	RemindDays     int
	User           model.Actor
	Sprint         model.Sprint
	TaskCount      int
	RemainingHours int
}

// Reminder is the update-hours reminder job: it nags actors whose sprint
// workload numbers have not moved in the configured number of days.
type Reminder struct {
	store  Store
	mailer Mailer
	cfg    model.ReminderConfig
}

// NewReminder creates the reminder job.
func NewReminder(s Store, m Mailer, cfg model.ReminderConfig) *Reminder {
	return &Reminder{store: s, mailer: m, cfg: cfg}
}

// Run executes one reminder pass for the given day. With no active
// sprint it does nothing. A delivery failure for one actor is logged
// and does not block the others.
func (r *Reminder) Run(ctx context.Context, today time.Time) error {
	sprint, ok, err := r.store.CurrentSprint(ctx, today)
	if err != nil {
		return fmt.Errorf("finding active sprint: %w", err)
	}
	if !ok {
		log.Printf("reminder: no active sprint found")
		return nil
	}

	past := today.AddDate(0, 0, -r.cfg.Days)

	todayRows, err := r.store.SumRemainingHoursByAssignee(ctx, sprint.ID, today)
	if err != nil {
		return fmt.Errorf("aggregating today's load: %w", err)
	}
	pastRows, err := r.store.SumRemainingHoursByAssignee(ctx, sprint.ID, past)
	if err != nil {
		return fmt.Errorf("aggregating past load: %w", err)
	}

	pastByActor := make(map[string]store.DayLoadRow, len(pastRows))
	for _, row := range pastRows {
		pastByActor[row.AssignedToID] = row
	}

	actors, err := r.store.ListActors(ctx)
	if err != nil {
		return fmt.Errorf("listing actors: %w", err)
	}
	actorByID := make(map[string]model.Actor, len(actors))
	for _, a := range actors {
		actorByID[a.ID] = a
	}

	for _, row := range todayRows {
		pastRow, had := pastByActor[row.AssignedToID]
		if !had {
			// No baseline to compare against.
			continue
		}
		if pastRow.TaskCount != row.TaskCount {
			// Task set changed; the numbers moved on their own.
			continue
		}
		if pastRow.RemainingHours != row.RemainingHours {
			continue
		}

		actor, ok := actorByID[row.AssignedToID]
		if !ok {
			continue
		}
		if actor.Email == "" {
			log.Printf("reminder: %s has stale hours but no email address", actor.FullName)
			continue
		}

		if err := r.send(actor, sprint, row, today); err != nil {
			log.Printf("reminder: sending to %s failed: %v", actor.Email, err)
		}
	}

	return nil
}

// send renders and delivers one reminder mail.
func (r *Reminder) send(
	actor model.Actor,
	sprint model.Sprint,
	row store.DayLoadRow,
	today time.Time,
) error {
	data := reminderData{
		Date:           today,
		RemindDays:     r.cfg.Days,
		User:           actor,
		Sprint:         sprint,
		TaskCount:      row.TaskCount,
		RemainingHours: row.RemainingHours,
	}

	var subject, body strings.Builder
	if err := reminderSubjectTmpl.Execute(&subject, data); err != nil {
		return fmt.Errorf("rendering subject: %w", err)
	}
	if err := reminderBodyTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering body: %w", err)
	}

	return r.mailer.Send(
		r.cfg.From,
		[]string{actor.Email},
		r.cfg.Managers,
		strings.TrimSpace(subject.String()),
		body.String(),
	)
}
