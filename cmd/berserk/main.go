// berserk: a sprint timeline for FogBugz-driven teams.
//
// It polls a notification mailbox, turns FogBugz emails and GitHub push
// payloads into timeline events, snapshots tracker state for sprint
// workload reports, and shows the result in a terminal UI.
//
// Usage:
//
//	berserk                  # interactive timeline (same as "timeline")
//	berserk timeline         # interactive timeline
//	berserk poll [-daemon]   # poll sources once, or keep polling
//	berserk remind           # send update-hours reminder mail
//	berserk sprint-load      # print the current sprint's load per user
//	berserk push             # ingest a push payload from stdin
//	berserk set-password KEY # store a credential in the system keyring
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/natea/berserk2/internal/app"
	"github.com/natea/berserk2/internal/credential"
	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/report"
	"github.com/natea/berserk2/internal/source/fogbugz"
	"github.com/natea/berserk2/internal/source/github"
	"github.com/natea/berserk2/internal/store"
	appsync "github.com/natea/berserk2/internal/sync"
	"github.com/natea/berserk2/internal/timeline"
	"github.com/natea/berserk2/internal/tracker"
)

const version = "0.1.0"

func main() {
	cmd := "timeline"
	args := []string{}
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}

	var err error
	switch cmd {
	case "timeline":
		err = runTimeline()
	case "poll":
		err = runPoll(args)
	case "remind":
		err = runRemind()
	case "sprint-load":
		err = runSprintLoad()
	case "push":
		err = runPush()
	case "set-password":
		err = runSetPassword(args)
	case "--version", "-v", "version":
		fmt.Printf("berserk v%s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`berserk - sprint timeline for FogBugz-driven teams

Usage:
  berserk [timeline]        interactive timeline viewer
  berserk poll [-daemon]    poll sources once, or keep polling
  berserk remind            send update-hours reminder mail
  berserk sprint-load       print the current sprint's load per user
  berserk push              ingest a GitHub push payload from stdin
  berserk set-password KEY  store a credential (value read from stdin)
  berserk version           print version`)
}

// runtime bundles the wired subsystems shared by every command.
type runtime struct {
	cfg     *model.AppConfig
	store   *store.SQLiteStore
	emitter *timeline.Emitter
	poller  *appsync.Poller
}

// setup loads configuration, opens the store, syncs the configured
// trackers into it and wires the emitter and poller.
func setup() (*runtime, error) {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	ctx := context.Background()
	for i, tc := range cfg.Trackers {
		_, err := st.UpsertTracker(ctx, model.BugTracker{
			Name:     tc.Name,
			Product:  tc.Product,
			BaseURL:  tc.BaseURL,
			Backend:  tc.Backend,
			Username: tc.Username,
		}, i)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("syncing tracker %q: %w", tc.Name, err)
		}
	}

	refresher := tracker.NewRefresher(st, trackerPassword(cfg))
	emitter := timeline.NewEmitter(st, refresher)

	poller := appsync.New(time.Duration(cfg.PollIntervalSec) * time.Second)
	if cfg.Mail.Configured() {
		poller.Register(fogbugz.NewSource(cfg.Mail, mailPassword(cfg), emitter))
	}

	return &runtime{cfg: cfg, store: st, emitter: emitter, poller: poller}, nil
}

// mailPassword resolves the IMAP password: keyring first, then the
// config's plaintext fallback.
func mailPassword(cfg *model.AppConfig) string {
	if pw, err := credential.Get(credential.KeyMailPassword); err == nil && pw != "" {
		return pw
	}
	return cfg.Mail.Password
}

// smtpPassword resolves the outbound mail password the same way.
func smtpPassword(cfg *model.AppConfig) string {
	if pw, err := credential.Get(credential.KeySMTPPassword); err == nil && pw != "" {
		return pw
	}
	return cfg.Reminder.SMTP.Password
}

// trackerPassword returns a resolver for per-tracker passwords.
func trackerPassword(cfg *model.AppConfig) tracker.PasswordFunc {
	return func(trk model.BugTracker) string {
		if pw, err := credential.Get(credential.TrackerPasswordKey(trk.Name)); err == nil && pw != "" {
			return pw
		}
		for _, tc := range cfg.Trackers {
			if tc.Name == trk.Name {
				return tc.Password
			}
		}
		return ""
	}
}

func runTimeline() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	p := tea.NewProgram(
		app.New(rt.store, rt.poller, rt.cfg),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func runPoll(args []string) error {
	fs := flag.NewFlagSet("poll", flag.ExitOnError)
	daemon := fs.Bool("daemon", false, "keep polling at the configured interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*daemon {
		rt.poller.RunOnce(ctx)
		return nil
	}

	rt.poller.Start(ctx)
	<-ctx.Done()
	rt.poller.Stop()
	return nil
}

func runRemind() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	mailer := report.NewSMTPMailer(rt.cfg.Reminder.SMTP, smtpPassword(rt.cfg))
	job := report.NewReminder(rt.store, mailer, rt.cfg.Reminder)
	return job.Run(context.Background(), time.Now().UTC())
}

func runSprintLoad() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	ctx := context.Background()
	sprint, ok, err := rt.store.CurrentSprint(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No active sprint.")
		return nil
	}

	load, err := report.SprintLoadByUser(ctx, rt.store, sprint)
	if err != nil {
		return err
	}

	byName := make(map[string][]int, len(load))
	for id, hours := range load {
		actor, err := rt.store.GetActorByID(ctx, id)
		if err != nil {
			return err
		}
		byName[actor.FullName] = hours
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Sprint %s - %s (velocity %d h/day)\n\n",
		sprint.StartDate.Format("2006-01-02"),
		sprint.EndDate.Format("2006-01-02"),
		sprint.Velocity,
	)
	for _, name := range names {
		cells := make([]string, len(byName[name]))
		for i, h := range byName[name] {
			cells[i] = fmt.Sprintf("%4d", h)
		}
		fmt.Printf("%-24s %s\n", name, strings.Join(cells, " "))
	}
	if len(names) == 0 {
		fmt.Println("No assigned tasks in this sprint.")
	}
	return nil
}

func runPush() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	adapter := github.NewAdapter(rt.emitter, rt.cfg.Push.Enabled)
	if !adapter.Enabled() {
		return fmt.Errorf("push source is disabled; set push.enabled in %s", model.DefaultConfigPath())
	}

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	return adapter.ProcessPayload(context.Background(), payload)
}

func runSetPassword(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: berserk set-password KEY (e.g. %s, %s, %s)",
			credential.KeyMailPassword,
			credential.KeySMTPPassword,
			credential.TrackerPasswordKey("NAME"),
		)
	}

	fmt.Fprint(os.Stderr, "Value: ")
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading value: %w", err)
	}
	value = strings.TrimRight(value, "\r\n")
	if value == "" {
		return fmt.Errorf("empty value")
	}

	return credential.Set(args[0], value)
}
