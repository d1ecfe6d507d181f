package fogbugz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/timeline"
)

// Source polls the FogBugz notification mailbox and turns each unread
// message into timeline events.
type Source struct {
	client  *IMAPClient
	emitter *timeline.Emitter
	cfg     model.MailSourceConfig
}

// NewSource creates the FogBugz email source. password takes precedence
// over the config's plaintext fallback when non-empty.
func NewSource(cfg model.MailSourceConfig, password string, emitter *timeline.Emitter) *Source {
	return &Source{
		client:  NewIMAPClient(cfg, password),
		emitter: emitter,
		cfg:     cfg,
	}
}

// Name returns the source name recorded on emitted events.
func (s *Source) Name() string { return model.SourceFogBugz }

// Enabled reports whether the mailbox is configured.
func (s *Source) Enabled() bool { return s.cfg.Configured() }

// Run executes one polling iteration: fetch the unread notifications and
// process each independently. A message that cannot be processed is
// logged and skipped; it never aborts the rest of the batch.
func (s *Source) Run(ctx context.Context) error {
	messages, err := s.client.FetchUnread(ctx)
	if err != nil {
		return fmt.Errorf("fetching notifications: %w", err)
	}

	for _, msg := range messages {
		if err := s.processMessage(ctx, msg); err != nil {
			log.Printf("fogbugz: skipping message uid %d: %v", msg.UID, err)
		}
	}

	return nil
}

// processMessage tokenizes one notification body and emits whatever
// facts the rule engine extracts. A body with no recognizable facts
// produces zero events and no error.
func (s *Source) processMessage(ctx context.Context, msg Message) error {
	tok := Tokenize(strings.Split(msg.Body, "\r\n"))

	for _, draft := range ParseToken(tok, msg.Date) {
		if _, err := s.emitter.Emit(ctx, draft); err != nil {
			return fmt.Errorf("emitting event for case %d: %w", draft.CaseID, err)
		}
	}

	return nil
}
