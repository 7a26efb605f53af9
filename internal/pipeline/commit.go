package pipeline

import (
	"context"

	"github.com/sells-group/coldcall-cli/internal/model"
)

// Commit writes the session's prepared notes to the CRM and posts the
// call sheet. When the session carries failed IDs from an earlier commit,
// only that subset is retried; already-written notes are never duplicated.
// The session file is deleted only after every note lands, otherwise it is
// kept with the surviving failure set for another retry.
func (p *Pipeline) Commit(ctx context.Context, sessionID string, emit Emitter) (*model.Session, error) {
	sess, err := p.store.LoadPrep(sessionID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}

	targets := sess.Contacts
	if len(sess.FailedIDs) > 0 {
		retry := make(map[string]bool, len(sess.FailedIDs))
		for _, id := range sess.FailedIDs {
			retry[id] = true
		}
		targets = nil
		for _, c := range sess.Contacts {
			if retry[c.ContactID] {
				targets = append(targets, c)
			}
		}
		emit.emit(EventStatus, map[string]any{
			"message": "Retrying failed notes only",
			"count":   len(targets),
		})
	}

	var failed []string
	created := 0
	for i, c := range targets {
		noteID, err := p.hubspot.CreateNote(ctx, c.ContactID, c.NoteHTML)
		if err != nil {
			failed = append(failed, c.ContactID)
			emit.emit(EventErrorContact, map[string]any{"name": c.Name, "error": err.Error()})
		} else {
			created++
			emit.emit(EventInscribed, map[string]any{
				"name":    c.Name,
				"note_id": noteID,
				"current": i + 1,
				"total":   len(targets),
			})
		}
		p.pause(p.cfg.CommitPause)
	}

	messagesSent := 0
	if p.slack != nil {
		n, err := p.slack.Post(ctx, sess)
		if err != nil {
			emit.emit(EventWarn, map[string]any{"message": "call sheet post failed: " + err.Error()})
		} else {
			messagesSent = n
		}
	}

	sess.FailedIDs = failed
	if len(failed) == 0 {
		if err := p.store.DeletePrep(sess.ID); err != nil {
			emit.emit(EventWarn, map[string]any{"message": "session delete failed: " + err.Error()})
		}
	} else {
		if err := p.store.SavePrep(sess); err != nil {
			emit.emit(EventWarn, map[string]any{"message": "session save failed: " + err.Error()})
		}
	}

	emit.emit(EventApprovedComplete, map[string]any{
		"created":        created,
		"failed":         len(failed),
		"slack_messages": messagesSent,
	})
	return sess, nil
}

// Discard drops a prepared session without writing anything to the CRM.
func (p *Pipeline) Discard(sessionID string, emit Emitter) error {
	if err := p.store.DeletePrep(sessionID); err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return err
	}
	emit.emit(EventDone, map[string]any{"message": "Session discarded", "session_id": sessionID})
	return nil
}
