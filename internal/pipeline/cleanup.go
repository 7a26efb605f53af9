package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/notefmt"
	"github.com/sells-group/coldcall-cli/pkg/hubspot"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// notePreview strips markup and truncates to a display snippet.
func notePreview(html string) string {
	text := strings.Join(strings.Fields(tagRe.ReplaceAllString(html, " ")), " ")
	if len(text) > 120 {
		text = text[:120]
	}
	return text
}

// ScanCleanup finds duplicate prep notes left behind by a commit retry.
// For each session contact with more than one note, the note matching the
// session's own generated HTML is kept (the first note when none matches,
// since notes come back newest first) and the rest are flagged. The result
// is persisted as a manifest so the operator can review before executing.
func (p *Pipeline) ScanCleanup(ctx context.Context, sessionID string, emit Emitter) (*model.CleanupManifest, error) {
	sess, err := p.store.LoadPrep(sessionID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}

	manifest := &model.CleanupManifest{SessionID: sess.ID}
	for _, c := range sess.Contacts {
		notes, err := p.hubspot.PrepNotes(ctx, c.ContactID)
		if err != nil {
			emit.emit(EventErrorContact, map[string]any{"name": c.Name, "error": err.Error()})
			continue
		}
		if len(notes) > 1 {
			entry := buildCleanupEntry(c, notes)
			manifest.Entries = append(manifest.Entries, entry)
			emit.emit(EventScanResult, map[string]any{
				"name":        c.Name,
				"total_found": entry.TotalFound,
				"to_remove":   len(entry.Remove),
			})
		}
		p.pause(p.cfg.ScanPause)
	}

	if len(manifest.Entries) > 0 {
		if err := p.store.SaveCleanup(manifest); err != nil {
			emit.emit(EventWarn, map[string]any{"message": "manifest save failed: " + err.Error()})
		}
	}
	emit.emit(EventScanComplete, map[string]any{
		"session_id":          manifest.SessionID,
		"contacts_with_dupes": len(manifest.Entries),
		"notes_to_remove":     manifest.RemoveCount(),
	})
	return manifest, nil
}

// buildCleanupEntry picks the note to keep for one contact. Comparison
// runs on normalized text so CRM-side HTML rewrites still match.
func buildCleanupEntry(c model.SessionContact, notes []hubspot.Note) model.CleanupEntry {
	expected := notefmt.Normalize(c.NoteHTML)
	keep := 0
	for i, n := range notes {
		if notefmt.Normalize(n.Body) == expected {
			keep = i
			break
		}
	}

	entry := model.CleanupEntry{
		ContactID:  c.ContactID,
		Name:       c.Name,
		KeepID:     notes[keep].ID,
		TotalFound: len(notes),
	}
	for i, n := range notes {
		if i == keep {
			continue
		}
		entry.Remove = append(entry.Remove, model.CleanupNote{
			ID:      n.ID,
			Preview: notePreview(n.Body),
			Created: n.CreatedAt,
		})
	}
	return entry
}

// ExecuteCleanup archives every note flagged by the most recent scan,
// then drops the manifest.
func (p *Pipeline) ExecuteCleanup(ctx context.Context, sessionID string, emit Emitter) error {
	manifest, err := p.store.LoadCleanup(sessionID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return err
	}

	archived, failed := 0, 0
	for _, entry := range manifest.Entries {
		for _, n := range entry.Remove {
			if err := p.hubspot.ArchiveNote(ctx, n.ID); err != nil {
				failed++
				emit.emit(EventErrorContact, map[string]any{"name": entry.Name, "error": err.Error()})
			} else {
				archived++
				emit.emit(EventArchived, map[string]any{"name": entry.Name, "note_id": n.ID})
			}
			p.pause(p.cfg.ScanPause)
		}
	}

	if err := p.store.DeleteCleanup(manifest.SessionID); err != nil {
		emit.emit(EventWarn, map[string]any{"message": "manifest delete failed: " + err.Error()})
	}
	emit.emit(EventCleanupComplete, map[string]any{"archived": archived, "failed": failed})
	return nil
}
