package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/coldcall-cli/internal/callsheet"
	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/notefmt"
	"github.com/sells-group/coldcall-cli/internal/timezone"
)

// GenerateRequest selects the list segment and campaign for a generation
// run. CallingDate is free-form display text ("September 3rd").
type GenerateRequest struct {
	Segment      string
	Campaign     string
	CallingDate  string
	SkipExisting bool
}

// companyProps are the properties checked by the subscriber filter.
var companyProps = []string{"subscription_status", "mrr_from_subscription"}

// Generate pulls the segment list, filters out active subscribers and
// contacts without an outbound email on record, generates a call script
// per surviving contact, and assembles the timezone call sheet. The
// session is checkpointed after every generated contact; an earlier
// incomplete run with the same segment, campaign, and calling date seeds
// a cache so already-generated scripts are not paid for twice.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest, emit Emitter) (*model.Session, error) {
	emit.emit(EventStatus, map[string]any{"message": "Looking up list: " + req.Segment})

	sess := &model.Session{
		ID:          newSessionID(),
		Segment:     req.Segment,
		Campaign:    req.Campaign,
		CallingDate: req.CallingDate,
	}

	cached := map[string]model.SessionContact{}
	if prior, err := p.store.FindResumable(req.Segment, req.Campaign, req.CallingDate); err == nil && prior != nil {
		cached = prior.CachedScripts()
		if len(cached) > 0 {
			sess.ID = prior.ID
			emit.emit(EventStatus, map[string]any{
				"message": "Resuming earlier run: " + strconv.Itoa(len(cached)) + " scripts already generated",
			})
		}
	}

	listID, err := p.hubspot.FindListByName(ctx, req.Segment)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}
	if listID == "" {
		err := eris.New("pipeline: list not found: " + req.Segment)
		emit.emit(EventError, map[string]any{"message": "List not found: " + req.Segment})
		return nil, err
	}

	ids, err := p.hubspot.ListMemberships(ctx, listID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}
	if len(ids) == 0 {
		err := eris.New("pipeline: list is empty: " + req.Segment)
		emit.emit(EventError, map[string]any{"message": "No contacts in list: " + req.Segment})
		return nil, err
	}
	emit.emit(EventStatus, map[string]any{"message": strconv.Itoa(len(ids)) + " contacts in list"})

	contacts, err := p.hubspot.BatchGetContacts(ctx, ids)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}

	sess.Stats.Total = len(contacts)
	var entries []callsheet.Entry

	for i, c := range contacts {
		name := c.FullName()
		emit.emit(EventProgress, map[string]any{
			"current": i + 1,
			"total":   len(contacts),
			"name":    name,
		})

		if prior, ok := cached[c.ID]; ok {
			// Regenerate the note HTML so formatting fixes apply on resume;
			// the script itself is reused as generated.
			zone := timezone.Resolve(c)
			label := timezone.Label(zone)
			html := notefmt.FormatNote(c, req.Campaign, prior.ScriptContent, p.now())

			sess.Stats.CountZone(label)
			sess.Stats.SkippedCached++
			sess.Stats.Prepped++
			sess.Contacts = append(sess.Contacts, model.SessionContact{
				ContactID:     c.ID,
				Name:          name,
				Company:       c.Company,
				NoteHTML:      html,
				ScriptContent: prior.ScriptContent,
				TZ:            label,
			})
			entries = append(entries, callsheet.Entry{
				Contact:       c,
				Zone:          zone,
				TZLabel:       label,
				ScriptContent: prior.ScriptContent,
				NoteHTML:      html,
			})
			emit.emit(EventDoneContact, map[string]any{
				"name": name, "company": c.Company, "tz": label, "cached": true,
			})
			continue
		}

		if p.isActiveSubscriber(ctx, c, emit) {
			sess.Stats.SkippedSubscriber++
			emit.emit(EventSkip, map[string]any{"name": name, "reason": "active_subscriber"})
			continue
		}

		email, err := p.hubspot.LatestOutboundEmail(ctx, c.ID)
		if err != nil {
			sess.Stats.Errors++
			emit.emit(EventErrorContact, map[string]any{"name": name, "error": err.Error()})
			continue
		}
		if email == nil {
			sess.Stats.SkippedNoEmail++
			emit.emit(EventSkip, map[string]any{"name": name, "reason": "no_outbound_email"})
			continue
		}

		if req.SkipExisting {
			has, err := p.hubspot.HasPrepNote(ctx, c.ID)
			if err != nil {
				emit.emit(EventWarn, map[string]any{"name": name, "message": "note check failed: " + err.Error()})
			} else if has {
				sess.Stats.SkippedExisting++
				emit.emit(EventSkip, map[string]any{"name": name, "reason": "existing_note"})
				continue
			}
		}

		emit.emit(EventGenerating, map[string]any{"name": name, "company": c.Company})

		script, err := p.octave.GenerateCallScript(ctx, c, email.Subject, email.Body())
		if err != nil {
			sess.Stats.Errors++
			emit.emit(EventErrorContact, map[string]any{"name": name, "error": err.Error()})
			continue
		}

		zone := timezone.Resolve(c)
		label := timezone.Label(zone)
		html := notefmt.FormatNote(c, req.Campaign, script, p.now())

		sess.Stats.CountZone(label)
		sess.Stats.Prepped++
		sess.Contacts = append(sess.Contacts, model.SessionContact{
			ContactID:     c.ID,
			Name:          name,
			Company:       c.Company,
			NoteHTML:      html,
			ScriptContent: script,
			TZ:            label,
		})
		entries = append(entries, callsheet.Entry{
			Contact:       c,
			Zone:          zone,
			TZLabel:       label,
			ScriptContent: script,
			NoteHTML:      html,
		})
		emit.emit(EventDoneContact, map[string]any{"name": name, "company": c.Company, "tz": label})

		// Checkpoint so a crash mid-run loses at most one script. A failed
		// save never aborts the run.
		if err := p.store.SavePrep(sess); err != nil {
			zap.L().Warn("session checkpoint failed", zap.String("session_id", sess.ID), zap.Error(err))
		}

		p.paceGeneration(ctx)
	}

	sess.CallSheet, sess.UnknownTZ = p.buildCallSheet(entries)
	sess.GenerationComplete = true
	if err := p.store.SavePrep(sess); err != nil {
		emit.emit(EventWarn, map[string]any{"message": "final session save failed: " + err.Error()})
	}

	emit.emit(EventComplete, map[string]any{
		"session_id": sess.ID,
		"stats":      sess.Stats,
	})
	return sess, nil
}

// isActiveSubscriber reports whether any company associated with the
// contact has an ACTIVE subscription with positive MRR. Lookup failures
// are reported as warnings and treated as non-subscriber, so a flaky CRM
// association never blocks an otherwise valid prospect.
func (p *Pipeline) isActiveSubscriber(ctx context.Context, c model.Contact, emit Emitter) bool {
	companyIDs, err := p.hubspot.AssociatedCompanyIDs(ctx, c.ID)
	if err != nil {
		emit.emit(EventWarn, map[string]any{"name": c.FullName(), "message": "company lookup failed: " + err.Error()})
		return false
	}
	for _, companyID := range companyIDs {
		props, err := p.hubspot.CompanyProperties(ctx, companyID, companyProps)
		if err != nil {
			emit.emit(EventWarn, map[string]any{"name": c.FullName(), "message": "company properties failed: " + err.Error()})
			continue
		}
		status := strings.ToUpper(strings.TrimSpace(props["subscription_status"]))
		mrr, _ := strconv.ParseFloat(strings.TrimSpace(props["mrr_from_subscription"]), 64)
		if status == "ACTIVE" && mrr > 0 {
			return true
		}
	}
	return false
}

// buildCallSheet places every prepared entry into the reference block
// schedule and renders the persisted sheet rows.
func (p *Pipeline) buildCallSheet(entries []callsheet.Entry) ([]model.SheetBlock, []model.SheetContact) {
	placed, unplaced := callsheet.Schedule(entries)
	blocks := callsheet.BuildBlocks(p.cfg.DisplayTZ)

	sheet := make([]model.SheetBlock, 0, len(blocks))
	for i, b := range blocks {
		sb := model.SheetBlock{
			Label:       b.Label,
			Color:       b.Color,
			Description: b.Description,
			LocalTime:   b.TheirLocal,
		}
		for _, e := range placed[i] {
			sb.Contacts = append(sb.Contacts, sheetContact(e, e.TZLabel))
		}
		sheet = append(sheet, sb)
	}

	var unknown []model.SheetContact
	for _, e := range unplaced {
		unknown = append(unknown, sheetContact(e, "???"))
	}
	return sheet, unknown
}

func sheetContact(e callsheet.Entry, tz string) model.SheetContact {
	return model.SheetContact{
		Name:      e.Contact.FullName(),
		Title:     e.Contact.JobTitle,
		Company:   e.Contact.Company,
		TZ:        tz,
		Phone:     e.Contact.BestPhone(),
		Email:     e.Contact.Email,
		ContactID: e.Contact.ID,
	}
}
