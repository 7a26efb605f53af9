package model

import "strings"

// Stats aggregates per-run counters. Total always reconciles:
// total = prepped + every skip category + errors (prepped includes cached).
type Stats struct {
	Total             int            `json:"total"`
	Prepped           int            `json:"prepped"`
	SkippedSubscriber int            `json:"skipped_subscriber"`
	SkippedNoEmail    int            `json:"skipped_no_email"`
	SkippedExisting   int            `json:"skipped_existing"`
	SkippedCached     int            `json:"skipped_cached"`
	Errors            int            `json:"errors"`
	TZBreakdown       map[string]int `json:"tz_breakdown"`
}

// CountZone bumps the per-timezone breakdown for a display label.
func (s *Stats) CountZone(label string) {
	if s.TZBreakdown == nil {
		s.TZBreakdown = make(map[string]int)
	}
	s.TZBreakdown[label]++
}

// SessionContact is one prepared contact inside a persisted session:
// the generated artifact plus enough display data to commit and review it.
type SessionContact struct {
	ContactID     string `json:"contact_id"`
	Name          string `json:"name"`
	Company       string `json:"company"`
	NoteHTML      string `json:"note_html"`
	ScriptContent string `json:"script_content"`
	TZ            string `json:"tz"`
}

// SheetContact is a contact as rendered on the call sheet.
type SheetContact struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	TZ        string `json:"tz"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	ContactID string `json:"contact_id"`
}

// SheetBlock is a rendered call-sheet time block.
type SheetBlock struct {
	Label       string         `json:"label"`
	Color       string         `json:"color"`
	Description string         `json:"description"`
	LocalTime   string         `json:"local_time"`
	Contacts    []SheetContact `json:"contacts"`
}

// Session is one generation run, checkpointed to disk after every
// successfully generated contact and once more at completion.
type Session struct {
	ID                 string           `json:"session_id"`
	Segment            string           `json:"segment"`
	Campaign           string           `json:"campaign"`
	CallingDate        string           `json:"calling_date"`
	GenerationComplete bool             `json:"generation_complete"`
	Stats              Stats            `json:"stats"`
	CallSheet          []SheetBlock     `json:"call_sheet,omitempty"`
	UnknownTZ          []SheetContact   `json:"unknown_tz,omitempty"`
	Contacts           []SessionContact `json:"contacts"`

	// FailedIDs records contacts whose CRM write failed during the last
	// commit attempt. Non-empty means the session is retained and the next
	// commit processes only this subset.
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// Resumable reports whether the session can seed a re-run: it must hold at
// least one generated artifact and not yet be marked complete.
func (s *Session) Resumable() bool {
	if s == nil || s.GenerationComplete {
		return false
	}
	for _, c := range s.Contacts {
		if c.ScriptContent != "" {
			return true
		}
	}
	return false
}

// CachedScripts indexes contacts with a generated artifact by contact ID.
func (s *Session) CachedScripts() map[string]SessionContact {
	cached := make(map[string]SessionContact)
	if s == nil {
		return cached
	}
	for _, c := range s.Contacts {
		if c.ScriptContent != "" {
			cached[c.ContactID] = c
		}
	}
	return cached
}

// MatchesKey reports whether the session matches the normalized
// (segment, campaign, calling date) lookup key.
func (s *Session) MatchesKey(segment, campaign, callingDate string) bool {
	return NormalizeKeyField(s.Segment) == NormalizeKeyField(segment) &&
		NormalizeKeyField(s.Campaign) == NormalizeKeyField(campaign) &&
		strings.TrimSpace(s.CallingDate) == strings.TrimSpace(callingDate)
}

// NormalizeKeyField lowercases and trims a resume-key field.
func NormalizeKeyField(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// SessionSummary is the listing row for recoverable generation sessions.
type SessionSummary struct {
	SessionID    string `json:"session_id"`
	Segment      string `json:"segment"`
	Campaign     string `json:"campaign"`
	CallingDate  string `json:"calling_date"`
	PreppedCount int    `json:"prepped_count"`
	IsComplete   bool   `json:"is_complete"`
	Modified     string `json:"modified"`
}
