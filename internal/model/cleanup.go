package model

// CleanupNote is one CRM note flagged for archival.
type CleanupNote struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
	Created string `json:"created"`
}

// CleanupEntry is the scan result for one contact: the note to keep and
// the duplicates to archive.
type CleanupEntry struct {
	ContactID  string        `json:"contact_id"`
	Name       string        `json:"name"`
	KeepID     string        `json:"keep_id"`
	TotalFound int           `json:"total_found"`
	Remove     []CleanupNote `json:"remove"`
}

// CleanupManifest is the full scan result for a session, persisted
// between the scan and execute phases.
type CleanupManifest struct {
	SessionID string         `json:"session_id"`
	Entries   []CleanupEntry `json:"manifest"`
}

// RemoveCount totals the notes flagged for archival.
func (m *CleanupManifest) RemoveCount() int {
	n := 0
	for _, e := range m.Entries {
		n += len(e.Remove)
	}
	return n
}
