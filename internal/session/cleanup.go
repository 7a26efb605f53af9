package session

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/model"
)

const cleanupPrefix = "cleanup_"

func cleanupName(id string) string { return cleanupPrefix + id + docSuffix }

// SaveCleanup persists a cleanup scan manifest for later execution.
func (s *Store) SaveCleanup(m *model.CleanupManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "session: marshal cleanup manifest")
	}
	if err := s.backend.Save(cleanupName(m.SessionID), data); err != nil {
		return eris.Wrap(err, "session: save cleanup manifest")
	}
	return nil
}

// LoadCleanup reads the cleanup manifest for a session.
func (s *Store) LoadCleanup(sessionID string) (*model.CleanupManifest, error) {
	data, err := s.backend.Load(cleanupName(sessionID))
	if err != nil {
		return nil, err
	}
	var m model.CleanupManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "session: decode cleanup manifest")
	}
	if m.SessionID == "" {
		m.SessionID = sessionID
	}
	return &m, nil
}

// DeleteCleanup removes a cleanup manifest. Deleting an absent manifest
// is not an error.
func (s *Store) DeleteCleanup(sessionID string) error {
	if err := s.backend.Remove(cleanupName(sessionID)); err != nil && !eris.Is(err, ErrNotFound) {
		return eris.Wrap(err, "session: delete cleanup manifest")
	}
	return nil
}
