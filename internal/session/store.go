// Package session persists generation runs as JSON documents so an
// interrupted run can be resumed and a partially committed run retried.
package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/model"
)

// ErrNotFound is returned when no session document exists for a token.
var ErrNotFound = eris.New("session not found")

// Document name prefixes. Prep and forge sessions share one backend but
// live in separate namespaces.
const (
	prepPrefix  = "prep_"
	forgePrefix = "forge_"
	docSuffix   = ".json"
)

// Info describes one stored document.
type Info struct {
	Name     string
	Modified time.Time
}

// Backend is the raw document store. Save must be atomic: a reader never
// observes a partially written document.
type Backend interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
	List(prefix string) ([]Info, error)
	Remove(name string) error
}

// Store provides typed access to prep and forge sessions over a Backend.
type Store struct {
	backend Backend
}

// New returns a Store over the given backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func prepName(id string) string  { return prepPrefix + id + docSuffix }
func forgeName(id string) string { return forgePrefix + id + docSuffix }

// SavePrep persists a generation session. Called as a checkpoint after
// every generated contact and once more at completion.
func (s *Store) SavePrep(sess *model.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return eris.Wrap(err, "session: marshal prep session")
	}
	if err := s.backend.Save(prepName(sess.ID), data); err != nil {
		return eris.Wrap(err, "session: save prep session")
	}
	return nil
}

// LoadPrep reads one generation session by token.
func (s *Store) LoadPrep(id string) (*model.Session, error) {
	data, err := s.backend.Load(prepName(id))
	if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, eris.Wrap(err, "session: decode prep session")
	}
	return &sess, nil
}

// DeletePrep removes a generation session. Deleting an absent session is
// not an error.
func (s *Store) DeletePrep(id string) error {
	if err := s.backend.Remove(prepName(id)); err != nil && !eris.Is(err, ErrNotFound) {
		return eris.Wrap(err, "session: delete prep session")
	}
	return nil
}

// ListPrep returns summaries of all stored generation sessions, newest
// first. Documents that fail to decode are skipped rather than aborting
// the listing.
func (s *Store) ListPrep() ([]model.SessionSummary, error) {
	infos, err := s.backend.List(prepPrefix)
	if err != nil {
		return nil, eris.Wrap(err, "session: list prep sessions")
	}

	summaries := make([]model.SessionSummary, 0, len(infos))
	for _, info := range infos {
		sess, err := s.loadByName(info.Name)
		if err != nil {
			continue
		}
		summaries = append(summaries, model.SessionSummary{
			SessionID:    sess.ID,
			Segment:      sess.Segment,
			Campaign:     sess.Campaign,
			CallingDate:  sess.CallingDate,
			PreppedCount: len(sess.Contacts),
			IsComplete:   sess.GenerationComplete,
			Modified:     info.Modified.UTC().Format(time.RFC3339),
		})
	}
	return summaries, nil
}

// FindResumable returns the most recently modified incomplete session
// matching the normalized (segment, campaign, calling date) key, or nil
// when none qualifies. A session qualifies only if it holds at least one
// generated artifact.
func (s *Store) FindResumable(segment, campaign, callingDate string) (*model.Session, error) {
	infos, err := s.backend.List(prepPrefix)
	if err != nil {
		return nil, eris.Wrap(err, "session: scan for resumable session")
	}

	var (
		best     *model.Session
		bestTime time.Time
	)
	for _, info := range infos {
		sess, err := s.loadByName(info.Name)
		if err != nil {
			continue
		}
		if !sess.MatchesKey(segment, campaign, callingDate) || !sess.Resumable() {
			continue
		}
		if best == nil || info.Modified.After(bestTime) {
			best = sess
			bestTime = info.Modified
		}
	}
	return best, nil
}

func (s *Store) loadByName(name string) (*model.Session, error) {
	data, err := s.backend.Load(name)
	if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, eris.Wrap(err, "session: decode prep session")
	}
	if sess.ID == "" {
		sess.ID = tokenFromName(name, prepPrefix)
	}
	return &sess, nil
}

// SaveForge persists a prospecting session.
func (s *Store) SaveForge(sess *model.ForgeSession) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return eris.Wrap(err, "session: marshal forge session")
	}
	if err := s.backend.Save(forgeName(sess.ID), data); err != nil {
		return eris.Wrap(err, "session: save forge session")
	}
	return nil
}

// LoadForge reads one prospecting session by token.
func (s *Store) LoadForge(id string) (*model.ForgeSession, error) {
	data, err := s.backend.Load(forgeName(id))
	if err != nil {
		return nil, err
	}
	var sess model.ForgeSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, eris.Wrap(err, "session: decode forge session")
	}
	return &sess, nil
}

// DeleteForge removes a prospecting session.
func (s *Store) DeleteForge(id string) error {
	if err := s.backend.Remove(forgeName(id)); err != nil && !eris.Is(err, ErrNotFound) {
		return eris.Wrap(err, "session: delete forge session")
	}
	return nil
}

// ListForge returns summaries of all stored prospecting sessions.
func (s *Store) ListForge() ([]model.ForgeSummary, error) {
	infos, err := s.backend.List(forgePrefix)
	if err != nil {
		return nil, eris.Wrap(err, "session: list forge sessions")
	}

	summaries := make([]model.ForgeSummary, 0, len(infos))
	for _, info := range infos {
		data, err := s.backend.Load(info.Name)
		if err != nil {
			continue
		}
		var sess model.ForgeSession
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if sess.ID == "" {
			sess.ID = tokenFromName(info.Name, forgePrefix)
		}
		qualified := 0
		for _, c := range sess.Companies {
			if c.Qualified {
				qualified++
			}
		}
		summaries = append(summaries, model.ForgeSummary{
			SessionID:               sess.ID,
			CampaignID:              sess.CampaignID,
			CampaignName:            sess.CampaignName,
			Stage:                   sess.Stage,
			Status:                  sess.Status,
			DiscoveredDomainsCount:  len(sess.DiscoveredDomains),
			CompaniesCount:          len(sess.Companies),
			QualifiedCompaniesCount: qualified,
			PeopleCount:             len(sess.People),
			Modified:                info.Modified.UTC().Format(time.RFC3339),
		})
	}
	return summaries, nil
}

func tokenFromName(name, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, prefix), docSuffix)
}
