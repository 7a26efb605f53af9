package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/session"
	"github.com/sells-group/coldcall-cli/pkg/hubspot"
	"github.com/sells-group/coldcall-cli/pkg/octave"
)

// fakeHubSpot implements hubspot.Client with overridable behavior per
// method. Unset methods return zero values.
type fakeHubSpot struct {
	mu sync.Mutex

	findListFn       func(name string) (string, error)
	membershipsFn    func(listID string) ([]string, error)
	batchContactsFn  func(ids []string) ([]model.Contact, error)
	companyIDsFn     func(contactID string) ([]string, error)
	companyPropsFn   func(companyID string) (map[string]string, error)
	latestEmailFn    func(contactID string) (*hubspot.Email, error)
	hasPrepNoteFn    func(contactID string) (bool, error)
	prepNotesFn      func(contactID string) ([]hubspot.Note, error)
	createNoteFn     func(contactID, html string) (string, error)
	archiveNoteFn    func(noteID string) error

	createdNotes  []string
	archivedNotes []string
}

func (f *fakeHubSpot) FindListByName(_ context.Context, name string) (string, error) {
	if f.findListFn != nil {
		return f.findListFn(name)
	}
	return "", nil
}

func (f *fakeHubSpot) ListLists(context.Context, string) ([]hubspot.ListInfo, error) {
	return nil, nil
}

func (f *fakeHubSpot) ListMemberships(_ context.Context, listID string) ([]string, error) {
	if f.membershipsFn != nil {
		return f.membershipsFn(listID)
	}
	return nil, nil
}

func (f *fakeHubSpot) BatchGetContacts(_ context.Context, ids []string) ([]model.Contact, error) {
	if f.batchContactsFn != nil {
		return f.batchContactsFn(ids)
	}
	return nil, nil
}

func (f *fakeHubSpot) CampaignOptions(context.Context) ([]hubspot.CampaignOption, error) {
	return nil, nil
}

func (f *fakeHubSpot) AssociatedCompanyIDs(_ context.Context, contactID string) ([]string, error) {
	if f.companyIDsFn != nil {
		return f.companyIDsFn(contactID)
	}
	return nil, nil
}

func (f *fakeHubSpot) CompanyProperties(_ context.Context, companyID string, _ []string) (map[string]string, error) {
	if f.companyPropsFn != nil {
		return f.companyPropsFn(companyID)
	}
	return nil, nil
}

func (f *fakeHubSpot) LatestOutboundEmail(_ context.Context, contactID string) (*hubspot.Email, error) {
	if f.latestEmailFn != nil {
		return f.latestEmailFn(contactID)
	}
	return &hubspot.Email{Subject: "Subject", BodyText: "Body"}, nil
}

func (f *fakeHubSpot) HasPrepNote(_ context.Context, contactID string) (bool, error) {
	if f.hasPrepNoteFn != nil {
		return f.hasPrepNoteFn(contactID)
	}
	return false, nil
}

func (f *fakeHubSpot) PrepNotes(_ context.Context, contactID string) ([]hubspot.Note, error) {
	if f.prepNotesFn != nil {
		return f.prepNotesFn(contactID)
	}
	return nil, nil
}

func (f *fakeHubSpot) CreateNote(_ context.Context, contactID, html string) (string, error) {
	f.mu.Lock()
	f.createdNotes = append(f.createdNotes, contactID)
	f.mu.Unlock()
	if f.createNoteFn != nil {
		return f.createNoteFn(contactID, html)
	}
	return "note-" + contactID, nil
}

func (f *fakeHubSpot) ArchiveNote(_ context.Context, noteID string) error {
	f.mu.Lock()
	f.archivedNotes = append(f.archivedNotes, noteID)
	f.mu.Unlock()
	if f.archiveNoteFn != nil {
		return f.archiveNoteFn(noteID)
	}
	return nil
}

// fakeOctave implements octave.Client.
type fakeOctave struct {
	mu sync.Mutex

	generateFn      func(c model.Contact) (string, error)
	qualifyFn       func(domain string) (*octave.CompanyQualification, error)
	prospectFn      func(domain string) ([]octave.Person, error)
	enrichCompanyFn func(domain string) (*octave.CompanyEnrichment, error)
	enrichPersonFn  func(p octave.PersonInput) (*octave.PersonEnrichment, error)

	generated []string
}

func (f *fakeOctave) GenerateCallScript(_ context.Context, c model.Contact, _, _ string) (string, error) {
	f.mu.Lock()
	f.generated = append(f.generated, c.ID)
	f.mu.Unlock()
	if f.generateFn != nil {
		return f.generateFn(c)
	}
	return "script for " + c.ID, nil
}

func (f *fakeOctave) QualifyCompany(_ context.Context, domain string) (*octave.CompanyQualification, error) {
	if f.qualifyFn != nil {
		return f.qualifyFn(domain)
	}
	return nil, nil
}

func (f *fakeOctave) ProspectPeople(_ context.Context, domain string) ([]octave.Person, error) {
	if f.prospectFn != nil {
		return f.prospectFn(domain)
	}
	return nil, nil
}

func (f *fakeOctave) EnrichCompany(_ context.Context, domain string) (*octave.CompanyEnrichment, error) {
	if f.enrichCompanyFn != nil {
		return f.enrichCompanyFn(domain)
	}
	return &octave.CompanyEnrichment{Summary: "summary"}, nil
}

func (f *fakeOctave) EnrichPerson(_ context.Context, p octave.PersonInput) (*octave.PersonEnrichment, error) {
	if f.enrichPersonFn != nil {
		return f.enrichPersonFn(p)
	}
	return &octave.PersonEnrichment{Summary: "person summary"}, nil
}

// recorder collects emitted events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emitter() Emitter {
	return func(e Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	}
}

func (r *recorder) ofType(typ string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count(typ string) int { return len(r.ofType(typ)) }

// newTestPipeline wires fakes into a pipeline with all pacing disabled.
func newTestPipeline(hs *fakeHubSpot, oc *fakeOctave) (*Pipeline, *session.Store) {
	store := session.New(session.NewMemBackend())
	p := New(hs, oc, store, nil, Config{
		GeneratePause: -1,
		CommitPause:   -1,
		ScanPause:     -1,
	})
	p.sleep = func(time.Duration) {}
	p.now = func() time.Time { return time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC) }
	return p, store
}
