package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/session"
)

func savedSession(t *testing.T, store *session.Store, contacts ...model.SessionContact) *model.Session {
	t.Helper()
	sess := &model.Session{
		ID:                 "sess1",
		Segment:            "Roofing - Week 1",
		Campaign:           "Q3 Outbound",
		CallingDate:        "September 3rd",
		GenerationComplete: true,
		Contacts:           contacts,
	}
	if err := store.SavePrep(sess); err != nil {
		t.Fatalf("SavePrep: %v", err)
	}
	return sess
}

type fakePoster struct {
	calls int
	err   error
}

func (f *fakePoster) Post(context.Context, *model.Session) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestCommit_AllSucceed(t *testing.T) {
	hs := &fakeHubSpot{}
	p, store := newTestPipeline(hs, &fakeOctave{})
	poster := &fakePoster{}
	p.slack = poster

	savedSession(t, store,
		model.SessionContact{ContactID: "c1", Name: "Ada", NoteHTML: "<div>a</div>"},
		model.SessionContact{ContactID: "c2", Name: "Grace", NoteHTML: "<div>b</div>"},
	)

	rec := &recorder{}
	sess, err := p.Commit(context.Background(), "sess1", rec.emitter())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(hs.createdNotes) != 2 {
		t.Fatalf("created notes = %v", hs.createdNotes)
	}
	if len(sess.FailedIDs) != 0 {
		t.Fatalf("failed ids = %v", sess.FailedIDs)
	}
	if poster.calls != 1 {
		t.Fatalf("poster calls = %d", poster.calls)
	}
	if rec.count(EventInscribed) != 2 || rec.count(EventApprovedComplete) != 1 {
		t.Fatalf("events: inscribed=%d complete=%d",
			rec.count(EventInscribed), rec.count(EventApprovedComplete))
	}

	if _, err := store.LoadPrep("sess1"); !eris.Is(err, session.ErrNotFound) {
		t.Fatalf("session still present after full commit: %v", err)
	}
}

func TestCommit_PartialFailureKeepsSession(t *testing.T) {
	hs := &fakeHubSpot{createNoteFn: func(contactID, _ string) (string, error) {
		if contactID == "c2" {
			return "", eris.New("engagement write refused")
		}
		return "note-" + contactID, nil
	}}
	p, store := newTestPipeline(hs, &fakeOctave{})

	savedSession(t, store,
		model.SessionContact{ContactID: "c1", Name: "Ada", NoteHTML: "<div>a</div>"},
		model.SessionContact{ContactID: "c2", Name: "Grace", NoteHTML: "<div>b</div>"},
	)

	sess, err := p.Commit(context.Background(), "sess1", nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(sess.FailedIDs) != 1 || sess.FailedIDs[0] != "c2" {
		t.Fatalf("failed ids = %v", sess.FailedIDs)
	}

	saved, err := store.LoadPrep("sess1")
	if err != nil {
		t.Fatalf("LoadPrep after partial failure: %v", err)
	}
	if len(saved.FailedIDs) != 1 || saved.FailedIDs[0] != "c2" {
		t.Fatalf("saved failed ids = %v", saved.FailedIDs)
	}
}

func TestCommit_RetryProcessesOnlyFailed(t *testing.T) {
	hs := &fakeHubSpot{}
	p, store := newTestPipeline(hs, &fakeOctave{})

	sess := savedSession(t, store,
		model.SessionContact{ContactID: "c1", Name: "Ada", NoteHTML: "<div>a</div>"},
		model.SessionContact{ContactID: "c2", Name: "Grace", NoteHTML: "<div>b</div>"},
	)
	sess.FailedIDs = []string{"c2"}
	if err := store.SavePrep(sess); err != nil {
		t.Fatalf("SavePrep: %v", err)
	}

	if _, err := p.Commit(context.Background(), "sess1", nil); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// c1 already has its note; only c2 is retried.
	if len(hs.createdNotes) != 1 || hs.createdNotes[0] != "c2" {
		t.Fatalf("created notes = %v", hs.createdNotes)
	}
	if _, err := store.LoadPrep("sess1"); !eris.Is(err, session.ErrNotFound) {
		t.Fatalf("session not deleted after successful retry: %v", err)
	}
}

func TestCommit_SlackFailureIsWarning(t *testing.T) {
	hs := &fakeHubSpot{}
	p, store := newTestPipeline(hs, &fakeOctave{})
	p.slack = &fakePoster{err: eris.New("webhook down")}

	savedSession(t, store, model.SessionContact{ContactID: "c1", Name: "Ada", NoteHTML: "<div>a</div>"})

	rec := &recorder{}
	sess, err := p.Commit(context.Background(), "sess1", rec.emitter())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(sess.FailedIDs) != 0 {
		t.Fatalf("failed ids = %v", sess.FailedIDs)
	}
	if rec.count(EventWarn) != 1 {
		t.Fatalf("warn events = %d", rec.count(EventWarn))
	}
}

func TestCommit_UnknownSession(t *testing.T) {
	p, _ := newTestPipeline(&fakeHubSpot{}, &fakeOctave{})
	if _, err := p.Commit(context.Background(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestDiscard(t *testing.T) {
	p, store := newTestPipeline(&fakeHubSpot{}, &fakeOctave{})
	savedSession(t, store, model.SessionContact{ContactID: "c1"})

	if err := p.Discard("sess1", nil); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := store.LoadPrep("sess1"); !eris.Is(err, session.ErrNotFound) {
		t.Fatalf("session still present: %v", err)
	}
}
