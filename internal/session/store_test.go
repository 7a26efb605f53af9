package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sells-group/coldcall-cli/internal/model"
)

func prepSession(id, segment, campaign, date string, contacts ...model.SessionContact) *model.Session {
	return &model.Session{
		ID:          id,
		Segment:     segment,
		Campaign:    campaign,
		CallingDate: date,
		Contacts:    contacts,
	}
}

func withScript(id string) model.SessionContact {
	return model.SessionContact{ContactID: id, ScriptContent: "script for " + id}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := New(NewMemBackend())
	in := prepSession("abc12345", "Roofing", "Q3 Outbound", "2026-09-01", withScript("c1"))
	in.Stats.Prepped = 1

	if err := store.SavePrep(in); err != nil {
		t.Fatalf("SavePrep: %v", err)
	}
	out, err := store.LoadPrep("abc12345")
	if err != nil {
		t.Fatalf("LoadPrep: %v", err)
	}
	if out.Segment != "Roofing" || out.Campaign != "Q3 Outbound" || out.Stats.Prepped != 1 {
		t.Errorf("round trip lost fields: %+v", out)
	}
	if len(out.Contacts) != 1 || out.Contacts[0].ScriptContent == "" {
		t.Errorf("round trip lost contacts: %+v", out.Contacts)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := New(NewMemBackend())
	if _, err := store.LoadPrep("nope"); err != ErrNotFound {
		t.Fatalf("LoadPrep(missing) = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	store := New(NewMemBackend())
	if err := store.DeletePrep("nope"); err != nil {
		t.Fatalf("DeletePrep(missing) = %v, want nil", err)
	}
}

func TestStore_FindResumable_KeyNormalization(t *testing.T) {
	store := New(NewMemBackend())
	sess := prepSession("s1", "Roofing", "Q3 Outbound", "2026-09-01", withScript("c1"))
	if err := store.SavePrep(sess); err != nil {
		t.Fatal(err)
	}

	found, err := store.FindResumable("  ROOFING ", "q3 outbound", " 2026-09-01 ")
	if err != nil {
		t.Fatalf("FindResumable: %v", err)
	}
	if found == nil || found.ID != "s1" {
		t.Fatalf("FindResumable = %+v, want s1", found)
	}
}

func TestStore_FindResumable_SkipsCompleteAndEmpty(t *testing.T) {
	store := New(NewMemBackend())

	complete := prepSession("done1", "seg", "camp", "2026-09-01", withScript("c1"))
	complete.GenerationComplete = true
	if err := store.SavePrep(complete); err != nil {
		t.Fatal(err)
	}

	// Has contacts but no generated artifacts yet.
	empty := prepSession("empty1", "seg", "camp", "2026-09-01",
		model.SessionContact{ContactID: "c2"})
	if err := store.SavePrep(empty); err != nil {
		t.Fatal(err)
	}

	found, err := store.FindResumable("seg", "camp", "2026-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if found != nil {
		t.Errorf("FindResumable = %+v, want nil", found)
	}
}

func TestStore_FindResumable_PrefersNewest(t *testing.T) {
	store := New(NewMemBackend())
	older := prepSession("old1", "seg", "camp", "2026-09-01", withScript("c1"))
	newer := prepSession("new1", "seg", "camp", "2026-09-01", withScript("c2"))
	if err := store.SavePrep(older); err != nil {
		t.Fatal(err)
	}
	if err := store.SavePrep(newer); err != nil {
		t.Fatal(err)
	}

	found, err := store.FindResumable("seg", "camp", "2026-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ID != "new1" {
		t.Errorf("FindResumable = %+v, want new1", found)
	}
}

func TestStore_FindResumable_DifferentDateDoesNotMatch(t *testing.T) {
	store := New(NewMemBackend())
	sess := prepSession("s1", "seg", "camp", "2026-09-01", withScript("c1"))
	if err := store.SavePrep(sess); err != nil {
		t.Fatal(err)
	}

	found, err := store.FindResumable("seg", "camp", "2026-09-02")
	if err != nil {
		t.Fatal(err)
	}
	if found != nil {
		t.Errorf("FindResumable = %+v, want nil", found)
	}
}

func TestStore_ListPrep_SkipsCorruptDocuments(t *testing.T) {
	backend := NewMemBackend()
	store := New(backend)
	if err := store.SavePrep(prepSession("good1", "seg", "camp", "2026-09-01")); err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("prep_bad1.json", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.ListPrep()
	if err != nil {
		t.Fatalf("ListPrep: %v", err)
	}
	if len(summaries) != 1 || summaries[0].SessionID != "good1" {
		t.Errorf("ListPrep = %+v, want only good1", summaries)
	}
}

func TestStore_PrepAndForgeNamespacesDisjoint(t *testing.T) {
	store := New(NewMemBackend())
	if err := store.SavePrep(prepSession("tok1", "seg", "camp", "2026-09-01")); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveForge(&model.ForgeSession{ID: "tok2", Stage: 1}); err != nil {
		t.Fatal(err)
	}

	preps, err := store.ListPrep()
	if err != nil {
		t.Fatal(err)
	}
	forges, err := store.ListForge()
	if err != nil {
		t.Fatal(err)
	}
	if len(preps) != 1 || len(forges) != 1 {
		t.Errorf("len(preps) = %d, len(forges) = %d, want 1 and 1", len(preps), len(forges))
	}
	if forges[0].SessionID != "tok2" {
		t.Errorf("forge listing = %+v", forges)
	}
}

func TestDirBackend_AtomicSave(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewDirBackend(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := backend.Save("prep_a.json", []byte(`{"session_id":"a"}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// No temp files left behind after a successful save.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}

	data, err := backend.Load("prep_a.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `{"session_id":"a"}` {
		t.Errorf("Load = %q", data)
	}
}

func TestDirBackend_OverwriteReplacesWhole(t *testing.T) {
	backend, err := NewDirBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("prep_a.json", []byte("a long first document body")); err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("prep_a.json", []byte("short")); err != nil {
		t.Fatal(err)
	}
	data, err := backend.Load("prep_a.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "short" {
		t.Errorf("Load = %q, want full replacement", data)
	}
}

func TestDirBackend_ListFiltersPrefixAndSuffix(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewDirBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("prep_a.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("forge_b.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prep_c.json.tmp"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	infos, err := backend.List("prep_")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name != "prep_a.json" {
		t.Errorf("List = %+v, want only prep_a.json", infos)
	}
}

func TestDirBackend_ListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewDirBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("prep_old.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := backend.Save("prep_new.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	// Force distinct mtimes regardless of filesystem resolution.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "prep_old.json"), past, past); err != nil {
		t.Fatal(err)
	}

	infos, err := backend.List("prep_")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Name != "prep_new.json" {
		t.Errorf("List order = %+v, want prep_new.json first", infos)
	}
}

func TestDirBackend_RemoveMissing(t *testing.T) {
	backend, err := NewDirBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Remove("prep_nope.json"); err != ErrNotFound {
		t.Errorf("Remove(missing) = %v, want ErrNotFound", err)
	}
}
