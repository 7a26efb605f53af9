package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sells-group/coldcall-cli/internal/callsheet"
	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/resilience"
)

const testPortalID = "46940643"

func testSession() *model.Session {
	return &model.Session{
		ID:          "sess-1",
		Campaign:    "Q3 Outbound",
		CallingDate: "2026-09-01",
		Stats:       model.Stats{Prepped: 2},
		Contacts: []model.SessionContact{
			{ContactID: "101", Name: "Jordan Reyes"},
			{ContactID: "102", Name: "Dana Whitfield"},
		},
		CallSheet: []model.SheetBlock{
			{
				Label:       "8:00 AM - 9:00 AM ET",
				Color:       callsheet.ColorPrime,
				Description: "Eastern Prospects",
				Contacts: []model.SheetContact{
					{ContactID: "101", Name: "Jordan Reyes", Company: "Summit Roofing"},
					{ContactID: "103", Name: "Lee Park", Company: "Park Exteriors"},
				},
			},
			{
				Label:       "1:00 PM - 3:00 PM ET",
				Color:       callsheet.ColorDeadZone,
				Description: "Lunch Dead Zone",
				Contacts: []model.SheetContact{
					{ContactID: "999", Name: "Should Not Appear", Company: "X"},
				},
			},
			{
				Label:       "3:00 PM - 4:00 PM ET",
				Color:       callsheet.ColorSecondary,
				Description: "Eastern Afternoon",
				Contacts:    nil,
			},
		},
		UnknownTZ: []model.SheetContact{
			{ContactID: "102", Name: "Dana Whitfield", Company: "Whitfield Co"},
		},
	}
}

func TestBuildMessages_Header(t *testing.T) {
	header, _ := BuildMessages(testSession(), testPortalID)
	if !strings.Contains(header, "Tuesday Sep 01 Call Sheet — Q3 Outbound") {
		t.Errorf("header = %q", header)
	}
	if !strings.Contains(header, "2 contacts prepped") {
		t.Errorf("header missing prepped count: %q", header)
	}
}

func TestBuildMessages_HeaderUnparseableDate(t *testing.T) {
	s := testSession()
	s.CallingDate = "next tuesday"
	header, _ := BuildMessages(s, testPortalID)
	if !strings.Contains(header, "next tuesday Call Sheet") {
		t.Errorf("raw date not preserved: %q", header)
	}
}

func TestBuildMessages_SkipsDeadZoneAndEmptyBlocks(t *testing.T) {
	_, messages := BuildMessages(testSession(), testPortalID)

	// One populated green block, the unknown-TZ block, and the redial
	// footer. The red block and the empty yellow block are dropped.
	if len(messages) != 3 {
		t.Fatalf("got %d messages: %v", len(messages), messages)
	}
	for _, msg := range messages {
		if strings.Contains(msg, "Should Not Appear") {
			t.Error("dead zone contact leaked into messages")
		}
		if strings.Contains(msg, "Eastern Afternoon") {
			t.Error("empty block rendered")
		}
	}
}

func TestBuildMessages_ContactLines(t *testing.T) {
	_, messages := BuildMessages(testSession(), testPortalID)
	block := messages[0]

	if !strings.Contains(block, ":green_circle:") {
		t.Errorf("prime block emoji missing: %q", block)
	}
	wantLink := "<https://app.hubspot.com/contacts/46940643/record/0-1/101|Jordan Reyes> — Summit Roofing"
	if !strings.Contains(block, wantLink) {
		t.Errorf("contact link missing: %q", block)
	}
	// 101 has a prep note, 103 does not.
	if !strings.Contains(block, ":scroll: <https://app.hubspot.com/contacts/46940643/record/0-1/101|") {
		t.Errorf("prepped icon missing: %q", block)
	}
	if strings.Contains(block, ":scroll: <https://app.hubspot.com/contacts/46940643/record/0-1/103|") {
		t.Errorf("unprepped contact marked prepped: %q", block)
	}
}

func TestBuildMessages_UnknownTZBlock(t *testing.T) {
	_, messages := BuildMessages(testSession(), testPortalID)
	unk := messages[1]
	if !strings.Contains(unk, "UNKNOWN TIME ZONE") {
		t.Errorf("unknown block missing: %q", unk)
	}
	// Prepped contacts keep the scroll icon even in the unknown block.
	if !strings.Contains(unk, ":scroll: <https://app.hubspot.com/contacts/46940643/record/0-1/102|Dana Whitfield>") {
		t.Errorf("unknown contact line = %q", unk)
	}
}

func TestBuildMessages_RedialFooterAlwaysLast(t *testing.T) {
	_, messages := BuildMessages(testSession(), testPortalID)
	last := messages[len(messages)-1]
	if !strings.Contains(last, "AFTERNOON RE-DIALS") {
		t.Errorf("redial footer missing: %q", last)
	}
	for _, zone := range []string{"ET", "CT", "MT", "PT"} {
		if !strings.Contains(last, "Re-dial "+zone+" no-answers") {
			t.Errorf("redial footer missing %s line", zone)
		}
	}
}

func TestPackChunks(t *testing.T) {
	chunks := packChunks([]string{"aaaa", "bbbb", "cccc"}, 10)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %v", chunks)
	}
	if chunks[0] != "aaaa\n\nbbbb" || chunks[1] != "cccc" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestPackChunks_OversizedMessageKeptWhole(t *testing.T) {
	big := strings.Repeat("x", 50)
	chunks := packChunks([]string{"small", big}, 10)
	if len(chunks) != 2 || chunks[1] != big {
		t.Fatalf("chunks = %v", chunks)
	}
}

func newTestPoster(url string) *Poster {
	return NewPoster(url, testPortalID,
		WithRetryConfig(resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
			Multiplier:     2.0,
		}),
		WithSleep(func(time.Duration) {}),
	)
}

func TestPost_SendsHeaderThenChunks(t *testing.T) {
	var texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		texts = append(texts, payload.Text)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	sent, err := newTestPoster(server.URL).Post(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if sent < 2 {
		t.Fatalf("sent = %d", sent)
	}
	if !strings.Contains(texts[0], "Call Sheet — Q3 Outbound") {
		t.Errorf("first message is not the header: %q", texts[0])
	}
	if !strings.Contains(texts[len(texts)-1], "AFTERNOON RE-DIALS") {
		t.Errorf("last message missing redial footer")
	}
}

func TestPost_NoWebhookConfigured(t *testing.T) {
	if _, err := NewPoster("", testPortalID).Post(context.Background(), testSession()); err != ErrNotConfigured {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestPost_RetriesTransientFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	if _, err := newTestPoster(server.URL).Post(context.Background(), testSession()); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if calls < 2 {
		t.Errorf("calls = %d", calls)
	}
}
