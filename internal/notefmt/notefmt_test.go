package notefmt

import (
	"strings"
	"testing"
	"time"

	"github.com/sells-group/coldcall-cli/internal/model"
)

const sampleScript = `### OUTPUT 1: VOICEMAIL SCRIPT

Hi Jordan, this is Alex from Acme.

We help roofing contractors cut quoting time in half.
Call me back at 555-0100.

### OUTPUT 2: LIVE CALL SCRIPT

**OPENER:**
Hi Jordan, Alex with Acme. Did I catch you at a bad time?

**THE HOOK:**
We just helped **Summit Roofing** close 30% more bids.

**THE ASK:**
Worth fifteen minutes next week?

### OUTPUT 3: POTENTIAL OBJECTIONS

TIMING: "We're in our busy season"
* Totally get it. That's exactly why the teams we work with started now.
* **Response 2:** Fifteen minutes now saves hours in October.

**Objection:** "We already have a process"
**Responses:**
- Most of our customers did too.
`

var sampleContact = model.Contact{
	ID:        "101",
	FirstName: "Jordan",
	LastName:  "Reyes",
	Company:   "Summit Roofing",
}

func formatSample(t *testing.T) string {
	t.Helper()
	generated := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return FormatNote(sampleContact, "Q3 Outbound", sampleScript, generated)
}

func TestFormatNote_Header(t *testing.T) {
	html := formatSample(t)
	if !strings.Contains(html, "COLD CALL PREP - Jordan Reyes | Summit Roofing") {
		t.Errorf("header missing: %s", html)
	}
	if !strings.Contains(html, "Q3 Outbound | Generated 2026-09-01") {
		t.Errorf("campaign line missing: %s", html)
	}
}

func TestFormatNote_AllSectionsPresent(t *testing.T) {
	html := formatSample(t)
	for _, want := range []string{"VOICEMAIL SCRIPT", "LIVE CALL SCRIPT", "OBJECTION HANDLING"} {
		if !strings.Contains(html, want) {
			t.Errorf("section %q missing", want)
		}
	}
}

func TestFormatNote_VoicemailParagraphs(t *testing.T) {
	html := formatSample(t)
	if !strings.Contains(html, "<p>Hi Jordan, this is Alex from Acme.</p>") {
		t.Errorf("voicemail paragraph missing: %s", html)
	}
	// Single newline inside a paragraph becomes <br>.
	if !strings.Contains(html, "cut quoting time in half.<br>Call me back at 555-0100.") {
		t.Errorf("voicemail line break missing: %s", html)
	}
}

func TestFormatNote_LiveCallSubsections(t *testing.T) {
	html := formatSample(t)
	for _, label := range []string{"<p><strong>OPENER:</strong></p>", "<p><strong>THE HOOK:</strong></p>", "<p><strong>THE ASK:</strong></p>"} {
		if !strings.Contains(html, label) {
			t.Errorf("subsection %q missing: %s", label, html)
		}
	}
	// Bold markers inside the body are stripped.
	if strings.Contains(html, "**Summit Roofing**") {
		t.Error("markdown bold survived in live call body")
	}
	if !strings.Contains(html, "Summit Roofing close 30% more bids") {
		t.Errorf("hook body missing: %s", html)
	}
}

func TestFormatNote_Objections(t *testing.T) {
	html := formatSample(t)
	if !strings.Contains(html, "<p><strong>TIMING:</strong> “We're in our busy season”</p>") {
		t.Errorf("category objection missing: %s", html)
	}
	if !strings.Contains(html, "<p><strong>“We already have a process”</strong></p>") {
		t.Errorf("plain objection missing: %s", html)
	}
	if !strings.Contains(html, "<li>Totally get it. That's exactly why the teams we work with started now.</li>") {
		t.Errorf("bullet response missing: %s", html)
	}
	// Inline "**Response 2:**" prefix is stripped from the response text.
	if !strings.Contains(html, "<li>Fifteen minutes now saves hours in October.</li>") {
		t.Errorf("inline-labeled response missing: %s", html)
	}
	if !strings.Contains(html, "<li>Most of our customers did too.</li>") {
		t.Errorf("dash response missing: %s", html)
	}
}

func TestFormatNote_SectionHeadersWithoutOutputPrefix(t *testing.T) {
	script := "### VOICEMAIL SCRIPT\nQuick message.\n### CALL SCRIPT\nHello there.\n"
	html := FormatNote(sampleContact, "Camp", script, time.Now())
	if !strings.Contains(html, "<p>Quick message.</p>") {
		t.Errorf("voicemail missing: %s", html)
	}
	if !strings.Contains(html, "<p>Hello there.</p>") {
		t.Errorf("live call missing: %s", html)
	}
}

func TestFormatNote_EmptySectionsOmitted(t *testing.T) {
	script := "### OUTPUT 1: VOICEMAIL SCRIPT\nJust a voicemail.\n"
	html := FormatNote(sampleContact, "Camp", script, time.Now())
	if strings.Contains(html, "LIVE CALL SCRIPT") || strings.Contains(html, "OBJECTION HANDLING") {
		t.Errorf("empty sections rendered: %s", html)
	}
}

func TestStripMD(t *testing.T) {
	cases := map[string]string{
		"**bold** text":     "bold text",
		"__under__ text":    "under text",
		"an *italic* word":  "an italic word",
		"**a** and *b*":     "a and b",
		"no markdown here.": "no markdown here.",
	}
	for in, want := range cases {
		if got := stripMD(in); got != want {
			t.Errorf("stripMD(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := "<p><strong>Hi</strong>   there</p>\n<ul><li>one</li></ul>"
	if got := Normalize(in); got != "Hi there one" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestNormalize_SmartPunctuation(t *testing.T) {
	in := "<p>“quoted” — and – dashed</p>"
	if got := Normalize(in); got != `"quoted" - and - dashed` {
		t.Errorf("Normalize = %q", got)
	}
}

func TestNormalize_StableAcrossCRMRewrites(t *testing.T) {
	ours := "<p><strong>TIMING:</strong> “busy”</p><ul><li>resp</li></ul>"
	theirs := "<p><strong>TIMING:</strong>  \"busy\" </p>\n<ul>\n<li>resp</li>\n</ul>"
	if Normalize(ours) != Normalize(theirs) {
		t.Errorf("normalized forms differ: %q vs %q", Normalize(ours), Normalize(theirs))
	}
}
