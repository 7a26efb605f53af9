// Package notefmt renders generated call scripts into the structured HTML
// notes written back to the CRM. Generation output is markdown with three
// sections (voicemail, live call, objections); notes get a fixed header
// plus one formatted block per section found.
package notefmt

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/coldcall-cli/internal/model"
)

var (
	sectionSplitRe = regexp.MustCompile(`(?i)###\s*(?:OUTPUT\s*\d+\s*:\s*)?`)
	voicemailRe    = regexp.MustCompile(`(?i)^VOICEMAIL\s*SCRIPT\s*\n*`)
	objectionsRe   = regexp.MustCompile(`(?i)^(?:POTENTIAL\s*)?OBJECTIONS?\s*\n*`)
	liveCallRe     = regexp.MustCompile(`(?i)^(?:LIVE\s*)?CALL\s*SCRIPT\s*\n*`)

	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	underRe  = regexp.MustCompile(`__(.+?)__`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	hruleRe  = regexp.MustCompile(`(?m)^[*\-_]{3,}\s*$`)
	paraRe   = regexp.MustCompile(`\n\s*\n`)

	boldHeaderRe  = regexp.MustCompile(`^\*\*([A-Z][A-Z\s':]+?):?\*\*:?\s*$`)
	plainHeaderRe = regexp.MustCompile(`^([A-Z][A-Z\s':]{3,}):?\s*$`)

	objectionLabelRe = regexp.MustCompile(`^\*\*(?:Objection|OBJECTION)\s*:?\*\*\s*["“](.+?)["”]?\s*$`)
	categoryRe       = regexp.MustCompile(`^([A-Z][A-Z\s/\-]+?):\s*["“](.+?)["”]?\s*$`)
	responseHeaderRe = regexp.MustCompile(`^\*\*Responses?\s*\d*\s*:?\*\*:?\s*`)
	bulletRe         = regexp.MustCompile(`^[*\-•]\s+`)
	inlineRespRe     = regexp.MustCompile(`^\*\*Response\s*\d*:?\*\*\s*`)

	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

type sections struct {
	voicemail  string
	liveCall   string
	objections string
}

// splitSections carves generation output into its three known sections.
// Headers appear as "### OUTPUT 1: VOICEMAIL SCRIPT" or bare
// "### VOICEMAIL SCRIPT"; unrecognized sections are ignored.
func splitSections(scriptContent string) sections {
	var s sections
	for _, part := range sectionSplitRe.Split(scriptContent, -1) {
		stripped := strings.TrimSpace(part)
		head := stripped
		if len(head) > 60 {
			head = head[:60]
		}
		upper := strings.ToUpper(head)
		switch {
		case strings.HasPrefix(upper, "VOICEMAIL"):
			s.voicemail = strings.TrimSpace(voicemailRe.ReplaceAllString(stripped, ""))
		case strings.HasPrefix(upper, "POTENTIAL OBJECTION") || strings.HasPrefix(upper, "OBJECTION"):
			s.objections = strings.TrimSpace(objectionsRe.ReplaceAllString(stripped, ""))
		case strings.HasPrefix(upper, "LIVE CALL") || strings.HasPrefix(upper, "CALL SCRIPT"):
			s.liveCall = strings.TrimSpace(liveCallRe.ReplaceAllString(stripped, ""))
		}
	}
	return s
}

// stripMD removes bold, underline, and italic markers, leaving plain text.
// Bold goes first so paired single asterisks left behind are true italics.
func stripMD(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = underRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	return text
}

// paragraphsHTML renders text as <p> blocks: blank lines separate
// paragraphs, single newlines become <br>.
func paragraphsHTML(text string) string {
	var b strings.Builder
	for _, p := range paraRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(p, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

func formatVoicemailHTML(vmText string) string {
	if vmText == "" {
		return ""
	}
	clean := stripMD(strings.TrimSpace(vmText))
	clean = hruleRe.ReplaceAllString(clean, "")
	return paragraphsHTML(clean)
}

type labeledBlock struct {
	label   string
	content string
}

// formatLiveCallHTML renders the live call script with its subsection
// headers (OPENER, THE HOOK, THE ASK, and so on) bolded above their body.
func formatLiveCallHTML(lcText string) string {
	if lcText == "" {
		return ""
	}

	var (
		blocks       []labeledBlock
		currentLabel string
		haveLabel    bool
		currentLines []string
	)
	flush := func() {
		if haveLabel || len(currentLines) > 0 {
			blocks = append(blocks, labeledBlock{
				label:   currentLabel,
				content: strings.TrimSpace(strings.Join(currentLines, "\n")),
			})
		}
	}

	for _, line := range strings.Split(lcText, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			if len(currentLines) > 0 {
				currentLines = append(currentLines, "")
			}
			continue
		}

		var header string
		if m := boldHeaderRe.FindStringSubmatch(stripped); m != nil {
			header = m[1]
		} else if m := plainHeaderRe.FindStringSubmatch(stripped); m != nil {
			header = m[1]
		}

		if header != "" {
			flush()
			currentLabel = strings.TrimRight(strings.TrimSpace(header), ":")
			haveLabel = true
			currentLines = nil
			continue
		}
		currentLines = append(currentLines, stripped)
	}
	flush()

	var b strings.Builder
	for _, blk := range blocks {
		if blk.content == "" && blk.label == "" {
			continue
		}
		contentHTML := paragraphsHTML(stripMD(blk.content))
		if blk.label != "" {
			fmt.Fprintf(&b, "<p><strong>%s:</strong></p>%s", blk.label, contentHTML)
		} else {
			b.WriteString(contentHTML)
		}
	}
	return b.String()
}

type objectionBlock struct {
	category  string
	objection string
	responses []string
}

// formatObjectionsHTML renders each objection as a quoted header followed
// by its bulleted responses.
func formatObjectionsHTML(objText string) string {
	if objText == "" {
		return ""
	}

	var (
		blocks  []objectionBlock
		current objectionBlock
		open    bool
	)
	flush := func() {
		if open {
			blocks = append(blocks, current)
		}
	}

	for _, line := range strings.Split(objText, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		if m := objectionLabelRe.FindStringSubmatch(stripped); m != nil {
			flush()
			current = objectionBlock{objection: trimQuotes(m[1])}
			open = true
			continue
		}
		if m := categoryRe.FindStringSubmatch(stripped); m != nil && !strings.HasPrefix(stripped, "*") {
			flush()
			current = objectionBlock{category: strings.TrimSpace(m[1]), objection: trimQuotes(m[2])}
			open = true
			continue
		}
		if strings.HasPrefix(stripped, "**Response") {
			// Either a bare "**Responses:**" header or inline response text.
			inline := strings.TrimSpace(responseHeaderRe.ReplaceAllString(stripped, ""))
			if inline != "" {
				current.responses = append(current.responses, stripMD(inline))
			}
			continue
		}
		if bulletRe.MatchString(stripped) {
			resp := strings.TrimSpace(bulletRe.ReplaceAllString(stripped, ""))
			resp = inlineRespRe.ReplaceAllString(resp, "")
			current.responses = append(current.responses, stripMD(resp))
		}
	}
	flush()

	var b strings.Builder
	for _, blk := range blocks {
		if blk.category != "" {
			fmt.Fprintf(&b, "<p><strong>%s:</strong> “%s”</p>", blk.category, blk.objection)
		} else {
			fmt.Fprintf(&b, "<p><strong>“%s”</strong></p>", blk.objection)
		}
		if len(blk.responses) > 0 {
			b.WriteString("<ul>")
			for _, r := range blk.responses {
				fmt.Fprintf(&b, "<li>%s</li>", r)
			}
			b.WriteString("</ul>")
		}
	}
	return b.String()
}

func trimQuotes(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), `"”`)
}

// FormatNote renders the full CRM note for one contact: a header line with
// name, company, campaign, and generation date, then one block per
// section present in the script.
func FormatNote(c model.Contact, campaign, scriptContent string, generated time.Time) string {
	s := splitSections(scriptContent)

	parts := []string{
		fmt.Sprintf(
			"<p><strong>\U0001F525 COLD CALL PREP - %s %s | %s</strong></p><p>%s | Generated %s</p>",
			c.FirstName, c.LastName, c.Company, campaign, generated.Format("2006-01-02"),
		),
	}

	if s.voicemail != "" {
		parts = append(parts,
			"<p><strong>\U0001F4DE VOICEMAIL SCRIPT</strong></p>"+formatVoicemailHTML(s.voicemail))
	}
	if s.liveCall != "" {
		parts = append(parts,
			"<p><strong>\U0001F3AF LIVE CALL SCRIPT</strong></p>"+formatLiveCallHTML(s.liveCall))
	}
	if s.objections != "" {
		parts = append(parts,
			"<p><strong>\U0001F6E1️ OBJECTION HANDLING</strong></p>"+formatObjectionsHTML(s.objections))
	}

	return strings.Join(parts, "<br>")
}

// Normalize reduces HTML to its visible text for comparison. The CRM may
// rewrite whitespace, entities, and smart punctuation, so both sides of a
// comparison go through this before matching.
func Normalize(html string) string {
	if html == "" {
		return ""
	}
	text := tagRe.ReplaceAllString(html, " ")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	replacer := strings.NewReplacer("“", `"`, "”", `"`, "—", "-", "–", "-")
	return replacer.Replace(text)
}
