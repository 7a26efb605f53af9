// Package slack builds and posts the daily call sheet to a Slack webhook.
// The sheet goes out as a header message plus one chunk per run of time
// blocks, each linking contacts back to their CRM records.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/callsheet"
	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/resilience"
)

// chunkLimit stays under Slack's ~4000 character per-message cap with
// room for mrkdwn overhead.
const chunkLimit = 3800

// BuildMessages renders the call sheet as Slack mrkdwn. The header is the
// parent message; the returned blocks are posted after it in order. Dead
// zone blocks and empty blocks are omitted.
func BuildMessages(s *model.Session, portalID string) (string, []string) {
	dateDisplay := s.CallingDate
	if dt, err := time.Parse("2006-01-02", s.CallingDate); err == nil {
		dateDisplay = dt.Format("Monday Jan 02")
	}

	header := fmt.Sprintf(
		":telephone_receiver: _%s Call Sheet — %s_\n"+
			"_%d contacts prepped_ | :scroll: _= prep note ready_\n"+
			"_Strategy: every prospect called at their 10-11 AM local. Times in PT._\n\n"+
			"_Full call sheet below_ :point_down:",
		dateDisplay, s.Campaign, s.Stats.Prepped,
	)

	preppedIDs := make(map[string]bool, len(s.Contacts))
	for _, c := range s.Contacts {
		preppedIDs[c.ContactID] = true
	}

	var messages []string
	for _, block := range s.CallSheet {
		if block.Color == callsheet.ColorDeadZone || len(block.Contacts) == 0 {
			continue
		}

		emoji := ":large_yellow_circle:"
		if block.Color == callsheet.ColorPrime {
			emoji = ":green_circle:"
		}

		var b strings.Builder
		fmt.Fprintf(&b, "_%s_ — _%s_ %s\n", block.Label, block.Description, emoji)
		for _, c := range block.Contacts {
			b.WriteString("\n" + contactLine(c, portalID, preppedIDs, ":telephone_receiver:"))
		}
		messages = append(messages, b.String())
	}

	if len(s.UnknownTZ) > 0 {
		var b strings.Builder
		b.WriteString(":warning: _UNKNOWN TIME ZONE — schedule manually_\n")
		for _, c := range s.UnknownTZ {
			b.WriteString("\n" + contactLine(c, portalID, preppedIDs, ":question:"))
		}
		messages = append(messages, b.String())
	}

	messages = append(messages, redialBlock)
	return header, messages
}

func contactLine(c model.SheetContact, portalID string, preppedIDs map[string]bool, fallbackIcon string) string {
	icon := fallbackIcon
	if preppedIDs[c.ContactID] {
		icon = ":scroll:"
	}
	url := fmt.Sprintf("https://app.hubspot.com/contacts/%s/record/0-1/%s", portalID, c.ContactID)
	return fmt.Sprintf("%s <%s|%s> — %s", icon, url, c.Name, c.Company)
}

// redialBlock is the static afternoon schedule appended to every sheet.
// Each hour re-dials one zone's no-answers during their 4-5 PM window.
const redialBlock = "-------------------------\n\n" +
	":arrows_counterclockwise: _AFTERNOON RE-DIALS_\n\n" +
	"_1:00-2:00p_ — Re-dial ET no-answers (their 4-5 PM)\n" +
	"_2:00-3:00p_ — Re-dial CT no-answers (their 4-5 PM)\n" +
	"_3:00-4:00p_ — Re-dial MT no-answers (their 4-5 PM)\n" +
	"_4:00-5:00p_ — Re-dial PT no-answers (their 4-5 PM)\n\n" +
	"_10-11 AM local and late afternoon carry the highest connect rates._"

// Poster sends call sheets to a Slack incoming webhook.
type Poster struct {
	webhookURL string
	portalID   string
	http       *http.Client
	retry      resilience.RetryConfig

	// sleep paces consecutive chunk posts; replaced in tests.
	sleep func(time.Duration)
}

// PosterOption configures a Poster.
type PosterOption func(*Poster)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) PosterOption {
	return func(p *Poster) {
		p.http = hc
	}
}

// WithRetryConfig overrides the retry schedule.
func WithRetryConfig(cfg resilience.RetryConfig) PosterOption {
	return func(p *Poster) {
		p.retry = cfg
	}
}

// WithSleep replaces the inter-chunk pause (for testing).
func WithSleep(fn func(time.Duration)) PosterOption {
	return func(p *Poster) {
		p.sleep = fn
	}
}

// NewPoster creates a Poster for the given webhook. An empty webhook URL
// is allowed; Post then reports ErrNotConfigured.
func NewPoster(webhookURL, portalID string, opts ...PosterOption) *Poster {
	p := &Poster{
		webhookURL: webhookURL,
		portalID:   portalID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ErrNotConfigured is returned by Post when no webhook URL is set.
var ErrNotConfigured = eris.New("slack: webhook URL not configured")

// Post sends the call sheet: the header first, then the thread messages
// packed into as few chunks as fit under the message cap. Returns the
// number of messages sent.
func (p *Poster) Post(ctx context.Context, s *model.Session) (int, error) {
	if p.webhookURL == "" {
		return 0, ErrNotConfigured
	}

	header, threadMessages := BuildMessages(s, p.portalID)
	if err := p.send(ctx, header); err != nil {
		return 0, eris.Wrap(err, "slack: post header")
	}

	chunks := packChunks(threadMessages, chunkLimit)
	for i, chunk := range chunks {
		if i > 0 {
			p.sleep(500 * time.Millisecond)
		}
		if err := p.send(ctx, chunk); err != nil {
			return i + 1, eris.Wrapf(err, "slack: post chunk %d/%d", i+1, len(chunks))
		}
	}
	return len(chunks) + 1, nil
}

// packChunks greedily joins messages with blank lines, starting a new
// chunk whenever the next message would push past the limit. A single
// oversized message becomes its own chunk rather than being split.
func packChunks(messages []string, limit int) []string {
	var chunks []string
	current := ""
	for _, msg := range messages {
		if current != "" && len(current)+len(msg)+2 > limit {
			chunks = append(chunks, current)
			current = msg
			continue
		}
		if current == "" {
			current = msg
		} else {
			current += "\n\n" + msg
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func (p *Poster) send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return eris.Wrap(err, "slack: marshal payload")
	}

	return resilience.Do(ctx, p.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return eris.Wrap(err, "slack: create request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "slack: post webhook")
		}
		defer resp.Body.Close()

		if te := resilience.TransientFromResponse("slack", resp); te != nil {
			return te
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("slack: webhook returned status %d", resp.StatusCode)
		}
		return nil
	})
}
