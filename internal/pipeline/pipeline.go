// Package pipeline runs the calling workflows end to end: pulling and
// filtering prospects, generating call scripts, building the call sheet,
// committing notes to the CRM, cleaning up duplicate notes, and the
// staged company and people prospecting runs.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/session"
	"github.com/sells-group/coldcall-cli/pkg/hubspot"
	"github.com/sells-group/coldcall-cli/pkg/octave"
)

// SlackPoster posts a finished call sheet. Satisfied by *slack.Poster.
type SlackPoster interface {
	Post(ctx context.Context, s *model.Session) (int, error)
}

// Config tunes pipeline pacing and thresholds.
type Config struct {
	// QualThreshold is the minimum 0-10 score for a company to qualify.
	QualThreshold float64
	// ProspectWorkers bounds parallel qualify and prospect calls.
	ProspectWorkers int
	// EnrichWorkers bounds parallel enrichment calls.
	EnrichWorkers int
	// GeneratePause spaces consecutive script generations.
	GeneratePause time.Duration
	// CommitPause spaces consecutive note writes.
	CommitPause time.Duration
	// ScanPause spaces consecutive note scans during cleanup.
	ScanPause time.Duration
	// DisplayTZ is the timezone the call sheet labels are rendered in.
	DisplayTZ string
}

// DefaultConfig returns the production pacing values.
func DefaultConfig() Config {
	return Config{
		QualThreshold:   8,
		ProspectWorkers: 5,
		EnrichWorkers:   3,
		GeneratePause:   time.Second,
		CommitPause:     500 * time.Millisecond,
		ScanPause:       300 * time.Millisecond,
		DisplayTZ:       "US/Pacific",
	}
}

// Pipeline wires the external services and session store together.
type Pipeline struct {
	hubspot hubspot.Client
	octave  octave.Client
	store   *session.Store
	slack   SlackPoster
	cfg     Config

	// gen paces consecutive script generations; nil when pacing is off.
	gen *rate.Limiter

	// sleep and now are replaced in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a Pipeline. slack may be nil; committing then skips the
// call sheet post.
func New(hs hubspot.Client, oc octave.Client, store *session.Store, slack SlackPoster, cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.QualThreshold <= 0 {
		cfg.QualThreshold = def.QualThreshold
	}
	if cfg.ProspectWorkers <= 0 {
		cfg.ProspectWorkers = def.ProspectWorkers
	}
	if cfg.EnrichWorkers <= 0 {
		cfg.EnrichWorkers = def.EnrichWorkers
	}
	if cfg.GeneratePause < 0 {
		cfg.GeneratePause = 0
	}
	if cfg.DisplayTZ == "" {
		cfg.DisplayTZ = def.DisplayTZ
	}
	p := &Pipeline{
		hubspot: hs,
		octave:  oc,
		store:   store,
		slack:   slack,
		cfg:     cfg,
		sleep:   time.Sleep,
		now:     time.Now,
	}
	if cfg.GeneratePause > 0 {
		p.gen = rate.NewLimiter(rate.Every(cfg.GeneratePause), 1)
	}
	return p
}

// paceGeneration blocks until the next generation slot. Skipped and
// cached contacts never wait; only real agent calls are paced.
func (p *Pipeline) paceGeneration(ctx context.Context) {
	if p.gen != nil {
		_ = p.gen.Wait(ctx)
	}
}

// newSessionID returns a short random session token.
func newSessionID() string {
	return uuid.NewString()[:8]
}

func (p *Pipeline) pause(d time.Duration) {
	if d > 0 {
		p.sleep(d)
	}
}
