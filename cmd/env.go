package main

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/config"
	"github.com/sells-group/coldcall-cli/internal/dedup"
	"github.com/sells-group/coldcall-cli/internal/pipeline"
	"github.com/sells-group/coldcall-cli/internal/resilience"
	"github.com/sells-group/coldcall-cli/internal/session"
	"github.com/sells-group/coldcall-cli/internal/signal"
	"github.com/sells-group/coldcall-cli/pkg/anthropic"
	"github.com/sells-group/coldcall-cli/pkg/followup"
	"github.com/sells-group/coldcall-cli/pkg/hubspot"
	"github.com/sells-group/coldcall-cli/pkg/notion"
	"github.com/sells-group/coldcall-cli/pkg/octave"
	"github.com/sells-group/coldcall-cli/pkg/slack"
	"github.com/sells-group/coldcall-cli/pkg/supersend"
)

// appEnv holds every wired dependency for the commands.
type appEnv struct {
	cfg *config.Config

	hubspot   hubspot.Client
	octave    octave.Client
	notion    notion.Client
	supersend supersend.Client
	slack     *slack.Poster
	followup  *followup.Generator

	store    *session.Store
	dedup    *dedup.Store
	router   *signal.Router
	breakers *resilience.ServiceBreakers

	pipeline *pipeline.Pipeline
}

// newEnv wires clients from configuration. Clients whose credentials are
// absent are still constructed; their first call fails with a clear error
// instead of the process refusing to start.
func newEnv(cfg *config.Config) (*appEnv, error) {
	retry := resilience.FromRetryConfig(
		cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoff, cfg.Retry.MaxBackoff)
	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())

	hs := hubspot.NewClient(cfg.HubSpot.Token,
		hubspot.WithBaseURL(cfg.HubSpot.BaseURL),
		hubspot.WithRetryConfig(retry),
	)
	oc := octave.NewClient(cfg.Octave.Key,
		octave.Agents{
			Content:        cfg.Octave.ContentAgent,
			QualifyCompany: cfg.Octave.QualifyCompany,
			QualifyPerson:  cfg.Octave.QualifyPerson,
			Prospector:     cfg.Octave.ProspectorAgent,
			EnrichCompany:  cfg.Octave.EnrichCompanyAgent,
			EnrichPerson:   cfg.Octave.EnrichPersonAgent,
		},
		octave.WithBaseURL(cfg.Octave.BaseURL),
		octave.WithRetryConfig(retry),
		octave.WithCircuitBreaker(breakers.Get("octave")),
	)

	backend, err := session.NewDirBackend(cfg.Sessions.Dir)
	if err != nil {
		return nil, err
	}
	store := session.New(backend)

	dedupStore, err := dedup.New(cfg.Dedup.Path,
		time.Duration(cfg.Dedup.CooldownHours)*time.Hour, cfg.Dedup.SweepThreshold)
	if err != nil {
		return nil, err
	}

	router, err := signal.LoadRouter(cfg.Signal.RoutesPath)
	if err != nil {
		return nil, err
	}

	poster := slack.NewPoster(cfg.Slack.WebhookURL, cfg.HubSpot.PortalID,
		slack.WithRetryConfig(retry))

	pipe := pipeline.New(hs, oc, store, poster, pipeline.Config{
		QualThreshold:   float64(cfg.Calling.QualThreshold),
		ProspectWorkers: cfg.Forge.MaxWorkers,
		EnrichWorkers:   cfg.Forge.EnrichMaxWorkers,
		GeneratePause:   time.Duration(cfg.Calling.PacingSecs * float64(time.Second)),
		CommitPause:     500 * time.Millisecond,
		ScanPause:       300 * time.Millisecond,
		DisplayTZ:       cfg.Calling.DisplayTimezone,
	})

	return &appEnv{
		cfg:       cfg,
		hubspot:   hs,
		octave:    oc,
		notion:    notion.NewClient(cfg.Notion.Token),
		supersend: supersend.NewClient(cfg.Supersend.Key, supersend.WithBaseURL(cfg.Supersend.BaseURL)),
		slack:     poster,
		followup:  followup.NewGenerator(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, 0),
		store:     store,
		dedup:     dedupStore,
		router:    router,
		breakers:  breakers,
		pipeline:  pipe,
	}, nil
}

// Close releases held resources.
func (e *appEnv) Close() {
	if e.dedup != nil {
		_ = e.dedup.Close()
	}
}

// firstMissing reports the first empty credential in key, value pairs.
// Flows preflight their credentials so a misconfigured deploy fails the
// request up front instead of partway through a run.
func firstMissing(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return eris.New("missing credential: " + pairs[i])
		}
	}
	return nil
}

// checkCalling guards script generation, which needs both the CRM and
// the agent service.
func (e *appEnv) checkCalling() error {
	return firstMissing(
		"hubspot.token", e.cfg.HubSpot.Token,
		"octave.key", e.cfg.Octave.Key,
	)
}

func (e *appEnv) checkCRM() error {
	return firstMissing("hubspot.token", e.cfg.HubSpot.Token)
}

func (e *appEnv) checkOctave() error {
	return firstMissing("octave.key", e.cfg.Octave.Key)
}

func (e *appEnv) checkNotion() error {
	return firstMissing("notion.token", e.cfg.Notion.Token)
}
