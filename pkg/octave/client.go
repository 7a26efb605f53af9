// Package octave provides a client for the Octave agent API: call script
// generation, company and person qualification, prospecting, and
// enrichment.
package octave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/resilience"
)

// Agents holds the agent OIDs for each operation. Every Octave call runs
// a named agent; the OIDs come from configuration.
type Agents struct {
	Content        string
	QualifyCompany string
	QualifyPerson  string
	Prospector     string
	EnrichCompany  string
	EnrichPerson   string
}

// Client defines the Octave operations used by the pipelines.
type Client interface {
	// GenerateCallScript runs the personalized cold call content agent,
	// seeded with the prospect's most recent outbound email.
	GenerateCallScript(ctx context.Context, contact model.Contact, emailSubject, emailBody string) (string, error)
	// QualifyCompany scores a company by domain. Returns nil when the
	// domain is unknown to Octave.
	QualifyCompany(ctx context.Context, domain string) (*CompanyQualification, error)
	// ProspectPeople finds people at a company.
	ProspectPeople(ctx context.Context, domain string) ([]Person, error)
	// EnrichCompany runs deep company enrichment.
	EnrichCompany(ctx context.Context, domain string) (*CompanyEnrichment, error)
	// EnrichPerson runs deep person enrichment.
	EnrichPerson(ctx context.Context, person PersonInput) (*PersonEnrichment, error)
}

// CompanyQualification is the parsed qualify-company result.
type CompanyQualification struct {
	Name          string
	Domain        string
	CountryCode   string
	Industry      string
	EmployeeCount string
	Locality      string
	Description   string
	Score         float64
	Rationale     string
	Product       string
	Segment       string
	Playbook      string
}

// Person is one discovered prospect. The prospector returns either bare
// person objects or {contact: {...}} wrappers; both decode to this.
type Person struct {
	FirstName       string
	LastName        string
	Name            string
	Email           string
	Title           string
	LinkedIn        string
	CountryCode     string
	LocationText    string
}

// PersonInput identifies a person for enrichment.
type PersonInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	CompanyDomain   string `json:"companyDomain"`
	JobTitle        string `json:"jobTitle"`
	LinkedInProfile string `json:"linkedInProfile"`
}

// CompanyEnrichment is the parsed enrich-company result.
type CompanyEnrichment struct {
	Summary       string
	TalkingPoints []string
	TechStack     []string
	RecentNews    []string
}

// PersonEnrichment is the parsed enrich-person result.
type PersonEnrichment struct {
	Summary       string
	TalkingPoints []string
}

// Option configures the Octave client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetryConfig overrides the retry schedule.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithCircuitBreaker guards all calls with the given breaker. Octave is
// the slowest dependency in every run; when it goes down, the breaker
// fails the remaining contacts fast instead of burning the full retry
// schedule on each one.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *httpClient) {
		c.breaker = cb
	}
}

type httpClient struct {
	apiKey  string
	agents  Agents
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewClient creates an Octave client.
func NewClient(apiKey string, agents Agents, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		agents:  agents,
		baseURL: "https://app.octavehq.com/api/v2",
		http: &http.Client{
			// Enrichment agents routinely run for minutes.
			Timeout: 180 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post runs one agent call with retries; every attempt passes through the
// circuit breaker when one is configured.
func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "octave: marshal payload")
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		attempt := func(ctx context.Context) ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return nil, eris.Wrap(err, "octave: create request")
			}
			req.Header.Set("api_key", c.apiKey)
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.http.Do(req)
			if err != nil {
				return nil, eris.Wrapf(err, "octave: POST %s", path)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, eris.Wrap(err, "octave: read response body")
			}

			if te := resilience.TransientFromResponse("octave", resp); te != nil {
				return nil, te
			}
			if resp.StatusCode >= 400 {
				return nil, eris.Errorf("octave: POST %s: status %d: %s", path, resp.StatusCode, respBody)
			}
			return respBody, nil
		}

		if c.breaker != nil {
			return resilience.ExecuteVal(ctx, c.breaker, attempt)
		}
		return attempt(ctx)
	})
}

func (c *httpClient) GenerateCallScript(ctx context.Context, contact model.Contact, emailSubject, emailBody string) (string, error) {
	runtimeCtx := fmt.Sprintf(
		"Here is the most recent outbound email sent to this prospect. "+
			"Use this as your source material for all outputs.\n\nSubject: %s\n\n%s",
		emailSubject, emailBody,
	)

	body, err := c.post(ctx, "/agents/generate-content/run", map[string]string{
		"agentOId":       c.agents.Content,
		"firstName":      contact.FirstName,
		"lastName":       contact.LastName,
		"email":          contact.Email,
		"companyName":    contact.Company,
		"jobTitle":       contact.JobTitle,
		"runtimeContext": runtimeCtx,
	})
	if err != nil {
		return "", eris.Wrap(err, "octave: generate call script")
	}

	var result struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "octave: unmarshal generate response")
	}

	// The content agent answers with "content" or "text"; anything else is
	// kept raw so nothing generated is lost.
	if content, ok := result.Data["content"].(string); ok && content != "" {
		return content, nil
	}
	if text, ok := result.Data["text"].(string); ok && text != "" {
		return text, nil
	}
	raw, err := json.Marshal(result.Data)
	if err != nil {
		return "", eris.Wrap(err, "octave: re-marshal generate data")
	}
	return string(raw), nil
}

type qualifyCompanyResponse struct {
	Found bool `json:"found"`
	Data  *struct {
		Score     json.Number `json:"score"`
		Rationale string      `json:"rationale"`
		Product   string      `json:"product"`
		Segment   string      `json:"segment"`
		Playbook  string      `json:"playbook"`
		Company   *struct {
			Name          string      `json:"name"`
			Industry      string      `json:"industry"`
			EmployeeCount json.Number `json:"employeeCount"`
			Description   string      `json:"description"`
			Location      *struct {
				CountryCode string `json:"countryCode"`
				Locality    string `json:"locality"`
			} `json:"location"`
		} `json:"company"`
	} `json:"data"`
}

func (c *httpClient) QualifyCompany(ctx context.Context, domain string) (*CompanyQualification, error) {
	body, err := c.post(ctx, "/agents/qualify-company/run", map[string]string{
		"agentOId":      c.agents.QualifyCompany,
		"companyDomain": domain,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "octave: qualify company %s", domain)
	}

	var result qualifyCompanyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "octave: unmarshal qualify response")
	}
	if !result.Found && result.Data == nil {
		return nil, nil
	}

	qual := &CompanyQualification{Domain: domain, Name: domain}
	if result.Data == nil {
		return qual, nil
	}

	score, _ := result.Data.Score.Float64()
	qual.Score = score
	qual.Rationale = result.Data.Rationale
	qual.Product = result.Data.Product
	qual.Segment = result.Data.Segment
	qual.Playbook = result.Data.Playbook

	if comp := result.Data.Company; comp != nil {
		if comp.Name != "" {
			qual.Name = comp.Name
		}
		qual.Industry = comp.Industry
		qual.EmployeeCount = comp.EmployeeCount.String()
		qual.Description = comp.Description
		if loc := comp.Location; loc != nil {
			qual.CountryCode = loc.CountryCode
			qual.Locality = loc.Locality
		}
	}
	return qual, nil
}

// rawPerson decodes the prospector's loose person shape.
type rawPerson struct {
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Title           string          `json:"title"`
	JobTitle        string          `json:"jobTitle"`
	ProfileURL      string          `json:"profileUrl"`
	LinkedInProfile string          `json:"linkedInProfile"`
	CountryCode     string          `json:"countryCode"`
	Location        json.RawMessage `json:"location"`
	Contact         json.RawMessage `json:"contact"`
}

func (r rawPerson) toPerson() Person {
	p := Person{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Name:        r.Name,
		Email:       r.Email,
		Title:       r.Title,
		LinkedIn:    r.ProfileURL,
		CountryCode: r.CountryCode,
	}
	if p.Title == "" {
		p.Title = r.JobTitle
	}
	if p.LinkedIn == "" {
		p.LinkedIn = r.LinkedInProfile
	}

	// Location arrives as either a plain string or an object with a
	// countryCode.
	if len(r.Location) > 0 {
		var text string
		if err := json.Unmarshal(r.Location, &text); err == nil {
			p.LocationText = text
		} else {
			var loc struct {
				CountryCode string `json:"countryCode"`
			}
			if err := json.Unmarshal(r.Location, &loc); err == nil && p.CountryCode == "" {
				p.CountryCode = loc.CountryCode
			}
		}
	}
	return p
}

func (c *httpClient) ProspectPeople(ctx context.Context, domain string) ([]Person, error) {
	body, err := c.post(ctx, "/agents/prospector/run", map[string]string{
		"agentOId":      c.agents.Prospector,
		"companyDomain": domain,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "octave: prospect %s", domain)
	}

	var result struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "octave: unmarshal prospect response")
	}

	var raws []rawPerson

	// data is either {contacts: [...]} or a bare array.
	var wrapper struct {
		Contacts []rawPerson `json:"contacts"`
	}
	if err := json.Unmarshal(result.Data, &wrapper); err == nil && len(wrapper.Contacts) > 0 {
		raws = wrapper.Contacts
	} else {
		var list []rawPerson
		if err := json.Unmarshal(result.Data, &list); err == nil {
			raws = list
		}
	}

	people := make([]Person, 0, len(raws))
	for _, r := range raws {
		// Entries may nest the person under a "contact" key.
		if len(r.Contact) > 0 {
			var inner rawPerson
			if err := json.Unmarshal(r.Contact, &inner); err == nil {
				people = append(people, inner.toPerson())
				continue
			}
		}
		people = append(people, r.toPerson())
	}
	return people, nil
}

func (c *httpClient) EnrichCompany(ctx context.Context, domain string) (*CompanyEnrichment, error) {
	body, err := c.post(ctx, "/agents/enrich-company/run", map[string]string{
		"agentOId":      c.agents.EnrichCompany,
		"companyDomain": domain,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "octave: enrich company %s", domain)
	}

	var result struct {
		Data struct {
			Summary         string   `json:"summary"`
			CompanyOverview string   `json:"companyOverview"`
			Description     string   `json:"description"`
			TalkingPoints   []string `json:"talkingPoints"`
			TechStack       []string `json:"techStack"`
			RecentNews      []string `json:"recentNews"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "octave: unmarshal company enrichment")
	}

	summary := result.Data.Summary
	if summary == "" {
		summary = result.Data.CompanyOverview
	}
	if summary == "" {
		summary = result.Data.Description
	}

	return &CompanyEnrichment{
		Summary:       summary,
		TalkingPoints: result.Data.TalkingPoints,
		TechStack:     result.Data.TechStack,
		RecentNews:    result.Data.RecentNews,
	}, nil
}

func (c *httpClient) EnrichPerson(ctx context.Context, person PersonInput) (*PersonEnrichment, error) {
	body, err := c.post(ctx, "/agents/enrich-person/run", map[string]any{
		"agentOId": c.agents.EnrichPerson,
		"person":   person,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "octave: enrich person %s", person.Email)
	}

	var result struct {
		Data struct {
			Summary       string   `json:"summary"`
			Overview      string   `json:"overview"`
			TalkingPoints []string `json:"talkingPoints"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "octave: unmarshal person enrichment")
	}

	summary := result.Data.Summary
	if summary == "" {
		summary = result.Data.Overview
	}
	return &PersonEnrichment{
		Summary:       summary,
		TalkingPoints: result.Data.TalkingPoints,
	}, nil
}

// FullName returns the person's display name.
func (p Person) FullName() string {
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}
	if p.Name != "" {
		return p.Name
	}
	return "Unknown"
}
