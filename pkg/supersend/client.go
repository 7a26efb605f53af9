// Package supersend provides a client for the Supersend sequencing API.
// Disposition routing moves contacts through sequences with bulk actions:
// assign_step, transfer, and finish.
package supersend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/resilience"
)

// Client defines the Supersend operations used by disposition routing.
type Client interface {
	// AssignStep moves a contact to a specific step in a sequence.
	AssignStep(ctx context.Context, contactID, sequenceID string, stepNumber int) error
	// TransferContact moves a contact from one sequence to another,
	// starting at the given step.
	TransferContact(ctx context.Context, contactID, fromSequenceID, toSequenceID string, stepNumber int) error
	// FinishContact marks a contact as finished in a sequence.
	FinishContact(ctx context.Context, contactID, sequenceID string) error
	// GetContact reads a contact's current sequence state.
	GetContact(ctx context.Context, contactID string) (*Contact, error)
}

// Contact is a Supersend contact with its sequence position.
type Contact struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	SequenceID string `json:"sequence_id"`
	StepNumber int    `json:"step_number"`
	Status     string `json:"status"`
}

// Option configures the Supersend client.
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Supersend client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.supersend.io/v1",
		http: &http.Client{
			Timeout: 60 * time.Second,
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

func (c *httpClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "supersend: marshal payload")
		}
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, eris.Wrap(err, "supersend: create request")
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "supersend: %s %s", method, path)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "supersend: read response body")
		}

		if te := resilience.TransientFromResponse("supersend", resp); te != nil {
			return nil, te
		}
		if resp.StatusCode >= 400 {
			return nil, eris.Errorf("supersend: %s %s: status %d: %s", method, path, resp.StatusCode, respBody)
		}
		return respBody, nil
	})
}

func (c *httpClient) bulkAction(ctx context.Context, payload map[string]any) error {
	if _, err := c.do(ctx, http.MethodPost, "/bulk-action", payload); err != nil {
		return err
	}
	return nil
}

func (c *httpClient) AssignStep(ctx context.Context, contactID, sequenceID string, stepNumber int) error {
	err := c.bulkAction(ctx, map[string]any{
		"action":      "assign_step",
		"contact_ids": []string{contactID},
		"sequence_id": sequenceID,
		"step_number": stepNumber,
	})
	if err != nil {
		return eris.Wrapf(err, "supersend: assign step %d for contact %s", stepNumber, contactID)
	}
	return nil
}

func (c *httpClient) TransferContact(ctx context.Context, contactID, fromSequenceID, toSequenceID string, stepNumber int) error {
	if stepNumber <= 0 {
		stepNumber = 1
	}
	err := c.bulkAction(ctx, map[string]any{
		"action":           "transfer",
		"contact_ids":      []string{contactID},
		"from_sequence_id": fromSequenceID,
		"to_sequence_id":   toSequenceID,
		"step_number":      stepNumber,
	})
	if err != nil {
		return eris.Wrapf(err, "supersend: transfer contact %s", contactID)
	}
	return nil
}

func (c *httpClient) FinishContact(ctx context.Context, contactID, sequenceID string) error {
	err := c.bulkAction(ctx, map[string]any{
		"action":      "finish",
		"contact_ids": []string{contactID},
		"sequence_id": sequenceID,
	})
	if err != nil {
		return eris.Wrapf(err, "supersend: finish contact %s", contactID)
	}
	return nil
}

func (c *httpClient) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	body, err := c.do(ctx, http.MethodGet, "/contacts/"+contactID, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "supersend: get contact %s", contactID)
	}

	var contact Contact
	if err := json.Unmarshal(body, &contact); err != nil {
		return nil, eris.Wrap(err, "supersend: unmarshal contact")
	}
	return &contact, nil
}
