// Package hubspot provides a client for the HubSpot CRM v3 API: lists,
// contacts, engagement emails, and notes.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/resilience"
)

// PrepNoteMarker identifies notes written by this tool. Note bodies are
// matched on this substring when checking for existing prep.
const PrepNoteMarker = "COLD CALL PREP"

// batchReadLimit is HubSpot's maximum batch-read size.
const batchReadLimit = 100

// Client defines the HubSpot operations used by the calling pipeline.
type Client interface {
	// FindListByName resolves a list by exact name match. Returns "" when
	// no list matches; a partial match never falls back to the first
	// result, since pulling the wrong list corrupts everything downstream.
	FindListByName(ctx context.Context, name string) (string, error)
	// ListLists returns all lists created by the given user.
	ListLists(ctx context.Context, creatorID string) ([]ListInfo, error)
	// ListMemberships returns every contact ID in a list, paging as needed.
	ListMemberships(ctx context.Context, listID string) ([]string, error)
	// BatchGetContacts reads contacts with the standard calling properties.
	BatchGetContacts(ctx context.Context, ids []string) ([]model.Contact, error)
	// CampaignOptions reads the campaign enrollment property options.
	CampaignOptions(ctx context.Context) ([]CampaignOption, error)
	// AssociatedCompanyIDs returns company IDs associated with a contact.
	AssociatedCompanyIDs(ctx context.Context, contactID string) ([]string, error)
	// CompanyProperties reads named properties from a company.
	CompanyProperties(ctx context.Context, companyID string, properties []string) (map[string]string, error)
	// LatestOutboundEmail returns the most recent outbound email for a
	// contact, or nil when none exists.
	LatestOutboundEmail(ctx context.Context, contactID string) (*Email, error)
	// HasPrepNote reports whether the contact already has a prep note.
	HasPrepNote(ctx context.Context, contactID string) (bool, error)
	// PrepNotes returns all prep notes for a contact, newest first.
	PrepNotes(ctx context.Context, contactID string) ([]Note, error)
	// CreateNote writes a note and associates it with a contact.
	CreateNote(ctx context.Context, contactID, htmlBody string) (string, error)
	// ArchiveNote soft-deletes a note.
	ArchiveNote(ctx context.Context, noteID string) error
}

// ListInfo is one row of the list dropdown.
type ListInfo struct {
	ID   string `json:"listId"`
	Name string `json:"name"`
	Size int    `json:"size"`
	Type string `json:"type"`
}

// CampaignOption is one enrollment option of the campaign property.
type CampaignOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Email is the subject and body of an outbound engagement email.
type Email struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// Body returns the HTML body, falling back to plain text.
func (e *Email) Body() string {
	if e.BodyHTML != "" {
		return e.BodyHTML
	}
	return e.BodyText
}

// Note is a CRM note engagement.
type Note struct {
	ID        string
	Body      string
	CreatedAt string
}

// contactProperties are the properties fetched for every pulled contact.
var contactProperties = []string{
	"firstname", "lastname", "email", "company", "jobtitle",
	"phone", "mobilephone", "city", "state", "country", "hs_timezone",
}

// Option configures the HubSpot client.
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
	token   string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a HubSpot client authenticated with a private app token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.hubapi.com",
		http: &http.Client{
			Timeout: 120 * time.Second,
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

// do issues one JSON request with retries on transient failures. Rate
// limit responses carry their Retry-After hint into the backoff.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: marshal payload")
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "hubspot: %s %s", method, path)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: read response body")
		}

		if te := resilience.TransientFromResponse("hubspot", resp); te != nil {
			return nil, te
		}
		if resp.StatusCode >= 400 {
			return nil, eris.Errorf("hubspot: %s %s: status %d: %s", method, path, resp.StatusCode, respBody)
		}
		return respBody, nil
	})
}

type listSearchResponse struct {
	Lists []struct {
		ListID               string `json:"listId"`
		Name                 string `json:"name"`
		CreatedByID          string `json:"createdById"`
		ProcessingType       string `json:"processingType"`
		AdditionalProperties struct {
			ListSize string `json:"hs_list_size"`
		} `json:"additionalProperties"`
	} `json:"lists"`
	HasMore bool `json:"hasMore"`
	Offset  int  `json:"offset"`
}

func (c *httpClient) FindListByName(ctx context.Context, name string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/crm/v3/lists/search", nil, map[string]any{
		"query": name,
	})
	if err != nil {
		return "", eris.Wrap(err, "hubspot: search lists")
	}

	var result listSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "hubspot: unmarshal list search")
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, lst := range result.Lists {
		if strings.ToLower(strings.TrimSpace(lst.Name)) == want {
			return lst.ListID, nil
		}
	}
	return "", nil
}

func (c *httpClient) ListLists(ctx context.Context, creatorID string) ([]ListInfo, error) {
	var all []ListInfo
	offset := 0
	for {
		body, err := c.do(ctx, http.MethodPost, "/crm/v3/lists/search", nil, map[string]any{
			"query":  "",
			"offset": offset,
		})
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: list lists")
		}

		var result listSearchResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, eris.Wrap(err, "hubspot: unmarshal list search")
		}

		for _, lst := range result.Lists {
			if lst.CreatedByID != creatorID {
				continue
			}
			size, _ := strconv.Atoi(lst.AdditionalProperties.ListSize)
			all = append(all, ListInfo{
				ID:   lst.ListID,
				Name: lst.Name,
				Size: size,
				Type: lst.ProcessingType,
			})
		}

		if !result.HasMore {
			break
		}
		if result.Offset > offset {
			offset = result.Offset
		} else {
			offset += 20
		}
	}
	return all, nil
}

func (c *httpClient) ListMemberships(ctx context.Context, listID string) ([]string, error) {
	var ids []string
	after := ""
	for {
		query := url.Values{}
		if after != "" {
			query.Set("after", after)
		}
		body, err := c.do(ctx, http.MethodGet, "/crm/v3/lists/"+listID+"/memberships", query, nil)
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: list memberships")
		}

		var result struct {
			Results []struct {
				RecordID string `json:"recordId"`
				ID       string `json:"id"`
			} `json:"results"`
			Paging struct {
				Next struct {
					After string `json:"after"`
				} `json:"next"`
			} `json:"paging"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, eris.Wrap(err, "hubspot: unmarshal memberships")
		}

		for _, r := range result.Results {
			id := r.RecordID
			if id == "" {
				id = r.ID
			}
			if id != "" {
				ids = append(ids, id)
			}
		}

		after = result.Paging.Next.After
		if after == "" {
			break
		}
	}
	return ids, nil
}

func (c *httpClient) BatchGetContacts(ctx context.Context, ids []string) ([]model.Contact, error) {
	var contacts []model.Contact
	for start := 0; start < len(ids); start += batchReadLimit {
		end := start + batchReadLimit
		if end > len(ids) {
			end = len(ids)
		}

		inputs := make([]map[string]string, 0, end-start)
		for _, id := range ids[start:end] {
			inputs = append(inputs, map[string]string{"id": id})
		}

		body, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/read", nil, map[string]any{
			"inputs":     inputs,
			"properties": contactProperties,
		})
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: batch read contacts")
		}

		var result struct {
			Results []struct {
				ID         string            `json:"id"`
				Properties map[string]string `json:"properties"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, eris.Wrap(err, "hubspot: unmarshal batch read")
		}

		for _, r := range result.Results {
			contacts = append(contacts, contactFromProperties(r.ID, r.Properties))
		}
	}
	return contacts, nil
}

func contactFromProperties(id string, props map[string]string) model.Contact {
	return model.Contact{
		ID:           id,
		FirstName:    props["firstname"],
		LastName:     props["lastname"],
		Email:        props["email"],
		Company:      props["company"],
		JobTitle:     props["jobtitle"],
		Phone:        props["phone"],
		MobilePhone:  props["mobilephone"],
		City:         props["city"],
		State:        props["state"],
		Country:      props["country"],
		TimezoneHint: props["hs_timezone"],
	}
}

func (c *httpClient) CampaignOptions(ctx context.Context) ([]CampaignOption, error) {
	body, err := c.do(ctx, http.MethodGet, "/crm/v3/properties/contacts/current_campaign_enrollment", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: read campaign property")
	}

	var result struct {
		Options []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"options"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal campaign property")
	}

	options := make([]CampaignOption, 0, len(result.Options))
	for _, opt := range result.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		options = append(options, CampaignOption{Value: opt.Value, Label: label})
	}
	return options, nil
}

func (c *httpClient) AssociatedCompanyIDs(ctx context.Context, contactID string) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet,
		"/crm/v3/objects/contacts/"+contactID+"/associations/companies", nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: contact company associations")
	}

	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal associations")
	}

	ids := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (c *httpClient) CompanyProperties(ctx context.Context, companyID string, properties []string) (map[string]string, error) {
	query := url.Values{"properties": []string{strings.Join(properties, ",")}}
	body, err := c.do(ctx, http.MethodGet, "/crm/v3/objects/companies/"+companyID, query, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: read company")
	}

	var result struct {
		Properties map[string]string `json:"properties"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal company")
	}
	return result.Properties, nil
}

func (c *httpClient) LatestOutboundEmail(ctx context.Context, contactID string) (*Email, error) {
	// hs_email_direction "EMAIL" means outbound; inbound is
	// "INCOMING_EMAIL" and forwards are "FORWARDED_EMAIL".
	body, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/emails/search", nil, map[string]any{
		"filterGroups": []map[string]any{{
			"filters": []map[string]string{
				{"propertyName": "associations.contact", "operator": "EQ", "value": contactID},
				{"propertyName": "hs_email_direction", "operator": "EQ", "value": "EMAIL"},
			},
		}},
		"properties": []string{"hs_email_subject", "hs_email_html", "hs_email_text", "hs_timestamp"},
		"sorts":      []map[string]string{{"propertyName": "hs_timestamp", "direction": "DESCENDING"}},
		"limit":      1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: search emails")
	}

	var result struct {
		Results []struct {
			Properties map[string]string `json:"properties"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal email search")
	}
	if len(result.Results) == 0 {
		return nil, nil
	}

	props := result.Results[0].Properties
	return &Email{
		Subject:  props["hs_email_subject"],
		BodyHTML: props["hs_email_html"],
		BodyText: props["hs_email_text"],
	}, nil
}

func (c *httpClient) searchNotes(ctx context.Context, contactID string, sorted bool) ([]Note, error) {
	payload := map[string]any{
		"filterGroups": []map[string]any{{
			"filters": []map[string]string{
				{"propertyName": "associations.contact", "operator": "EQ", "value": contactID},
			},
		}},
		"properties": []string{"hs_note_body", "hs_timestamp", "hs_createdate"},
		"limit":      100,
	}
	if sorted {
		payload["sorts"] = []map[string]string{{"propertyName": "hs_createdate", "direction": "DESCENDING"}}
	}

	body, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/notes/search", nil, payload)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: search notes")
	}

	var result struct {
		Results []struct {
			ID         string            `json:"id"`
			Properties map[string]string `json:"properties"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal note search")
	}

	var notes []Note
	for _, r := range result.Results {
		noteBody := r.Properties["hs_note_body"]
		if !strings.Contains(noteBody, PrepNoteMarker) {
			continue
		}
		notes = append(notes, Note{
			ID:        r.ID,
			Body:      noteBody,
			CreatedAt: r.Properties["hs_createdate"],
		})
	}
	return notes, nil
}

func (c *httpClient) HasPrepNote(ctx context.Context, contactID string) (bool, error) {
	notes, err := c.searchNotes(ctx, contactID, false)
	if err != nil {
		return false, err
	}
	return len(notes) > 0, nil
}

func (c *httpClient) PrepNotes(ctx context.Context, contactID string) ([]Note, error) {
	return c.searchNotes(ctx, contactID, true)
}

func (c *httpClient) CreateNote(ctx context.Context, contactID, htmlBody string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/notes", nil, map[string]any{
		"properties": map[string]string{
			"hs_note_body": htmlBody,
			"hs_timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "hubspot: create note")
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", eris.Wrap(err, "hubspot: unmarshal created note")
	}

	assocPath := fmt.Sprintf("/crm/v3/objects/notes/%s/associations/contacts/%s/note_to_contact",
		created.ID, contactID)
	if _, err := c.do(ctx, http.MethodPut, assocPath, nil, map[string]string{}); err != nil {
		return "", eris.Wrap(err, "hubspot: associate note")
	}
	return created.ID, nil
}

func (c *httpClient) ArchiveNote(ctx context.Context, noteID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/crm/v3/objects/notes/"+noteID, nil, nil); err != nil {
		return eris.Wrap(err, "hubspot: archive note")
	}
	return nil
}
