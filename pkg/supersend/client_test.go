package supersend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sells-group/coldcall-cli/internal/resilience"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func newTestClient(url string) Client {
	return NewClient("test-key", WithBaseURL(url), WithRetryConfig(fastRetry()))
}

func decodeBulkAction(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	if r.URL.Path != "/bulk-action" {
		t.Errorf("unexpected path %s", r.URL.Path)
	}
	if got := r.Header.Get("X-API-Key"); got != "test-key" {
		t.Errorf("X-API-Key = %q", got)
	}
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return payload
}

func TestAssignStep(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = decodeBulkAction(t, r)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).AssignStep(context.Background(), "c1", "seq9", 3); err != nil {
		t.Fatalf("AssignStep: %v", err)
	}
	if payload["action"] != "assign_step" || payload["sequence_id"] != "seq9" {
		t.Errorf("payload = %+v", payload)
	}
	if payload["step_number"].(float64) != 3 {
		t.Errorf("step_number = %v", payload["step_number"])
	}
	ids := payload["contact_ids"].([]any)
	if len(ids) != 1 || ids[0] != "c1" {
		t.Errorf("contact_ids = %v", ids)
	}
}

func TestTransferContact_DefaultsStepToOne(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = decodeBulkAction(t, r)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).TransferContact(context.Background(), "c1", "seqA", "seqB", 0); err != nil {
		t.Fatalf("TransferContact: %v", err)
	}
	if payload["action"] != "transfer" {
		t.Errorf("action = %v", payload["action"])
	}
	if payload["from_sequence_id"] != "seqA" || payload["to_sequence_id"] != "seqB" {
		t.Errorf("payload = %+v", payload)
	}
	if payload["step_number"].(float64) != 1 {
		t.Errorf("step_number = %v", payload["step_number"])
	}
}

func TestFinishContact(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = decodeBulkAction(t, r)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).FinishContact(context.Background(), "c1", "seq9"); err != nil {
		t.Fatalf("FinishContact: %v", err)
	}
	if payload["action"] != "finish" || payload["sequence_id"] != "seq9" {
		t.Errorf("payload = %+v", payload)
	}
	if _, present := payload["step_number"]; present {
		t.Error("finish carries a step_number")
	}
}

func TestGetContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts/c1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Contact{
			ID:         "c1",
			Email:      "dana@summit.example",
			SequenceID: "seq9",
			StepNumber: 4,
			Status:     "active",
		})
	}))
	defer server.Close()

	contact, err := newTestClient(server.URL).GetContact(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if contact.SequenceID != "seq9" || contact.StepNumber != 4 {
		t.Errorf("contact = %+v", contact)
	}
}

func TestBulkAction_RetriesTransient(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).FinishContact(context.Background(), "c1", "seq9"); err != nil {
		t.Fatalf("FinishContact: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d", calls)
	}
}

func TestBulkAction_PermanentError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).AssignStep(context.Background(), "c1", "seq9", 1); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("401 retried %d times", calls)
	}
}
