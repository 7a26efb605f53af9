package pipeline

import "encoding/json"

// Event is one progress message from a streaming pipeline run. The JSON
// form is flat: the type field is merged with the payload, matching what
// the UI's event-source handler expects.
type Event struct {
	Type string
	Data map[string]any
}

// Event types emitted by the generation, commit, cleanup, and
// prospecting pipelines.
const (
	EventStatus       = "status"
	EventProgress     = "progress"
	EventSkip         = "skip"
	EventWarn         = "warn"
	EventGenerating   = "generating"
	EventDoneContact  = "done_contact"
	EventError        = "error"
	EventErrorContact = "error_contact"
	EventDone         = "done"
	EventComplete     = "complete"

	EventInscribed        = "inscribed"
	EventApprovedComplete = "approved_complete"

	EventScanResult      = "scan_result"
	EventScanComplete    = "scan_complete"
	EventArchived        = "archived"
	EventCleanupComplete = "cleanup_complete"

	EventCompanyFound            = "company_found"
	EventProspectComplete        = "prospect_complete"
	EventCompanyEnriched         = "company_enriched"
	EventEnrichCompaniesComplete = "enrich_companies_complete"
	EventPersonEnriched          = "person_enriched"
	EventPeopleComplete          = "people_complete"
)

// Emitter receives pipeline events. A nil Emitter is valid and drops
// everything, so callers that only want the final result can pass nil.
type Emitter func(Event)

func (fn Emitter) emit(typ string, data map[string]any) {
	if fn != nil {
		fn(Event{Type: typ, Data: data})
	}
}

// MarshalJSON flattens the event: {"type": ..., <data fields>...}.
func (e Event) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		flat[k] = v
	}
	flat["type"] = e.Type
	return json.Marshal(flat)
}
