package pipeline

import (
	"encoding/json"
	"testing"
)

func TestEventMarshalFlat(t *testing.T) {
	e := Event{Type: EventDoneContact, Data: map[string]any{"name": "Ada", "cached": true}}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["type"] != "done_contact" || got["name"] != "Ada" || got["cached"] != true {
		t.Fatalf("flattened = %v", got)
	}
	if _, nested := got["Data"]; nested {
		t.Fatal("payload not flattened")
	}
}

func TestEventMarshal_NoData(t *testing.T) {
	data, err := json.Marshal(Event{Type: EventDone})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"type":"done"}` {
		t.Fatalf("marshaled = %s", data)
	}
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emit Emitter
	emit.emit(EventStatus, map[string]any{"message": "ok"})
}
