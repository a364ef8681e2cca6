package transport

import (
	"encoding/json"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	body, err := json.Marshal(ClientInput{Seq: 42, Type: "MOVE", ClientTime: 1000, TargetX: 5, TargetY: 10})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	f := Frame{Type: FrameInput, Body: body}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}

	var got Frame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if got.Type != FrameInput {
		t.Fatalf("type mismatch: got %v want %v", got.Type, FrameInput)
	}

	var input ClientInput
	if err := json.Unmarshal(got.Body, &input); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if input.Seq != 42 || input.TargetX != 5 || input.TargetY != 10 {
		t.Fatalf("input body round-trip mismatch: %+v", input)
	}
}

func TestOptionalInputFieldsOmittedWhenZero(t *testing.T) {
	body, err := json.Marshal(ClientInput{Seq: 1, Type: "STOP", ClientTime: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"targetX", "targetY", "targetEntityId", "slot", "itemId", "wardType"} {
		if _, present := raw[field]; present {
			t.Errorf("expected field %q to be omitted when zero-valued", field)
		}
	}
}

func TestStateUpdateBodyMarshalsDeltas(t *testing.T) {
	body := StateUpdateBody{
		Tick:     10,
		GameTime: 5.5,
		Deltas: []EntityDelta{
			{EntityID: "e1", ChangeMask: 3, Data: json.RawMessage(`{"x":1}`)},
		},
		Events: []GameEvent{
			{Type: "CHAMPION_KILL", Tick: 10, PlayerID: "p1"},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got StateUpdateBody
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Deltas) != 1 || got.Deltas[0].EntityID != "e1" {
		t.Fatalf("deltas did not round-trip: %+v", got.Deltas)
	}
	if len(got.Events) != 1 || got.Events[0].Type != "CHAMPION_KILL" {
		t.Fatalf("events did not round-trip: %+v", got.Events)
	}
}
