package gesture

import (
	"encoding/json"
	"strings"
	"testing"

	"gestured/internal/geometry"
)

// ===== WIRE ENCODING =====

func TestContactEventJSONCarriesOpName(t *testing.T) {
	in := ContactEvent{
		Op:       OpStart,
		ID:       3,
		Position: geometry.Point{X: 120, Y: 88},
		Pressure: 0.4,
		Time:     at(0),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"op":"start"`) {
		t.Fatalf("op not encoded by name: %s", data)
	}

	var out ContactEvent
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Op != OpStart || out.ID != 3 || out.Position != in.Position {
		t.Fatalf("round trip changed event: %+v", out)
	}
}

func TestEventJSONCarriesKindName(t *testing.T) {
	in := Event{
		Kind:       KindEdgeSwipe,
		Center:     geometry.Point{X: 10, Y: 200},
		Direction:  DirectionRight,
		Edge:       EdgeLeft,
		TouchCount: 1,
		Confidence: 0.9,
		Timestamp:  at(250),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"kind":"edge-swipe"`, `"direction":"right"`, `"edge":"left"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %s in %s", want, data)
		}
	}

	var out Event
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Kind != KindEdgeSwipe || out.Direction != DirectionRight || out.Edge != EdgeLeft {
		t.Fatalf("round trip changed event: %+v", out)
	}
}

func TestEventJSONOmitsZeroEnums(t *testing.T) {
	data, err := json.Marshal(Event{Kind: KindTap, TouchCount: 1, Timestamp: at(0)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"direction"`, `"force"`, `"edge"`} {
		if strings.Contains(string(data), field) {
			t.Errorf("zero %s not omitted: %s", field, data)
		}
	}
}

func TestEnumUnmarshalRejectsUnknownNames(t *testing.T) {
	var k Kind
	if err := json.Unmarshal([]byte(`"wiggle"`), &k); err == nil {
		t.Error("kind accepted bogus name")
	}
	if err := json.Unmarshal([]byte(`"unknown"`), &k); err != nil || k != KindUnknown {
		t.Errorf("kind rejected its own zero name: %v", err)
	}
	var o ContactOp
	if err := json.Unmarshal([]byte(`"hover"`), &o); err == nil {
		t.Error("op accepted bogus name")
	}
}

func TestParseKindRoundTripsAllKinds(t *testing.T) {
	for k := KindTap; k <= KindSequence; k++ {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Errorf("ParseKind(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k, got, k)
		}
	}
	if _, err := ParseKind("unknown"); err == nil {
		t.Error("ParseKind accepted the zero name")
	}
}
