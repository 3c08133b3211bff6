package models

import (
	"encoding/json"
	"testing"
)

func TestCoordArrayWireFormat(t *testing.T) {
	var c Coord
	if err := json.Unmarshal([]byte(`[28.6315,77.2167]`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Lat != 28.6315 || c.Lon != 77.2167 {
		t.Fatalf("unexpected coord: %+v", c)
	}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `[28.6315,77.2167]` {
		t.Fatalf("unexpected wire form: %s", b)
	}
}

func TestCoordRejectsObjects(t *testing.T) {
	var c Coord
	if err := json.Unmarshal([]byte(`{"lat":1,"lon":2}`), &c); err == nil {
		t.Fatal("expected error for non-array coord")
	}
}

func TestSubmitPayloadCollectsExtra(t *testing.T) {
	raw := `{
		"userName": "Asha",
		"pickupCoords": [28.6315, 77.2167],
		"dropCoords": [28.6129, 77.2295],
		"womenOnly": true,
		"luggage": false,
		"pickupLabel": "Connaught Place",
		"avatar": {"color": "teal"}
	}`
	var p SubmitPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Valid() {
		t.Fatal("payload with both coords should be valid")
	}
	if !p.WomenOnly || p.Luggage {
		t.Fatalf("preferences mis-parsed: %+v", p.Preferences)
	}
	if len(p.Extra) != 2 {
		t.Fatalf("expected 2 extra fields, got %v", p.Extra)
	}
	if string(p.Extra["pickupLabel"]) != `"Connaught Place"` {
		t.Fatalf("extra field mangled: %s", p.Extra["pickupLabel"])
	}
	if _, ok := p.Extra["userName"]; ok {
		t.Fatal("known fields must not leak into extra")
	}
}

func TestSubmitPayloadMissingCoordsInvalid(t *testing.T) {
	cases := []string{
		`{"userName":"X"}`,
		`{"userName":"X","pickupCoords":[1,2]}`,
		`{"userName":"X","dropCoords":[1,2]}`,
	}
	for _, raw := range cases {
		var p SubmitPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if p.Valid() {
			t.Fatalf("payload should be invalid: %s", raw)
		}
	}
}
