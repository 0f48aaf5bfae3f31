package domain

import (
	"bytes"
	"testing"
)

func TestJSONValue(t *testing.T) {
	// Nil must serialize to an empty object, not SQL NULL, so NOT NULL
	// jsonb columns accept zero-value structs.
	v, err := JSON(nil).Value()
	if err != nil {
		t.Fatalf("nil value: %v", err)
	}
	if b, ok := v.([]byte); !ok || !bytes.Equal(b, []byte("{}")) {
		t.Errorf("JSON(nil).Value() = %v, want {}", v)
	}

	v, err = JSON{"plan": "pro"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if b := v.([]byte); !bytes.Equal(b, []byte(`{"plan":"pro"}`)) {
		t.Errorf("value = %s", b)
	}
}

func TestJSONScan(t *testing.T) {
	var j JSON
	if err := j.Scan([]byte(`{"plan":"pro"}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if j["plan"] != "pro" {
		t.Errorf("scanned = %v", j)
	}

	var null JSON
	if err := null.Scan(nil); err != nil {
		t.Fatalf("scan null: %v", err)
	}
	if null != nil {
		t.Errorf("scan(nil) = %v, want nil", null)
	}
}

func TestStringsValue(t *testing.T) {
	// Same shape as JSON: nil becomes an empty array, never NULL.
	v, err := Strings(nil).Value()
	if err != nil {
		t.Fatalf("nil value: %v", err)
	}
	if b, ok := v.([]byte); !ok || !bytes.Equal(b, []byte("[]")) {
		t.Errorf("Strings(nil).Value() = %v, want []", v)
	}

	v, err = Strings{"alpha", "beta"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if b := v.([]byte); !bytes.Equal(b, []byte(`["alpha","beta"]`)) {
		t.Errorf("value = %s", b)
	}
}

func TestStringsRoundTrip(t *testing.T) {
	v, err := Strings{"alpha", "beta"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var s Strings
	if err := s.Scan(v.([]byte)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(s) != 2 || s[0] != "alpha" || s[1] != "beta" {
		t.Errorf("round trip = %v", s)
	}

	var null Strings
	if err := null.Scan(nil); err != nil {
		t.Fatalf("scan null: %v", err)
	}
	if null != nil {
		t.Errorf("scan(nil) = %v, want nil", null)
	}
}
