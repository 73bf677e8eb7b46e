package json

import "testing"

type record struct {
	ID   string `json:"id"`
	Note string `json:"note"`
}

func TestContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/json" {
		t.Errorf("ContentType() = %q, want %q", got, "application/json")
	}
}

func TestRoundTrip(t *testing.T) {
	c := New()

	in := record{ID: "r-1", Note: "hello"}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var out record
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var out record
	if err := New().Unmarshal([]byte("{not json"), &out); err == nil {
		t.Error("Unmarshal() should fail on invalid input")
	}
}
