package veil

import "testing"

func TestEmailMasker(t *testing.T) {
	m := EmailMasker()

	tests := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "a***@example.com"},
		{"b@x.io", "b***@x.io"},
		{"no-at-sign", "**********"},
		{"@leading", "********"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := m.Mask(tt.in)
		if err != nil {
			t.Errorf("Mask(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLast4Masker(t *testing.T) {
	m := Last4Masker()

	tests := []struct {
		in   string
		want string
	}{
		{"4111111111111111", "************1111"},
		{"12345", "*2345"},
		{"1234", "****"},
		{"12", "**"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := m.Mask(tt.in)
		if err != nil {
			t.Errorf("Mask(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFixedMasker(t *testing.T) {
	m := FixedMasker()

	for _, in := range []string{"", "short", "a much longer value"} {
		got, err := m.Mask(in)
		if err != nil {
			t.Errorf("Mask(%q) error: %v", in, err)
			continue
		}
		if got != "********" {
			t.Errorf("Mask(%q) = %q, want %q", in, got, "********")
		}
	}
}

func TestNullMasker(t *testing.T) {
	m := NullMasker()

	got, err := m.Mask("anything")
	if err != nil {
		t.Fatalf("Mask() error: %v", err)
	}
	if got != "" {
		t.Errorf("Mask(%q) = %q, want empty string", "anything", got)
	}
}

func TestIsValidMaskerName(t *testing.T) {
	tests := []struct {
		name  MaskerName
		valid bool
	}{
		{MaskerEmail, true},
		{MaskerLast4, true},
		{MaskerFixed, true},
		{MaskerNull, true},
		{"bogus", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidMaskerName(tt.name); got != tt.valid {
			t.Errorf("IsValidMaskerName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestBuiltinMaskers(t *testing.T) {
	maskers := builtinMaskers()
	for _, name := range []MaskerName{MaskerEmail, MaskerLast4, MaskerFixed, MaskerNull} {
		if maskers[name] == nil {
			t.Errorf("builtinMaskers() missing %q", name)
		}
	}
}
