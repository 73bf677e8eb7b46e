package veil

import "testing"

func TestNewCaller(t *testing.T) {
	c := NewCaller("admin.users.get")

	if c.ID == "" {
		t.Error("NewCaller() should assign a request ID")
	}
	if c.Endpoint != "admin.users.get" {
		t.Errorf("Endpoint = %q, want %q", c.Endpoint, "admin.users.get")
	}

	c2 := NewCaller("admin.users.get")
	if c.ID == c2.ID {
		t.Error("NewCaller() should assign unique request IDs")
	}
}

func TestCaller_WithAttr(t *testing.T) {
	c := NewCaller("api.orders.list").
		WithAttr("role", "admin").
		WithAttr("tenant", "acme")

	if got := c.Attr("role"); got != "admin" {
		t.Errorf("Attr(%q) = %q, want %q", "role", got, "admin")
	}
	if got := c.Attr("tenant"); got != "acme" {
		t.Errorf("Attr(%q) = %q, want %q", "tenant", got, "acme")
	}
	if got := c.Attr("missing"); got != "" {
		t.Errorf("Attr(%q) = %q, want empty string", "missing", got)
	}
}

func TestCaller_AttrNil(t *testing.T) {
	var c *Caller
	if got := c.Attr("role"); got != "" {
		t.Errorf("Attr() on nil caller = %q, want empty string", got)
	}
}
