package veil

import "github.com/google/uuid"

// Caller identifies who is asking for a masked view of the data. The engine
// never inspects it; it is forwarded unchanged to every rule condition at
// every recursion depth.
type Caller struct {
	// ID correlates one request across signal streams.
	ID string

	// Endpoint names the surface handling the request (e.g. "admin.users.get").
	Endpoint string

	// Attrs carries application-defined attributes for custom conditions.
	Attrs map[string]string
}

// NewCaller returns a Caller for the given endpoint with a fresh request ID.
func NewCaller(endpoint string) *Caller {
	return &Caller{ID: uuid.NewString(), Endpoint: endpoint}
}

// WithAttr sets an attribute and returns the caller for chaining.
func (c *Caller) WithAttr(name, value string) *Caller {
	if c.Attrs == nil {
		c.Attrs = make(map[string]string)
	}
	c.Attrs[name] = value
	return c
}

// Attr returns the named attribute, or "" when absent. Safe on a nil caller.
func (c *Caller) Attr(name string) string {
	if c == nil {
		return ""
	}
	return c.Attrs[name]
}
