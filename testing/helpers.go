// Package testing provides test utilities for veil.
package testing

import (
	"github.com/zoobzio/veil"
	"github.com/zoobzio/veil/json"
)

// TestCaller returns a caller for an admin surface with a role attribute.
func TestCaller() *veil.Caller {
	return veil.NewCaller("admin.users.get").WithAttr("role", "admin")
}

// AccountRedactor returns a JSON redactor for Account configured for testing.
func AccountRedactor() *veil.Redactor[Account] {
	r, err := veil.Use[Account](json.New())
	if err != nil {
		panic(err)
	}
	return r
}

// PlainAccount is a test type with no mask tags.
type PlainAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Clone implements Cloner[PlainAccount].
func (a PlainAccount) Clone() PlainAccount { return a }

// Account is a test type demonstrating the mask tag set.
type Account struct {
	ID     string `json:"id"`
	Email  string `json:"email" mask.partial:"email"`
	Card   string `json:"card" mask.partial:"last4"`
	Token  string `json:"token" mask.hash:"sha256"`
	Note   string `json:"note" mask.replace:"[hidden]"`
	Secret string `json:"secret" mask.erase:"*"`
}

// Clone implements Cloner[Account].
func (a Account) Clone() Account {
	return Account{
		ID:     a.ID,
		Email:  a.Email,
		Card:   a.Card,
		Token:  a.Token,
		Note:   a.Note,
		Secret: a.Secret,
	}
}

// Category is a self-referential tree type for depth tests.
type Category struct {
	Name     string      `json:"name" mask.erase:"public"`
	Children []*Category `json:"children,omitempty"`
}

// Clone implements Cloner[Category] with a full deep copy of the tree.
func (c Category) Clone() Category {
	out := Category{Name: c.Name}
	if c.Children != nil {
		out.Children = make([]*Category, len(c.Children))
		for i, ch := range c.Children {
			cc := ch.Clone()
			out.Children[i] = &cc
		}
	}
	return out
}
