package veil

import "strings"

// MaskerName identifies a partial masker, referenced from mask.partial tags.
type MaskerName string

const (
	MaskerEmail MaskerName = "email" // alice@example.com -> a***@example.com
	MaskerLast4 MaskerName = "last4" // 4111111111111111 -> ************1111
	MaskerFixed MaskerName = "fixed" // any value -> ********
	MaskerNull  MaskerName = "null"  // any value -> ""
)

// validMaskerNames contains all masker names valid in mask.partial tags.
var validMaskerNames = map[MaskerName]bool{
	MaskerEmail: true,
	MaskerLast4: true,
	MaskerFixed: true,
	MaskerNull:  true,
}

// IsValidMaskerName returns true if the name is a known partial masker.
func IsValidMaskerName(n MaskerName) bool {
	return validMaskerNames[n]
}

// Masker rewrites a string value into a partially hidden form.
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) (string, error)
}

// emailMasker masks email format: alice@example.com -> a***@example.com
type emailMasker struct{}

// EmailMasker returns a masker for email addresses.
// Preserves the first character of the local part and the full domain.
func EmailMasker() Masker {
	return &emailMasker{}
}

func (m *emailMasker) Mask(value string) (string, error) {
	atIdx := strings.LastIndex(value, "@")
	if atIdx < 1 {
		// No @ or @ at start, mask everything
		return strings.Repeat("*", len(value)), nil
	}
	local := []rune(value[:atIdx])
	return string(local[0]) + "***" + value[atIdx:], nil
}

// last4Masker keeps the final four characters: 4111111111111111 -> ************1111
type last4Masker struct{}

// Last4Masker returns a masker that preserves only the last four characters,
// suitable for card numbers, account numbers, and identifiers.
func Last4Masker() Masker {
	return &last4Masker{}
}

func (m *last4Masker) Mask(value string) (string, error) {
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes)), nil
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:]), nil
}

// fixedMasker hides the value and its length behind a fixed-width bar.
type fixedMasker struct{}

// FixedMasker returns a masker that replaces any value with eight stars,
// leaking neither content nor length.
func FixedMasker() Masker {
	return &fixedMasker{}
}

func (m *fixedMasker) Mask(string) (string, error) {
	return "********", nil
}

// nullMasker blanks the value entirely.
type nullMasker struct{}

// NullMasker returns a masker that replaces any value with the empty string.
func NullMasker() Masker {
	return &nullMasker{}
}

func (m *nullMasker) Mask(string) (string, error) {
	return "", nil
}

// builtinMaskers returns the default masker registry.
func builtinMaskers() map[MaskerName]Masker {
	return map[MaskerName]Masker{
		MaskerEmail: EmailMasker(),
		MaskerLast4: Last4Masker(),
		MaskerFixed: FixedMasker(),
		MaskerNull:  NullMasker(),
	}
}
