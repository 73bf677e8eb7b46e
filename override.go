package veil

// SelfRedactor bypasses the reflection walker. When the masked type (or a
// pointer to it) implements SelfRedactor, the engine calls RedactFor on the
// clone instead of walking its members.
//
// This provides two benefits:
// 1. Performance: avoid reflection overhead for hot paths
// 2. Custom logic: redaction that cannot be expressed via rules
//
// Implementations receive the caller unchanged (possibly nil) and the
// normalized policy name, exactly as rule conditions do. The receiver is a
// clone, so mutations are safe. Implement with a pointer receiver or the
// mutations are lost.
type SelfRedactor interface {
	RedactFor(caller *Caller, policy string) error
}
