// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status lowercases and trims a connection request status taken from a URL.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Gender lowercases and trims a gender value.
func Gender(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
