// Package skills canonicalizes free-text skill tags.
//
// Display strings are kept as entered. Equality between tags is decided
// only through Key, which trims and case-folds.
package skills

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/cases"
)

// Key returns the comparison key for a raw tag.
func Key(raw string) string {
	// A Caser keeps state, so build one per call.
	return cases.Fold().String(strings.TrimSpace(raw))
}

// List turns raw input into an ordered list of unique display strings.
//
// Accepted input is a []string, a []any of strings, or a legacy
// comma-separated string. Anything else yields an empty list. Entries that
// are blank after trimming are dropped; duplicates by Key keep the first
// occurrence's text and position.
func List(input any) []string {
	raw := rawEntries(input)
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		display := strings.TrimSpace(r)
		if display == "" {
			continue
		}
		k := Key(display)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, display)
	}
	return out
}

// Keys returns the comparison-key set of input (see List for accepted shapes).
func Keys(input any) map[string]struct{} {
	list := List(input)
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[Key(s)] = struct{}{}
	}
	return set
}

// Intersect keeps the entries of list whose key is in keys, in list order.
// The display text comes from list.
func Intersect(list []string, keys map[string]struct{}) []string {
	out := []string{}
	if len(keys) == 0 {
		return out
	}
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		k := Key(s)
		if k == "" {
			continue
		}
		if _, ok := keys[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func rawEntries(input any) []string {
	switch v := input.(type) {
	case nil:
		return nil
	case string:
		return strings.Split(v, ",")
	case []string:
		return v
	case []any:
		return stringsOf(v)
	case primitive.A:
		return stringsOf(v)
	default:
		return nil
	}
}

func stringsOf(v []any) []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
