// Package util contains small generic helpers shared by the rest of clrviz.
package util

import (
	"sort"
	"strings"
)

// MakeTextList joins items into an English list using an oxford comma and the
// given conjunction, e.g. "a, b, or c". Each item is quoted if quote is true.
func MakeTextList(items []string, conj string, quote bool) string {
	if len(items) < 1 {
		return ""
	}

	shown := make([]string, len(items))
	for i := range items {
		if quote {
			shown[i] = "\"" + items[i] + "\""
		} else {
			shown[i] = items[i]
		}
	}

	switch len(shown) {
	case 1:
		return shown[0]
	case 2:
		return shown[0] + " " + conj + " " + shown[1]
	default:
		shown[len(shown)-1] = conj + " " + shown[len(shown)-1]
		return strings.Join(shown, ", ")
	}
}

// SortBy sorts sl in place using the given less function and returns it. The
// sort is stable.
func SortBy[E any](sl []E, less func(left, right E) bool) []E {
	sort.SliceStable(sl, func(i, j int) bool {
		return less(sl[i], sl[j])
	})
	return sl
}
