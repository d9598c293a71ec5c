package cache

import (
	"strconv"
	"strings"
)

// NormalizeQuestion lowercases, trims, and collapses internal whitespace in
// a question so that equivalent phrasings share one cache key.
func NormalizeQuestion(question string) string {
	fields := strings.Fields(strings.ToLower(question))
	return strings.Join(fields, " ")
}

// Key derives the response-cache key for a (normalized question, k) pair.
func Key(question string, k int) string {
	return NormalizeQuestion(question) + "|" + strconv.Itoa(k)
}
