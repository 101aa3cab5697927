package judging

import (
	"encoding/base64"
	"strings"
	"unicode"
)

// DecodeOutput decodes transport-encoded program output. Decode failures
// never raise: the value may already be plain text, so it is returned
// unchanged.
func DecodeOutput(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return string(decoded)
}

// OutputsMatch is the tolerant equality check used for verdicts:
// trailing whitespace is ignored, leading whitespace is significant.
//
// A blank expected output is treated as malformed problem data, and any
// actual output is deliberately accepted rather than failing every
// submission against it.
func OutputsMatch(actual, expected string) bool {
	if strings.TrimSpace(expected) == "" {
		return true
	}
	return rstrip(actual) == rstrip(expected)
}

func rstrip(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
