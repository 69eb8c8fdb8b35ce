// Package jsonx extracts JSON payloads from model output, which routinely
// wraps them in markdown fences or prose and occasionally emits Python-isms
// like None or trailing commas.
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFenceRe    = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	bareNone       = regexp.MustCompile(`\bNone\b`)
	bareTrue       = regexp.MustCompile(`\bTrue\b`)
	bareFalse      = regexp.MustCompile(`\bFalse\b`)
)

// Extract parses the first JSON value found in raw model output and
// unmarshals it into v. It tries, in order: a ```json fenced block, any
// fenced block, the whole string, and finally the first balanced object
// or array found by scanning.
func Extract(raw string, v any) error {
	candidates := candidateStrings(raw)
	var lastErr error
	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), v); err == nil {
			return nil
		} else {
			lastErr = err
		}
		// Retry after repairing common model mistakes.
		repaired := Repair(c)
		if repaired != c {
			if err := json.Unmarshal([]byte(repaired), v); err == nil {
				return nil
			} else {
				lastErr = err
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON value found")
	}
	return fmt.Errorf("extracting JSON from model output: %w", lastErr)
}

// ExtractString is Extract into a generic value, returning the canonical
// re-encoded JSON text.
func ExtractString(raw string) (string, error) {
	var v any
	if err := Extract(raw, &v); err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Repair fixes common near-JSON produced by models: trailing commas and
// Python literals. It does not attempt to fix unbalanced structures.
func Repair(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = bareNone.ReplaceAllString(s, "null")
	s = bareTrue.ReplaceAllString(s, "true")
	s = bareFalse.ReplaceAllString(s, "false")
	return s
}

func candidateStrings(raw string) []string {
	var out []string
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if m := genericFenceRe.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		out = append(out, trimmed)
	}
	if b := balancedValue(raw); b != "" {
		out = append(out, b)
	}
	return out
}

// balancedValue scans for the first balanced {...} or [...] outside of
// string literals.
func balancedValue(s string) string {
	start := -1
	var open, close byte
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if start >= 0 && inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case start < 0 && (c == '{' || c == '['):
			start = i
			open = c
			if c == '{' {
				close = '}'
			} else {
				close = ']'
			}
			depth = 1
		case start >= 0 && c == '"':
			inString = true
		case start >= 0 && c == open:
			depth++
		case start >= 0 && c == close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
