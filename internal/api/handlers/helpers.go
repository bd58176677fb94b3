package handlers

import "strings"

// normalizeName trims a display name to printable ASCII letters, digits,
// spaces and dashes, at most 24 characters. Returns "" if nothing is left.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= 24 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// normalizeDifficulty maps user input to a known difficulty or "".
func normalizeDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "normal":
		return "normal"
	case "hard":
		return "hard"
	}
	return ""
}
