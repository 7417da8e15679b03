package booking

import (
	"fmt"
	"strings"
)

// IncludesPlaceholder is shown when nothing usable can be parsed.
const IncludesPlaceholder = "Details not available"

// bulletDelimiters are tried in this order; the first one present in the text is used.
var bulletDelimiters = []string{"•", "·", "-", "*"}

// ParseIncludes turns a service's "includes" value into display lines.
// Strategies in order: array as-is, bullet split, newline split, period split.
// The first that yields a non-empty trimmed segment wins.
func ParseIncludes(v any) []string {
	switch val := v.(type) {
	case []string:
		if out := nonEmpty(val); len(out) > 0 {
			return out
		}
	case []any:
		items := make([]string, 0, len(val))
		for _, it := range val {
			if it != nil {
				items = append(items, fmt.Sprint(it))
			}
		}
		if out := nonEmpty(items); len(out) > 0 {
			return out
		}
	case string:
		if out := parseIncludesText(val); len(out) > 0 {
			return out
		}
	}
	return []string{IncludesPlaceholder}
}

func parseIncludesText(s string) []string {
	for _, d := range bulletDelimiters {
		if strings.Contains(s, d) {
			if out := nonEmpty(strings.Split(s, d)); len(out) > 0 {
				return out
			}
			break
		}
	}
	if out := nonEmpty(strings.Split(s, "\n")); len(out) > 0 && strings.Contains(s, "\n") {
		return out
	}
	if out := nonEmpty(strings.Split(s, ".")); len(out) > 0 {
		return out
	}
	return nil
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
