package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Substitute replaces every {{key}} occurrence in text with the string form
// of vars[key]. Keys absent from vars stay verbatim.
func Substitute(text string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])
		if value, ok := vars[key]; ok {
			return Stringify(value)
		}
		return match
	})
}

// Stringify converts a scalar variable value to its canonical string form:
// booleans render as true/false, numbers without exponent notation.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Unresolved lists the placeholder keys in text that vars does not define,
// in order of first appearance.
func Unresolved(text string, vars map[string]any) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		key := strings.TrimSpace(match[1])
		if key == "" || seen[key] {
			continue
		}
		if _, ok := vars[key]; !ok {
			missing = append(missing, key)
			seen[key] = true
		}
	}
	return missing
}
