package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseOracleJSON extracts and parses the JSON payload from oracle output,
// which may arrive as:
// - Pure JSON
// - JSON wrapped in markdown code fences (```json ... ```)
// - JSON surrounded by explanatory prose
// - JSON with minor formatting defects (trailing commas, unquoted keys)
// A non-nil error is the explicit "extraction failed" result; callers treat
// it as an oracle failure, never as a crash.
func ParseOracleJSON(input string, target interface{}) error {
	if input == "" {
		return fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// Try to extract JSON from markdown code fences
	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to find a JSON object/array in surrounding text
	if extracted := extractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to clean and fix common JSON issues
	if cleaned := cleanAndFixJSON(input); cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown extracts JSON from markdown code fences.
// Supports: ```json {...} ```, ```{...}```, or ```\n{...}\n```
func extractFromMarkdown(input string) string {
	// Pattern 1: ```json ... ```
	re1 := regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	if matches := re1.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Pattern 2: ``` ... ```
	re2 := regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	if matches := re2.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds a JSON object or array in surrounding text.
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces, respecting
// string literals and escapes.
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues.
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)

	// Remove BOM if present
	s = strings.TrimPrefix(s, "\uFEFF")

	// Remove trailing commas before closing braces/brackets
	re1 := regexp.MustCompile(`,\s*([}\]])`)
	s = re1.ReplaceAllString(s, "$1")

	// Quote bare keys: {word: "value"} -> {"word": "value"}
	re2 := regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	s = re2.ReplaceAllString(s, `$1"$2"$3`)

	s = fixSingleQuotes(s)
	s = removeControlCharacters(s)

	return s
}

// fixSingleQuotes converts single quotes to double quotes outside of
// double-quoted strings, at positions where a JSON string could start.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false

	for i, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}

		if ch == '\\' {
			result.WriteRune(ch)
			escape = true
			continue
		}

		if ch == '"' {
			inDoubleQuote = !inDoubleQuote
			result.WriteRune(ch)
			continue
		}

		if ch == '\'' && !inDoubleQuote {
			prevChar := rune(0)
			if i > 0 {
				prevChar = rune(input[i-1])
			}
			if i == 0 || prevChar == ':' || prevChar == ',' || prevChar == '[' || prevChar == '{' {
				result.WriteRune('"')
				continue
			}
		}

		result.WriteRune(ch)
	}

	return result.String()
}

// removeControlCharacters removes non-printable control characters.
func removeControlCharacters(input string) string {
	return regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`).ReplaceAllString(input, "")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
