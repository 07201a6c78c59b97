package services

import "strings"

// SplitCSVLine splits one line of text on commas that are not inside double
// quotes. Quote characters toggle the quoted state and are dropped; an
// unbalanced quote simply leaves the rest of the line quoted. Empty fields are
// kept. It never fails.
func SplitCSVLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, cleanField(current.String()))

	return fields
}

func cleanField(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimPrefix(value, `'`)
	value = strings.TrimSuffix(value, `"`)
	value = strings.TrimSuffix(value, `'`)
	return strings.TrimSpace(value)
}

// splitLines breaks file content into lines, accepting \n and \r\n endings.
// Trailing blank lines are dropped so a final newline does not count as a row.
func splitLines(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
