package services

import (
	"strings"
	"unicode"
)

// Canonical question fields
const (
	FieldQuestion      = "question"
	FieldOptionA       = "option_a"
	FieldOptionB       = "option_b"
	FieldOptionC       = "option_c"
	FieldOptionD       = "option_d"
	FieldCorrectAnswer = "correct_answer"
	FieldSubject       = "subject"
	FieldCourse        = "course"
	FieldDifficulty    = "difficulty"
	FieldMarks         = "marks"
	FieldExplanation   = "explanation"
)

// minFuzzyLength is the shortest normalized name allowed to take part in
// substring matching; single letters would otherwise match almost anything.
const minFuzzyLength = 2

// FieldVariants lists the accepted column names for one canonical field.
type FieldVariants struct {
	Field    string
	Required bool
	Variants []string
}

// QuestionFields is the ordered set of canonical fields and the header names
// accepted for each of them.
var QuestionFields = []FieldVariants{
	{Field: FieldQuestion, Required: true, Variants: []string{
		"question", "question_text", "question text", "questions", "question statement", "ques", "q", "prompt",
	}},
	{Field: FieldOptionA, Required: true, Variants: []string{
		"option_a", "option a", "option 1", "choice_a", "choice a", "opt_a", "opt a", "a", "1st option", "first option",
	}},
	{Field: FieldOptionB, Required: true, Variants: []string{
		"option_b", "option b", "option 2", "choice_b", "choice b", "opt_b", "opt b", "b", "2nd option", "second option",
	}},
	{Field: FieldOptionC, Required: true, Variants: []string{
		"option_c", "option c", "option 3", "choice_c", "choice c", "opt_c", "opt c", "c", "3rd option", "third option",
	}},
	{Field: FieldOptionD, Required: true, Variants: []string{
		"option_d", "option d", "option 4", "choice_d", "choice d", "opt_d", "opt d", "d", "4th option", "fourth option",
	}},
	{Field: FieldCorrectAnswer, Required: true, Variants: []string{
		"correct_answer", "correct answer", "correct option", "right answer", "answer", "correct", "ans", "key", "answer key",
	}},
	{Field: FieldSubject, Variants: []string{
		"subject", "subject name", "topic", "category",
	}},
	{Field: FieldCourse, Variants: []string{
		"course", "course name", "course_name", "class", "program", "module",
	}},
	{Field: FieldDifficulty, Variants: []string{
		"difficulty", "difficulty level", "level", "diff", "complexity",
	}},
	{Field: FieldMarks, Variants: []string{
		"marks", "mark", "points", "score", "weightage", "weight",
	}},
	{Field: FieldExplanation, Variants: []string{
		"explanation", "explain", "solution", "rationale", "reason", "description", "notes",
	}},
}

// HeaderMap maps canonical field names to zero-based column indexes.
// A field that was not found maps to -1.
type HeaderMap map[string]int

// Index returns the column of field, or -1.
func (m HeaderMap) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return -1
}

// Missing returns the required fields that resolved to no column, in
// canonical order.
func (m HeaderMap) Missing(fields []FieldVariants) []string {
	var missing []string
	for _, f := range fields {
		if f.Required && m.Index(f.Field) < 0 {
			missing = append(missing, f.Field)
		}
	}
	return missing
}

// MaxIndex returns the highest resolved column index, or -1.
func (m HeaderMap) MaxIndex() int {
	max := -1
	for _, idx := range m {
		if idx > max {
			max = idx
		}
	}
	return max
}

// ResolveHeaders matches the actual header cells against every field's
// variants. Exact normalized matches are tried first across all variants;
// only when none hits does substring containment (either direction) apply.
func ResolveHeaders(headers []string, fields []FieldVariants) HeaderMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	result := make(HeaderMap, len(fields))
	for _, f := range fields {
		result[f.Field] = resolveField(normalized, f.Variants)
	}
	return result
}

func resolveField(headers, variants []string) int {
	for _, variant := range variants {
		v := normalizeHeader(variant)
		for i, h := range headers {
			if h != "" && h == v {
				return i
			}
		}
	}

	for _, variant := range variants {
		v := normalizeHeader(variant)
		if len(v) < minFuzzyLength {
			continue
		}
		for i, h := range headers {
			if len(h) < minFuzzyLength {
				continue
			}
			if strings.Contains(h, v) || strings.Contains(v, h) {
				return i
			}
		}
	}

	return -1
}

// normalizeHeader lower-cases s and drops every rune that is not a letter or
// digit.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// acceptedVariants returns the variant lists for the given fields, keyed by
// field name.
func acceptedVariants(fields []FieldVariants, names []string) map[string][]string {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	accepted := make(map[string][]string, len(names))
	for _, f := range fields {
		if wanted[f.Field] {
			accepted[f.Field] = f.Variants
		}
	}
	return accepted
}

func requiredFieldNames(fields []FieldVariants) []string {
	var names []string
	for _, f := range fields {
		if f.Required {
			names = append(names, f.Field)
		}
	}
	return names
}
