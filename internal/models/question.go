package models

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// AnswerOption is the letter of the correct option.
type AnswerOption string

const (
	AnswerA AnswerOption = "A"
	AnswerB AnswerOption = "B"
	AnswerC AnswerOption = "C"
	AnswerD AnswerOption = "D"
)

// Defaults applied to optional question columns
const (
	DefaultSubject    = "General"
	DefaultCourse     = "General Course"
	DefaultDifficulty = DifficultyEasy
	DefaultMarks      = 1
	MinMarks          = 1
	MaxMarks          = 10
)

// ParsedQuestion is a fully validated multiple-choice question taken from one
// spreadsheet row. It is never emitted partially filled.
type ParsedQuestion struct {
	QuestionText  string          `json:"questionText" validate:"required"`
	OptionA       string          `json:"optionA" validate:"required"`
	OptionB       string          `json:"optionB" validate:"required"`
	OptionC       string          `json:"optionC" validate:"required"`
	OptionD       string          `json:"optionD" validate:"required"`
	CorrectAnswer AnswerOption    `json:"correctAnswer" validate:"required,answer_option"`
	Subject       string          `json:"subject" validate:"required"`
	Course        string          `json:"course" validate:"required"`
	Difficulty    DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	Marks         int             `json:"marks" validate:"min=1,max=10"`
	Explanation   string          `json:"explanation"`

	// Row is the 1-based line the question came from, header included.
	Row int `json:"-"`
}

// Preview returns the leading text of the question for log lines.
func (q *ParsedQuestion) Preview() string {
	const limit = 50
	runes := []rune(q.QuestionText)
	if len(runes) <= limit {
		return q.QuestionText
	}
	return string(runes[:limit]) + "..."
}

func IsValidDifficulty(d DifficultyLevel) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func IsValidAnswerOption(a AnswerOption) bool {
	switch a {
	case AnswerA, AnswerB, AnswerC, AnswerD:
		return true
	}
	return false
}
