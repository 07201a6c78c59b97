package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct {
	structValidator *validator.Validate
}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator(structValidator *validator.Validate) *QuestionValidator {
	return &QuestionValidator{structValidator: structValidator}
}

// ValidateParsed checks every required field and enum of a parsed question.
// Blank-looking values (only whitespace) count as missing.
func (v *QuestionValidator) ValidateParsed(question *models.ParsedQuestion) error {
	if question == nil {
		return fmt.Errorf("question cannot be nil")
	}

	blanks := map[string]string{
		"questionText": question.QuestionText,
		"optionA":      question.OptionA,
		"optionB":      question.OptionB,
		"optionC":      question.OptionC,
		"optionD":      question.OptionD,
	}
	var errs ValidationErrors
	for _, field := range []string{"questionText", "optionA", "optionB", "optionC", "optionD"} {
		if strings.TrimSpace(blanks[field]) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required", Rule: "required"})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if err := v.structValidator.Struct(question); err != nil {
		if converted := ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}
