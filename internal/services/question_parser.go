package services

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/SAP-F-2025/question-import-service/internal/errors"
	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
)

// ParseOutcome is everything the parser learned from one file.
type ParseOutcome struct {
	Headers   []string
	HeaderMap HeaderMap
	TotalRows int
	Questions []*models.ParsedQuestion
	Skipped   []models.ImportValidationError
}

// QuestionParser turns spreadsheet rows into validated questions.
type QuestionParser struct {
	fields    []FieldVariants
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionParser(logger *slog.Logger, validator *validator.Validator) *QuestionParser {
	return &QuestionParser{
		fields:    QuestionFields,
		logger:    logger,
		validator: validator,
	}
}

// ParseCSV parses CSV text: the first line is the header, every following
// line is a question.
func (p *QuestionParser) ParseCSV(content string) (*ParseOutcome, error) {
	return p.ParseRows(csvRows(content))
}

// csvRows tokenizes every line; blank lines become nil rows so they keep
// their line number.
func csvRows(content string) [][]string {
	lines := splitLines(content)
	rows := make([][]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows[i] = SplitCSVLine(line)
	}
	return rows
}

// ParseRows parses already split rows, such as the cells of a worksheet.
// Row-level problems never fail the parse; they are recorded in Skipped.
func (p *QuestionParser) ParseRows(rows [][]string) (*ParseOutcome, error) {
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, ErrEmptyFile
	}

	headers := trimCells(rows[0])
	headerMap := ResolveHeaders(headers, p.fields)
	if missing := headerMap.Missing(p.fields); len(missing) > 0 {
		return nil, apperrors.NewHeaderError(missing, headers, acceptedVariants(p.fields, missing))
	}

	if len(rows) < 2 {
		return nil, ErrNoDataRows
	}

	outcome := &ParseOutcome{
		Headers:   headers,
		HeaderMap: headerMap,
		TotalRows: len(rows) - 1,
	}

	maxIndex := headerMap.MaxIndex()
	for i, row := range rows[1:] {
		rowNum := i + 2
		question, skip := p.mapRow(row, rowNum, headerMap, maxIndex)
		if skip != nil {
			p.logger.Warn("Skipping row", "row", rowNum, "code", skip.Code, "column", skip.Column, "reason", skip.Message)
			outcome.Skipped = append(outcome.Skipped, *skip)
			continue
		}
		outcome.Questions = append(outcome.Questions, question)
	}

	p.logger.Info("Parsed question rows",
		"total_rows", outcome.TotalRows,
		"parsed", len(outcome.Questions),
		"skipped", len(outcome.Skipped))

	return outcome, nil
}

func (p *QuestionParser) mapRow(row []string, rowNum int, headerMap HeaderMap, maxIndex int) (*models.ParsedQuestion, *models.ImportValidationError) {
	if isBlankRow(row) {
		return nil, &models.ImportValidationError{
			Row: rowNum, Message: "empty line", Code: models.SkipEmptyLine,
		}
	}

	if len(row) < maxIndex {
		return nil, &models.ImportValidationError{
			Row:     rowNum,
			Message: fmt.Sprintf("expected at least %d columns, got %d", maxIndex, len(row)),
			Value:   strconv.Itoa(len(row)),
			Code:    models.SkipTooFewColumns,
		}
	}

	getColumn := func(field string) string {
		if index := headerMap.Index(field); index >= 0 && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	for _, field := range requiredFieldNames(p.fields) {
		if getColumn(field) == "" {
			return nil, &models.ImportValidationError{
				Row: rowNum, Column: field, Message: "required field", Code: models.SkipMissingField,
			}
		}
	}

	answer := models.AnswerOption(strings.ToUpper(getColumn(FieldCorrectAnswer)))
	if !models.IsValidAnswerOption(answer) {
		return nil, &models.ImportValidationError{
			Row:     rowNum,
			Column:  FieldCorrectAnswer,
			Message: "must be A, B, C, or D",
			Value:   string(answer),
			Code:    models.SkipInvalidAnswer,
		}
	}

	question := &models.ParsedQuestion{
		QuestionText:  getColumn(FieldQuestion),
		OptionA:       getColumn(FieldOptionA),
		OptionB:       getColumn(FieldOptionB),
		OptionC:       getColumn(FieldOptionC),
		OptionD:       getColumn(FieldOptionD),
		CorrectAnswer: answer,
		Subject:       valueOr(getColumn(FieldSubject), models.DefaultSubject),
		Course:        valueOr(getColumn(FieldCourse), models.DefaultCourse),
		Difficulty:    p.parseDifficulty(getColumn(FieldDifficulty), rowNum),
		Marks:         p.parseMarks(getColumn(FieldMarks), rowNum),
		Explanation:   getColumn(FieldExplanation),
		Row:           rowNum,
	}

	if err := p.validator.Question().ValidateParsed(question); err != nil {
		return nil, &models.ImportValidationError{
			Row: rowNum, Message: err.Error(), Code: models.SkipFailedValidity,
		}
	}

	return question, nil
}

func (p *QuestionParser) parseDifficulty(value string, rowNum int) models.DifficultyLevel {
	if value == "" {
		return models.DefaultDifficulty
	}

	switch strings.ToLower(value) {
	case "easy":
		return models.DifficultyEasy
	case "medium":
		return models.DifficultyMedium
	case "hard":
		return models.DifficultyHard
	}

	p.logger.Debug("Invalid difficulty, using default", "row", rowNum, "value", value)
	return models.DefaultDifficulty
}

func (p *QuestionParser) parseMarks(value string, rowNum int) int {
	if value == "" {
		return models.DefaultMarks
	}

	marks, err := strconv.Atoi(value)
	if err != nil || marks < models.MinMarks || marks > models.MaxMarks {
		p.logger.Debug("Invalid marks, using default", "row", rowNum, "value", value)
		return models.DefaultMarks
	}
	return marks
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
