package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"github.com/SAP-F-2025/question-import-service/internal/services"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	created []string
	failOn  string
}

func (f *fakeCreator) CreateQuestion(_ context.Context, q *models.ParsedQuestion) error {
	if f.failOn != "" && q.QuestionText == f.failOn {
		return &services.SubmissionError{StatusCode: 422, Message: "duplicate question"}
	}
	f.created = append(f.created, q.QuestionText)
	return nil
}

func newTestCLI(creator *fakeCreator) (*commandLine, *bytes.Buffer) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	submitter := services.NewBatchSubmitter(creator, nil, services.BatchPolicy{BatchSize: 10}, logger)

	var out bytes.Buffer
	return &commandLine{
		service: services.NewImportService(
			repositories.NewMemoryImportJobRepository(),
			submitter,
			nil,
			nil,
			logger,
			validator.New(),
		),
		out:    &out,
		userID: "cli-user",
	}, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCSV = "Question,Option A,Option B,Option C,Option D,Answer\n" +
	"What is 2+2?,1,2,3,4,D\n" +
	",x,y,z,w,A\n" +
	"What is 3+3?,6,7,8,9,A\n"

func TestCommandLine(t *testing.T) {
	valid := writeFile(t, "questions.csv", validCSV)
	badHeaders := writeFile(t, "bad.csv", "Prompt,Left,Middle\nq,a,b\n")
	headerOnly := writeFile(t, "empty.csv", "Question,Option A,Option B,Option C,Option D,Answer\n")

	type cliTest struct {
		name       string
		args       []string
		wantErr    error
		wantErrStr string
	}

	tests := []cliTest{
		{name: "no command", args: []string{"questionctl"}, wantErr: errHelp},
		{name: "unknown command", args: []string{"questionctl", "frobnicate"}, wantErr: errHelp},
		{name: "inspect without file", args: []string{"questionctl", "inspect"}, wantErr: errHelp},
		{name: "import without file", args: []string{"questionctl", "import"}, wantErr: errHelp},
		{name: "bad flag", args: []string{"questionctl", "import", "-nope"}, wantErr: errHelp},
		{name: "missing file", args: []string{"questionctl", "import", "-file", filepath.Join(t.TempDir(), "nope.csv")}, wantErrStr: "no such file"},
		{name: "inspect", args: []string{"questionctl", "inspect", "-file", valid}},
		{name: "import", args: []string{"questionctl", "import", "-file", valid}},
		{name: "import missing headers", args: []string{"questionctl", "import", "-file", badHeaders}, wantErrStr: "missing required columns"},
		{name: "import header only", args: []string{"questionctl", "import", "-file", headerOnly}, wantErr: errNothingImported},
		{name: "template csv", args: []string{"questionctl", "template"}},
		{name: "template bad format", args: []string{"questionctl", "template", "-format", "pdf"}, wantErrStr: "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _ := newTestCLI(&fakeCreator{})

			err := cli.run(context.Background(), tt.args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandLine_ImportOutput(t *testing.T) {
	creator := &fakeCreator{failOn: "What is 3+3?"}
	cli, out := newTestCLI(creator)

	err := cli.run(context.Background(), []string{"questionctl", "import", "-file", writeFile(t, "q.csv", validCSV)})
	require.NoError(t, err)

	assert.Equal(t, []string{"What is 2+2?"}, creator.created)
	assert.Contains(t, out.String(), "Imported 1 of 2 questions: 1 succeeded, 1 failed, 1 rows skipped")
	assert.Contains(t, out.String(), "skipped row 3")
	assert.Contains(t, out.String(), `failed row 4 "What is 3+3?"`)
	assert.Contains(t, out.String(), "duplicate question")
}

func TestCommandLine_AllFailed(t *testing.T) {
	cli, out := newTestCLI(&fakeCreator{failOn: "What is 2+2?"})

	path := writeFile(t, "q.csv", "Question,Option A,Option B,Option C,Option D,Answer\nWhat is 2+2?,1,2,3,4,D\n")
	err := cli.run(context.Background(), []string{"questionctl", "import", "-file", path})

	assert.True(t, errors.Is(err, errNothingImported))
	assert.Contains(t, out.String(), "All 1 question submissions failed")
}

func TestCommandLine_MissingHeadersHint(t *testing.T) {
	cli, out := newTestCLI(&fakeCreator{})

	err := cli.run(context.Background(), []string{"questionctl", "import", "-file", writeFile(t, "bad.csv", "Prompt,Left,Middle\n")})
	require.Error(t, err)

	assert.Contains(t, out.String(), "Accepted column names:")
	assert.Contains(t, out.String(), "option_a: ")
}

func TestCommandLine_Inspect(t *testing.T) {
	cli, out := newTestCLI(&fakeCreator{})

	err := cli.run(context.Background(), []string{"questionctl", "inspect", "-file", writeFile(t, "q.csv", validCSV)})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "correct_answer")
	assert.Contains(t, out.String(), `"Answer"`)
}

func TestCommandLine_Template(t *testing.T) {
	t.Run("csv to stdout", func(t *testing.T) {
		cli, out := newTestCLI(&fakeCreator{})

		require.NoError(t, cli.run(context.Background(), []string{"questionctl", "template"}))
		assert.True(t, strings.HasPrefix(out.String(), "Question,"), out.String())
	})

	t.Run("xlsx to file", func(t *testing.T) {
		cli, out := newTestCLI(&fakeCreator{})
		path := filepath.Join(t.TempDir(), "template.xlsx")

		require.NoError(t, cli.run(context.Background(), []string{"questionctl", "template", "-format", "xlsx", "-out", path}))
		assert.Contains(t, out.String(), "Template written to "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("PK"), data[:2])
	})
}
