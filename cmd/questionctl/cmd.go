package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/services"
)

var (
	errHelp            = errors.New("help provided")
	errNothingImported = errors.New("no question was imported")
)

type commandLine struct {
	service services.ImportService
	out     io.Writer
	userID  string
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  inspect -file PATH                       - show detected headers and column mapping")
	fmt.Fprintln(cli.out, "  import -file PATH [-user ID]             - import questions into the question API")
	fmt.Fprintln(cli.out, "  template [-format csv|xlsx] [-out PATH]  - write an example import file")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	inspectCmd := flag.NewFlagSet("inspect", flag.ContinueOnError)
	inspectCmd.SetOutput(cli.out)
	inspectFile := inspectCmd.String("file", "", "CSV or XLSX file to inspect")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importCmd.SetOutput(cli.out)
	importFile := importCmd.String("file", "", "CSV or XLSX file to import")
	importUser := importCmd.String("user", cli.userID, "User id recorded on the import job")

	templateCmd := flag.NewFlagSet("template", flag.ContinueOnError)
	templateCmd.SetOutput(cli.out)
	templateFormat := templateCmd.String("format", "csv", "csv or xlsx")
	templateOut := templateCmd.String("out", "", "Output path (default: stdout for csv)")

	switch args[1] {
	case "inspect":
		if err := inspectCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *inspectFile == "" {
			inspectCmd.Usage()
			return errHelp
		}
		return cli.inspect(ctx, *inspectFile)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importFile(ctx, *importFile, *importUser)
	case "template":
		if err := templateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.template(ctx, *templateFormat, *templateOut)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) inspect(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	diagnostics, err := cli.service.InspectFile(ctx, f, filepath.Base(path))
	if err != nil {
		return err
	}

	fmt.Fprint(cli.out, diagnostics.Report())
	return nil
}

func (cli *commandLine) importFile(ctx context.Context, path, userID string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	result, err := cli.service.ImportFile(ctx, f, services.ImportRequest{
		UserID:   userID,
		FileName: filepath.Base(path),
		FileSize: size,
	})
	if err != nil {
		if headerErr, ok := services.AsHeaderError(err); ok {
			fmt.Fprintln(cli.out, headerErr.Error())
			fmt.Fprintln(cli.out, "Accepted column names:")
			fmt.Fprintln(cli.out, headerErr.Hint())
		}
		if result != nil {
			cli.printResult(result)
		}
		return err
	}

	cli.printResult(result)

	if result.Status == models.ImportNoValidQuestions || result.Status == models.ImportFailed {
		return errNothingImported
	}
	return nil
}

func (cli *commandLine) printResult(result *services.ImportResult) {
	fmt.Fprintf(cli.out, "Job %s: %s\n", result.JobID, result.Message)
	fmt.Fprintf(cli.out, "  rows: %d  parsed: %d  succeeded: %d  failed: %d  skipped: %d\n",
		result.TotalRows, result.ParsedCount, result.SuccessCount, result.FailureCount, result.SkippedCount)

	for _, skip := range result.Skipped {
		fmt.Fprintf(cli.out, "  skipped row %d: %s (%s)\n", skip.Row, skip.Message, skip.Code)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(cli.out, "  failed row %d %q: %s\n", failure.Row, failure.Question, failure.Error)
	}
}

func (cli *commandLine) template(ctx context.Context, format, out string) error {
	data, err := cli.service.ExportTemplate(ctx, format)
	if err != nil {
		return err
	}

	if out == "" {
		if format == "xlsx" {
			out = "question_import_template.xlsx"
		} else {
			_, err := cli.out.Write(data)
			return err
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Template written to %s\n", out)
	return nil
}
