// docfit is the headless front end of the converter. It shares the desktop
// app's configuration, catalog and conversion pipeline, and is used for
// scripting and smoke testing.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"docfit/internal/common"
	"docfit/internal/config"
	"docfit/internal/container"
	"docfit/internal/database"
	compressionDomain "docfit/internal/domain/compression"
	"docfit/internal/transport"

	"github.com/spf13/pflag"
)

const usage = `Usage: docfit [--config FILE] <command> [flags] [args]

Commands:
  exams [EXAM]          list exams, or the documents of one exam
  image [flags] FILE    re-encode an image into an envelope
  pdf [flags] FILE      compress a PDF into an envelope
  merge [flags] FILE... merge images into one PDF and compress it

Run "docfit <command> --help" for command flags.
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := pflag.NewFlagSet("docfit", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	configFile := global.String("config", "", "path to a config file")
	help := global.BoolP("help", "h", false, "show help")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stderr, usage)
			return nil
		}
		return err
	}
	if *help {
		fmt.Fprint(stderr, usage)
		return nil
	}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	c, err := setup(*configFile, stderr)
	if err != nil {
		return err
	}

	command, commandArgs := rest[0], rest[1:]
	switch command {
	case "exams":
		return runExams(c, commandArgs, stdout)
	case "image":
		return runImage(ctx, c, commandArgs, stdout, stderr)
	case "pdf":
		return runPDF(ctx, c, commandArgs, stdout, stderr)
	case "merge":
		return runMerge(ctx, c, commandArgs, stdout, stderr)
	}
	return fmt.Errorf("unknown command %q", command)
}

// setup builds the same service graph the desktop app uses, logging to stderr
func setup(configFile string, stderr io.Writer) (*container.Container, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	cfg.Logger = config.NewLogger(cfg.Logging, stderr)

	if err := cfg.EnsureWorkspace(); err != nil {
		return nil, err
	}

	db, err := database.Initialize(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	return container.New(cfg, db, nil)
}

func runExams(c *container.Container, args []string, stdout io.Writer) error {
	catalog := c.GetCatalogService()
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)

	if len(args) == 0 {
		exams, err := catalog.ListExams()
		if err != nil {
			return err
		}
		for _, exam := range exams {
			fmt.Fprintf(w, "%s\t%s\t%s\n", exam.ID, exam.Name, exam.Category)
		}
		return w.Flush()
	}

	exam, err := catalog.GetExam(args[0])
	if err != nil {
		return err
	}
	for _, doc := range exam.Documents {
		required := "optional"
		if doc.Required {
			required = "required"
		}

		description := "no usable format"
		if req, err := catalog.Requirement(exam.ID, doc.ID, ""); err == nil {
			description = fmt.Sprintf("[%s] %s", req.Workflow, transport.DescribeEnvelope(req.TargetFormat, req.Workflow, req.Envelope))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", doc.ID, doc.Name, required, description)
	}
	return w.Flush()
}

// targetFlags are the flags shared by the conversion commands
type targetFlags struct {
	exam      string
	document  string
	out       string
	minKB     float64
	maxKB     float64
	minWidth  int
	maxWidth  int
	minHeight int
	maxHeight int
}

func (f *targetFlags) register(fs *pflag.FlagSet, dimensions bool) {
	fs.StringVar(&f.exam, "exam", "", "exam id to take the envelope from")
	fs.StringVar(&f.document, "doc", "", "document id within the exam")
	fs.StringVarP(&f.out, "out", "o", "", "file or directory to save the result to")
	fs.Float64Var(&f.minKB, "min-kb", 0, "minimum output size in KB (with --max-kb)")
	fs.Float64Var(&f.maxKB, "max-kb", 0, "maximum output size in KB; overrides the exam envelope")
	if dimensions {
		fs.IntVar(&f.minWidth, "min-width", 0, "minimum width in pixels (with --max-kb)")
		fs.IntVar(&f.maxWidth, "max-width", 0, "maximum width in pixels (with --max-kb)")
		fs.IntVar(&f.minHeight, "min-height", 0, "minimum height in pixels (with --max-kb)")
		fs.IntVar(&f.maxHeight, "max-height", 0, "maximum height in pixels (with --max-kb)")
	}
}

// envelope returns the explicit envelope, nil when --max-kb is not given
func (f *targetFlags) envelope() *compressionDomain.Envelope {
	if f.maxKB <= 0 {
		return nil
	}
	return &compressionDomain.Envelope{
		MinSizeKB: f.minKB,
		MaxSizeKB: f.maxKB,
		MinWidth:  f.minWidth,
		MaxWidth:  f.maxWidth,
		MinHeight: f.minHeight,
		MaxHeight: f.maxHeight,
	}
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runImage(ctx context.Context, c *container.Container, args []string, stdout, stderr io.Writer) error {
	var target targetFlags
	fs := newFlagSet("image", stderr)
	target.register(fs, true)
	format := fs.String("format", "", "output format, JPEG or PNG")
	crop := fs.IntSlice("crop", nil, "crop rectangle as x,y,width,height")

	if err := fs.Parse(args); err != nil {
		return ignoreHelp(err)
	}
	if fs.NArg() != 1 {
		return errors.New("image expects exactly one input file")
	}

	request := compressionDomain.ImageRequest{
		File:         compressionDomain.FileUpload{Path: fs.Arg(0)},
		TargetFormat: *format,
		ExamID:       target.exam,
		DocumentID:   target.document,
		Envelope:     target.envelope(),
	}
	if len(*crop) > 0 {
		if len(*crop) != 4 {
			return fmt.Errorf("--crop needs four values, got %d", len(*crop))
		}
		request.Crop = &compressionDomain.CropRect{X: (*crop)[0], Y: (*crop)[1], Width: (*crop)[2], Height: (*crop)[3]}
	}

	service := c.GetConversionService()
	return report(service, service.ConvertImage(ctx, request), target.out, stdout)
}

func runPDF(ctx context.Context, c *container.Container, args []string, stdout, stderr io.Writer) error {
	var target targetFlags
	fs := newFlagSet("pdf", stderr)
	target.register(fs, false)

	if err := fs.Parse(args); err != nil {
		return ignoreHelp(err)
	}
	if fs.NArg() != 1 {
		return errors.New("pdf expects exactly one input file")
	}

	request := compressionDomain.DocumentRequest{
		File:       compressionDomain.FileUpload{Path: fs.Arg(0)},
		ExamID:     target.exam,
		DocumentID: target.document,
		Envelope:   target.envelope(),
	}

	service := c.GetConversionService()
	return report(service, service.CompressPDF(ctx, request), target.out, stdout)
}

func runMerge(ctx context.Context, c *container.Container, args []string, stdout, stderr io.Writer) error {
	var target targetFlags
	fs := newFlagSet("merge", stderr)
	target.register(fs, false)
	pageWidth := fs.Int("page-max-width", 0, "shrink pages wider than this many pixels")
	pageHeight := fs.Int("page-max-height", 0, "shrink pages taller than this many pixels")

	if err := fs.Parse(args); err != nil {
		return ignoreHelp(err)
	}
	if fs.NArg() == 0 {
		return errors.New("merge expects at least one input file")
	}

	files := make([]compressionDomain.FileUpload, 0, fs.NArg())
	for _, path := range fs.Args() {
		files = append(files, compressionDomain.FileUpload{Path: path})
	}

	request := compressionDomain.AssembleRequest{
		Files:      files,
		ExamID:     target.exam,
		DocumentID: target.document,
		Envelope:   target.envelope(),
	}
	if *pageWidth > 0 || *pageHeight > 0 {
		request.PageLimits = &compressionDomain.Envelope{MaxWidth: *pageWidth, MaxHeight: *pageHeight}
	}

	service := c.GetConversionService()
	return report(service, service.ImagesToPDF(ctx, request), target.out, stdout)
}

// report prints the outcome and saves the result when out is set
func report(service compressionDomain.Service, resp compressionDomain.ConversionResponse, out string, stdout io.Writer) error {
	if !resp.Success {
		return fmt.Errorf("%s (%s)", resp.Message, resp.Error)
	}

	result := resp.Result
	fmt.Fprintf(stdout, "%s: %s\n", result.Status, result.Summary)
	for _, attempt := range result.Attempts {
		fmt.Fprintf(stdout, "  attempt %d: quality %.2f, %.2f KB\n", attempt.Iteration, attempt.Quality, common.SizeKB(attempt.Size))
	}

	if out == "" {
		fmt.Fprintf(stdout, "output: %s\n", result.TempPath)
		return nil
	}
	if err := service.SaveResult(result.FileID, out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved: %s\n", out)
	return nil
}

func ignoreHelp(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}
