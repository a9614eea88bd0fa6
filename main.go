package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/jsonatlas/jsonatlas/internal/collection"
	"github.com/jsonatlas/jsonatlas/internal/config"
	"github.com/jsonatlas/jsonatlas/internal/errors"
	"github.com/jsonatlas/jsonatlas/internal/export"
	"github.com/jsonatlas/jsonatlas/internal/graph"
	"github.com/jsonatlas/jsonatlas/internal/report"
	"github.com/jsonatlas/jsonatlas/internal/schema"
)

// Version information
const Version = "0.1.0"

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to config file. Discovered upward from the working directory when not set." type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Flatten    FlattenCmd    `cmd:"" help:"Flatten documents into structure tables."`
	Complexity ComplexityCmd `cmd:"" help:"Report per-document structural complexity."`
	Schema     SchemaCmd     `cmd:"" help:"Generalize a collection into one representative schema."`
	Graph      GraphCmd      `cmd:"" help:"Project one document's structure as vertices and edges."`
	Export     ExportCmd     `cmd:"" help:"Export the generalized schema as an OpenAPI schema object."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Config *config.Config
	Logger *zap.Logger
}

type inputFlags struct {
	Input string `help:"Path to a JSON file, NDJSON file, or directory of .json files. If not specified, reads from stdin." short:"i" type:"path"`
}

type outputFlags struct {
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// FlattenCmd emits the structure tables of every parsed document.
type FlattenCmd struct {
	inputFlags
	outputFlags
}

func (c *FlattenCmd) Run(ctx *Context) error {
	res, err := processInput(ctx, c.Input)
	if err != nil {
		return err
	}
	b, err := report.TablesJSON(res)
	if err != nil {
		return err
	}
	return writeOutput(c.Output, b)
}

// ComplexityCmd emits per-document node counts.
type ComplexityCmd struct {
	inputFlags
	outputFlags
}

func (c *ComplexityCmd) Run(ctx *Context) error {
	res, err := processInput(ctx, c.Input)
	if err != nil {
		return err
	}
	b, err := report.ComplexityJSON(res)
	if err != nil {
		return err
	}
	return writeOutput(c.Output, b)
}

// SchemaCmd generalizes the whole collection into one schema.
type SchemaCmd struct {
	inputFlags
	outputFlags
	Samples bool   `help:"Retain one representative value per leaf position."`
	Format  string `help:"Output format, 'text' or 'json'. Defaults to the configured format."`
}

func (c *SchemaCmd) Run(ctx *Context) error {
	if c.Samples {
		ctx.Config.Mode = config.ModeSamples
	}
	if c.Format != "" {
		if c.Format != config.FormatText && c.Format != config.FormatJSON {
			return errors.NewInputError(fmt.Sprintf("unknown format '%s', expected 'text' or 'json'", c.Format), nil)
		}
		ctx.Config.Format = c.Format
	}

	res, err := processInput(ctx, c.Input)
	if err != nil {
		return err
	}
	if res.Schema == nil {
		return errors.NewOutputError("nothing to report, no document parsed", errors.ErrNoDocuments)
	}

	var b []byte
	if ctx.Config.Format == config.FormatJSON {
		b, err = report.SchemaJSON(res.Schema)
		if err != nil {
			return err
		}
	} else {
		b = []byte(report.SchemaText(res.Schema, report.TextOptions{
			TypeNames: ctx.Config.Report.TypeNames,
			Samples:   ctx.Config.Mode == config.ModeSamples,
			RootLabel: ctx.Config.Report.RootLabel,
		}))
	}
	return writeOutput(c.Output, b)
}

// GraphCmd projects a single document's table into vertex/edge form.
type GraphCmd struct {
	inputFlags
	outputFlags
	Doc int `help:"Document id to project. Defaults to the first parsed document." default:"-1"`
}

func (c *GraphCmd) Run(ctx *Context) error {
	res, err := processInput(ctx, c.Input)
	if err != nil {
		return err
	}
	if len(res.Documents) == 0 {
		return errors.NewOutputError("nothing to project, no document parsed", errors.ErrNoDocuments)
	}

	docRes := res.Documents[0]
	if c.Doc >= 0 {
		found := false
		for _, d := range res.Documents {
			if d.ID == c.Doc {
				docRes = d
				found = true
				break
			}
		}
		if !found {
			return errors.NewInputError(fmt.Sprintf("no parsed document with id %d", c.Doc), nil)
		}
	}

	p, err := graph.Project(docRes.Table)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.NewOutputError("failed to encode graph projection", err)
	}
	return writeOutput(c.Output, append(b, '\n'))
}

// ExportCmd emits the generalized schema as OpenAPI.
type ExportCmd struct {
	inputFlags
	outputFlags
	Samples bool `help:"Attach representative values as examples."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	if c.Samples {
		ctx.Config.Mode = config.ModeSamples
	}
	res, err := processInput(ctx, c.Input)
	if err != nil {
		return err
	}
	if res.Schema == nil {
		return errors.NewOutputError("nothing to export, no document parsed", errors.ErrNoDocuments)
	}
	b, err := json.MarshalIndent(export.OpenAPISchema(res.Schema), "", "  ")
	if err != nil {
		return errors.NewOutputError("failed to encode OpenAPI schema", err)
	}
	return writeOutput(c.Output, append(b, '\n'))
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("jsonatlas"),
		kong.Description("Structural exploration of heterogeneous JSON collections"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	logger := newLogger(CLI.Debug)
	defer logger.Sync()

	err = ctx.Run(&Context{Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonatlas --help\n")
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return config.NewConfig(), nil
	}
	return config.LoadConfig(path)
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// processInput ingests the requested input and runs the batch pipeline.
func processInput(ctx *Context, input string) (collection.Result, error) {
	c, err := readCollection(ctx, input)
	if err != nil {
		return collection.Result{}, err
	}

	mode := schema.ModeTypeOnly
	if ctx.Config.Mode == config.ModeSamples {
		mode = schema.ModeValueSample
	}
	opts := collection.Options{Workers: ctx.Config.Workers, Mode: mode}
	return collection.Process(c, opts, ctx.Logger), nil
}

// readCollection reads from a file, a directory, or stdin.
func readCollection(ctx *Context, input string) (collection.Collection, error) {
	if input != "" {
		info, err := os.Stat(input)
		if err != nil {
			if os.IsNotExist(err) {
				return collection.Collection{}, errors.NewInputError(fmt.Sprintf("file '%s' not found", input), errors.ErrFileNotFound)
			}
			return collection.Collection{}, errors.NewInputError(fmt.Sprintf("failed to access '%s'", input), err)
		}
		if info.IsDir() {
			return collection.ReadDir(input, ctx.Logger)
		}
		return collection.ReadFile(input, ctx.Logger)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return collection.Collection{}, errors.NewInputError("failed to access stdin", err)
	}
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		return collection.Collection{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	return collection.ReadAll(os.Stdin, ctx.Logger)
}

// writeOutput writes rendered output to file or stdout
func writeOutput(path string, b []byte) error {
	if path != "" {
		if err := os.WriteFile(path, b, 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(b); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
