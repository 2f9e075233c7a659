// Package config loads command-line settings from flags, the environment and
// an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"frontmatter-transform/internal/aggregate"
	"frontmatter-transform/internal/common"
	"frontmatter-transform/internal/pipeline"
	"frontmatter-transform/internal/render"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the resolved CLI configuration.
type Config struct {
	Schema   string
	Template string
	Output   string
	// Format is "json", "yaml" or empty to decide from the output path or
	// the schema.
	Format string

	Strategy        aggregate.Strategy
	Syntax          render.Syntax
	Strict          bool
	Mode            pipeline.Mode
	Concurrency     int
	ContinueOnError bool

	LogLevel  slog.Level
	LogFormat string

	// Inputs are the Markdown files and directories to read.
	Inputs []string
}

// Load reads .env when present, then parses args (without the program name).
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	return Parse(args, os.Getenv)
}

// Parse resolves args and the environment read through getenv. Explicit
// flags win over FMT_* variables, which win over defaults.
func Parse(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("frontmatter-transform", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	schemaPath := fs.String("schema", "", "schema file (JSON or YAML)")
	template := fs.String("template", "", "template file; defaults to the schema's x-template")
	output := fs.String("out", "", "output file; stdout when empty")
	format := fs.String("format", "", "output format: json or yaml")
	strategy := fs.String("strategy", "", "aggregation strategy: replace_values, merge_arrays, accumulate_fields")
	syntax := fs.String("syntax", "", "placeholder syntax: mustache, dollar, percent")
	strict := fs.Bool("strict", false, "fail on unresolved placeholders")
	mode := fs.String("mode", "", "processing mode: parallel or sequential")
	concurrency := fs.Int("concurrency", 0, "parallel workers; 0 uses all CPUs")
	continueOnError := fs.Bool("continue-on-error", false, "skip failed documents instead of aborting")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	env := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	cfg := &Config{
		Schema:    common.FirstNonEmpty(*schemaPath, env("FMT_SCHEMA")),
		Template:  common.FirstNonEmpty(*template, env("FMT_TEMPLATE")),
		Output:    common.FirstNonEmpty(*output, env("FMT_OUTPUT")),
		Format:    strings.ToLower(common.FirstNonEmpty(*format, env("FMT_FORMAT"))),
		LogFormat: strings.ToLower(common.FirstNonEmpty(*logFormat, env("FMT_LOG_FORMAT"), "text")),
		Inputs:    fs.Args(),
	}

	var errs []error

	switch cfg.Format {
	case "", FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", cfg.Format))
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", cfg.LogFormat))
	}

	name := common.FirstNonEmpty(*strategy, env("FMT_STRATEGY"), aggregate.ReplaceValues.String())
	if s, ok := aggregate.ParseStrategy(name); ok {
		cfg.Strategy = s
	} else {
		errs = append(errs, fmt.Errorf("unknown strategy %q", name))
	}

	name = common.FirstNonEmpty(*syntax, env("FMT_SYNTAX"), render.Mustache.String())
	if s, ok := render.ParseSyntax(name); ok {
		cfg.Syntax = s
	} else {
		errs = append(errs, fmt.Errorf("unknown syntax %q", name))
	}

	name = common.FirstNonEmpty(*mode, env("FMT_MODE"), pipeline.ModeParallel.String())
	if m, ok := pipeline.ParseMode(name); ok {
		cfg.Mode = m
	} else {
		errs = append(errs, fmt.Errorf("unknown mode %q", name))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(common.FirstNonEmpty(*logLevel, env("FMT_LOG_LEVEL"), "info"))); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}

	var err error

	if cfg.Strict, err = boolSetting(set["strict"], *strict, env("FMT_STRICT")); err != nil {
		errs = append(errs, fmt.Errorf("FMT_STRICT: %w", err))
	}

	if cfg.ContinueOnError, err = boolSetting(set["continue-on-error"], *continueOnError, env("FMT_CONTINUE_ON_ERROR")); err != nil {
		errs = append(errs, fmt.Errorf("FMT_CONTINUE_ON_ERROR: %w", err))
	}

	cfg.Concurrency = *concurrency

	if raw := env("FMT_CONCURRENCY"); raw != "" && !set["concurrency"] {
		if cfg.Concurrency, err = strconv.Atoi(raw); err != nil {
			errs = append(errs, fmt.Errorf("FMT_CONCURRENCY: %w", err))
		}
	}

	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func boolSetting(flagSet, flagValue bool, envValue string) (bool, error) {
	if flagSet || envValue == "" {
		return flagValue, nil
	}

	return strconv.ParseBool(envValue)
}

// PipelineOptions returns the batch options of c.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Mode:            c.Mode,
		Concurrency:     c.Concurrency,
		ContinueOnError: c.ContinueOnError,
		Strategy:        c.Strategy,
	}
}

// Logger returns a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
