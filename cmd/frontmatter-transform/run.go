package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"frontmatter-transform/internal/config"
	"frontmatter-transform/internal/pipeline"
	"frontmatter-transform/internal/plan"
	"frontmatter-transform/internal/render"
	"frontmatter-transform/internal/transform"
	"frontmatter-transform/internal/validate"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(stderr, "frontmatter-transform:", err)
		fmt.Fprintln(stderr, "usage: frontmatter-transform -schema FILE [flags] PATH...")

		return exitUsage
	}

	logger := cfg.Logger(stderr)

	if err := execute(ctx, cfg, logger, stdout); err != nil {
		logger.Error("transformation failed", "error", err)
		return exitError
	}

	return exitOK
}

func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if cfg.Schema == "" {
		return errors.New("no schema given, use -schema or FMT_SCHEMA")
	}

	if len(cfg.Inputs) == 0 {
		return errors.New("no input files or directories given")
	}

	root, err := loadSchema(cfg.Schema)
	if err != nil {
		return err
	}

	tmpl, itemTmpl, err := loadTemplates(cfg, root)
	if err != nil {
		return err
	}

	docs, err := readDocuments(cfg.Inputs, logger)
	if err != nil {
		return err
	}

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}

	batch, err := proc.RunBatch(ctx, root, docs)
	if err != nil {
		return err
	}

	comp, err := proc.Compose(batch.Job, batch.Data(), tmpl)
	if err != nil {
		return err
	}

	value := comp.Data

	if tmpl != nil {
		res, err := proc.Render(tmpl, comp, itemTmpl)
		if err != nil {
			return err
		}

		value = res.Value
	}

	out, err := encode(value, outputFormat(cfg, root))
	if err != nil {
		return err
	}

	return writeOutput(cfg.Output, out, stdout)
}

func newProcessor(cfg *config.Config, logger *slog.Logger) (*pipeline.Processor, error) {
	resolver, err := plan.NewResolver(nil)
	if err != nil {
		return nil, err
	}

	cached, err := plan.NewCachingResolver(resolver, plan.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	engine, err := render.NewEngine(cfg.Syntax, render.WithStrict(cfg.Strict))
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Config{
		Resolver:  cached,
		Registry:  transform.DefaultRegistry(transform.DefaultFilterOptions()),
		Validator: validate.New(),
		Engine:    engine,
		Logger:    logger,
		Options:   cfg.PipelineOptions(),
	})
}

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// writeOutput writes data to path, creating its directory, or to stdout when
// path is empty.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}

	return nil
}
