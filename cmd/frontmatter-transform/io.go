package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"frontmatter-transform/internal/config"
	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/frontmatter"
	"frontmatter-transform/internal/pipeline"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/tree"
)

var markdownExts = []string{".md", ".markdown"}

func loadSchema(path string) (*schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	root, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return root, nil
}

// loadTemplates loads the output template and the per-item template. Paths
// declared in the schema are relative to the schema file.
func loadTemplates(cfg *config.Config, root *schema.Node) (tmpl, itemTmpl any, err error) {
	dir := filepath.Dir(cfg.Schema)

	path := cfg.Template
	if path == "" {
		if p, ok := root.ExtensionString(directive.KindTemplate.ExtensionKey()); ok {
			path = relativeTo(dir, p)
		}
	}

	if path != "" {
		if tmpl, err = loadTemplate(path); err != nil {
			return nil, nil, err
		}
	}

	if p, ok := root.ExtensionString(directive.KindTemplateItems.ExtensionKey()); ok {
		if itemTmpl, err = loadTemplate(relativeTo(dir, p)); err != nil {
			return nil, nil, err
		}
	}

	return tmpl, itemTmpl, nil
}

// loadTemplate decodes .json, .yaml and .yml files into trees; any other
// file is a text template.
func loadTemplate(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		raw, err := tree.DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
		}

		return raw, nil
	default:
		return string(data), nil
	}
}

func relativeTo(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// readDocuments reads the front matter of every Markdown file named by
// inputs or found below the named directories. Directory entries are read
// in lexical order; files without front matter are skipped.
func readDocuments(inputs []string, logger *slog.Logger) ([]pipeline.Document, error) {
	var files []string

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		if !info.IsDir() {
			files = append(files, in)
			continue
		}

		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && slices.Contains(markdownExts, strings.ToLower(filepath.Ext(path))) {
				files = append(files, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", in, err)
		}
	}

	docs := make([]pipeline.Document, 0, len(files))

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}

		fm, err := frontmatter.Split(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if !fm.HasFrontMatter {
			logger.Debug("skipping document without front matter", "source", path)
			continue
		}

		docs = append(docs, pipeline.Document{Source: path, Data: fm.Data})
	}

	logger.Debug("documents read", "files", len(files), "documents", len(docs))

	return docs, nil
}

// outputFormat picks the -format flag, then the output file extension, then
// the schema's x-template-format, then JSON.
func outputFormat(cfg *config.Config, root *schema.Node) string {
	if cfg.Format != "" {
		return cfg.Format
	}

	switch strings.ToLower(filepath.Ext(cfg.Output)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".json":
		return config.FormatJSON
	}

	if f, ok := root.ExtensionString(directive.KindTemplateFormat.ExtensionKey()); ok {
		switch strings.ToLower(f) {
		case config.FormatYAML, "yml":
			return config.FormatYAML
		}
	}

	return config.FormatJSON
}

// encode serializes value. Text produced by a text template is written
// unchanged.
func encode(value any, format string) ([]byte, error) {
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}

	if format == config.FormatYAML {
		out, err := yaml.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}

		return out, nil
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return append(out, '\n'), nil
}
