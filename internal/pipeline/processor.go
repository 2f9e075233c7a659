package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/match"
	"frontmatter-transform/internal/plan"
	"frontmatter-transform/internal/render"
	"frontmatter-transform/internal/schema"
	"frontmatter-transform/internal/transform"
	"frontmatter-transform/internal/tree"
	"frontmatter-transform/internal/validate"
)

// ErrInvalidDocument is returned for documents that fail validation.
var ErrInvalidDocument = errors.New("document does not match schema")

// Resolver computes processing orders; *plan.Resolver and
// *plan.CachingResolver implement it.
type Resolver interface {
	Resolve(root *schema.Node) (*plan.ProcessingOrder, error)
}

// Config holds the collaborators of a Processor. Nil fields get defaults.
type Config struct {
	Resolver  Resolver
	Registry  *transform.Registry
	Validator *validate.Validator
	Engine    *render.Engine
	Logger    *slog.Logger
	Options   Options
}

// Processor transforms, validates, composes and renders documents. It is
// safe for concurrent use.
type Processor struct {
	resolver  Resolver
	executor  *transform.Executor
	validator *validate.Validator
	engine    *render.Engine
	logger    *slog.Logger
	opts      Options
}

// New returns a Processor for cfg.
func New(cfg Config) (*Processor, error) {
	p := &Processor{
		resolver:  cfg.Resolver,
		validator: cfg.Validator,
		engine:    cfg.Engine,
		logger:    cfg.Logger,
		opts:      cfg.Options.withDefaults(),
	}

	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	if p.resolver == nil {
		r, err := plan.NewResolver(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create resolver: %w", err)
		}

		p.resolver = r
	}

	registry := cfg.Registry
	if registry == nil {
		registry = transform.DefaultRegistry(transform.DefaultFilterOptions())
	}

	p.executor = transform.NewExecutor(registry, p.logger)

	if p.validator == nil {
		p.validator = validate.New()
	}

	if p.engine == nil {
		e, err := render.NewEngine(render.Mustache)
		if err != nil {
			return nil, fmt.Errorf("failed to create render engine: %w", err)
		}

		p.engine = e
	}

	if !p.opts.Mode.IsValid() {
		return nil, fmt.Errorf("unknown processing mode %d", int(p.opts.Mode))
	}

	if !p.opts.Strategy.IsValid() {
		return nil, fmt.Errorf("unknown aggregation strategy %d", int(p.opts.Strategy))
	}

	return p, nil
}

// Options returns the effective options.
func (p *Processor) Options() Options {
	return p.opts
}

// Document is one input document.
type Document struct {
	// Source names the document in logs and errors, usually its file path.
	Source string
	Data   any
}

// DocumentResult is the outcome of processing one document.
type DocumentResult struct {
	Source string
	// Data is the transformed document; nil when Err is set.
	Data       any
	Validation validate.Result
	Err        error
}

// Job is a schema prepared for processing documents.
type Job struct {
	Root *schema.Node
	// Document is the schema each document is checked against: the items of
	// the frontmatter-part array when the root declares one, the root
	// otherwise.
	Document *schema.Node
	// PartPath is where documents are collected; valid when HasPart is set.
	PartPath tree.Path
	HasPart  bool
	Order    *plan.ProcessingOrder
}

// Prepare locates the document schema of root and resolves its processing
// order.
func (p *Processor) Prepare(root *schema.Node) (*Job, error) {
	if root == nil {
		return nil, errors.New("schema is nil")
	}

	job := &Job{Root: root, Document: root}

	partPath, part, found, err := frontmatterPart(root)
	if err != nil {
		return nil, err
	}

	if found {
		job.PartPath, job.HasPart = partPath, true
		job.Document = documentSchema(root, part)
	}

	p.warnUnknownDirectives(root)

	order, err := p.resolver.Resolve(job.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directives: %w", err)
	}

	job.Order = order

	p.logger.Debug("prepared schema",
		"part_path", partPath.String(),
		"directives", order.TotalDirectives,
		"order", order.String(),
	)

	return job, nil
}

// Process transforms and validates one document against root.
func (p *Processor) Process(ctx context.Context, root *schema.Node, doc Document) (DocumentResult, error) {
	job, err := p.Prepare(root)
	if err != nil {
		return DocumentResult{}, err
	}

	res := p.ProcessDocument(ctx, job, doc)

	return res, res.Err
}

// ProcessDocument transforms and validates doc. Failures are reported in
// the result's Err.
func (p *Processor) ProcessDocument(ctx context.Context, job *Job, doc Document) DocumentResult {
	res := DocumentResult{Source: doc.Source}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	out, err := p.executor.Run(job.Order, doc.Data, job.Document)
	if err != nil {
		res.Err = err
		return res
	}

	vres, err := p.validator.ValidateNode(out, job.Root, job.Document)
	if err != nil {
		res.Err = fmt.Errorf("failed to validate: %w", err)
		return res
	}

	res.Validation = vres

	for _, w := range vres.Warnings {
		p.logger.Warn("schema warning",
			"source", doc.Source,
			"path", w.Path,
			"message", w.Message,
			"suggestion", w.Suggestion,
		)
	}

	if !vres.Valid {
		for _, e := range vres.Errors {
			p.logger.Debug("schema violation",
				"source", doc.Source,
				"path", e.Path,
				"rule", e.Rule,
				"value", e.ValueText(),
			)
		}

		res.Err = fmt.Errorf("%w: %w", ErrInvalidDocument, vres.Err())
		return res
	}

	res.Data = out

	return res
}

// warnUnknownDirectives logs "x-" keys that name no directive, with the
// closest known key.
func (p *Processor) warnUnknownDirectives(root *schema.Node) {
	known := make([]string, 0, len(directive.AllKinds()))
	for _, k := range directive.AllKinds() {
		known = append(known, k.ExtensionKey())
	}

	_ = schema.Walk(root, func(path tree.Path, n *schema.Node) error {
		for _, key := range slices.Sorted(maps.Keys(n.Extensions)) {
			if _, ok := directive.ParseKind(key); ok {
				continue
			}

			suggestion, _ := match.Suggest(key, known)
			p.logger.Warn("unknown directive",
				"key", key,
				"schema_path", path.String(),
				"suggestion", suggestion,
			)
		}

		return nil
	})
}

// frontmatterPart returns the first property marked as the frontmatter part.
func frontmatterPart(root *schema.Node) (tree.Path, *schema.Node, bool, error) {
	var (
		path  tree.Path
		node  *schema.Node
		found bool
	)

	key := directive.KindFrontmatterPart.ExtensionKey()

	err := schema.Walk(root, func(p tree.Path, n *schema.Node) error {
		if found {
			return nil
		}

		if on, ok := n.ExtensionBool(key); !ok || !on {
			return nil
		}

		if p.HasSlice() {
			return fmt.Errorf("%s at %s: part must not be nested in an array", key, p)
		}

		path, node, found = p, n, true

		return nil
	})
	if err != nil {
		return tree.Path{}, nil, false, err
	}

	return path, node, found, nil
}

// documentSchema returns the item schema of the part array, following one
// reference.
func documentSchema(root, part *schema.Node) *schema.Node {
	item := part.Items
	if item == nil {
		return &schema.Node{}
	}

	if item.Ref != "" {
		if def, ok := root.LookupRef(item.Ref); ok {
			return def
		}
	}

	return item
}
