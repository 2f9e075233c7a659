// Package main provides the CLI entrypoint for frontmatter-transform.
//
// frontmatter-transform reads the YAML front matter of Markdown documents and:
//   - applies the directives declared by a schema (flattening, query filters)
//   - validates every document against the schema
//   - collects or aggregates the documents into one tree
//   - renders the tree through a JSON, YAML or text template
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
