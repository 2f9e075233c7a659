// Package frontmatter extracts the YAML front matter of Markdown documents.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"frontmatter-transform/internal/tree"
)

const delimiter = "---"

// ErrUnterminated is returned when the opening delimiter has no closing one.
var ErrUnterminated = errors.New("front matter is not terminated")

// Document is a split Markdown document.
type Document struct {
	// Data is the decoded front matter; an empty map when the block is empty.
	Data map[string]any
	// Body is the content after the closing delimiter.
	Body []byte
	// HasFrontMatter is false when the content does not start with "---".
	HasFrontMatter bool
}

// Split separates the front matter of content from its body. The block
// starts with a "---" line at the very beginning and ends with the next
// "---" or "..." line. A leading UTF-8 BOM is ignored.
func Split(content []byte) (Document, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	first, rest, _ := cutLine(content)
	if string(bytes.TrimRight(first, " \t")) != delimiter {
		return Document{Body: content}, nil
	}

	var block []byte

	for {
		line, next, more := cutLine(rest)

		trimmed := string(bytes.TrimRight(line, " \t"))
		if trimmed == delimiter || trimmed == "..." {
			data, err := decode(block)
			if err != nil {
				return Document{}, err
			}

			return Document{Data: data, Body: next, HasFrontMatter: true}, nil
		}

		if !more {
			return Document{}, ErrUnterminated
		}

		block = append(block, line...)
		block = append(block, '\n')
		rest = next
	}
}

func decode(block []byte) (map[string]any, error) {
	raw, err := tree.DecodeYAML(block)
	if err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	if raw == nil {
		return map[string]any{}, nil
	}

	data, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to parse front matter: expected a mapping, got %s", tree.TypeName(raw))
	}

	return data, nil
}

// cutLine returns the first line of b without its line ending and the rest.
// more is false when b holds no line break.
func cutLine(b []byte) (line, rest []byte, more bool) {
	line, rest, more = bytes.Cut(b, []byte("\n"))

	return bytes.TrimSuffix(line, []byte("\r")), rest, more
}
