package tree

import (
	"gopkg.in/yaml.v3"
)

const (
	timestampTag = "!!timestamp"
	strTag       = "!!str"
)

// DecodeYAML decodes a YAML document into a normalized tree. Timestamp
// scalars keep their source text, so "date: 2024-01-02" decodes to the
// string "2024-01-02". An empty document decodes to nil.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 {
		return nil, nil
	}

	untagTimestamps(&doc)

	var raw any
	if err := doc.Decode(&raw); err != nil {
		return nil, err
	}

	return Normalize(raw), nil
}

func untagTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == timestampTag {
		n.Tag = strTag
		return
	}

	for _, c := range n.Content {
		untagTimestamps(c)
	}
}
