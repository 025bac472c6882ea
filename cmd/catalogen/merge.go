package main

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/tarot-shogun/taikou5dxls/internal/catalog"
	"gopkg.in/yaml.v3"
)

// mergeCategories replaces the entries of the categories section of the
// catalog document data. Category titles, the other sections and comments
// are kept. Categories missing from data are appended with an empty title.
func mergeCategories(data []byte, order []string, entries map[string][]catalog.Entry) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("catalog is not a mapping")
	}
	root := doc.Content[0]

	categories := mappingValue(root, "categories")
	if categories == nil {
		categories = &yaml.Node{Kind: yaml.MappingNode}
		root.Content = append([]*yaml.Node{scalarNode("categories"), categories}, root.Content...)
	}

	for _, name := range order {
		list, ok := entries[name]
		if !ok {
			continue
		}
		category := mappingValue(categories, name)
		if category == nil {
			category = &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
				scalarNode("title"), {Kind: yaml.MappingNode, Style: yaml.FlowStyle},
			}}
			categories.Content = append(categories.Content, scalarNode(name), category)
		}
		setMappingValue(category, "entries", entriesNode(list))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	if _, err := catalog.Parse(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("merged catalog is invalid: %w", err)
	}
	return buf.Bytes(), nil
}

// mappingValue returns the value of key in the mapping node m, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, scalarNode(key), value)
}

// entriesNode renders entries one flow mapping per line.
func entriesNode(entries []catalog.Entry) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range entries {
		seq.Content = append(seq.Content, &yaml.Node{
			Kind:  yaml.MappingNode,
			Style: yaml.FlowStyle,
			Content: []*yaml.Node{
				scalarNode("id"),
				{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(e.ID)},
				scalarNode("name"),
				scalarNode(e.Name),
			},
		})
	}
	return seq
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
