package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/faqbot/core"
)

// Examples is an ordered list of example utterances.
// It decodes from either a block string of bullet lines or a YAML list.
type Examples []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Examples) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var block string
		if err := node.Decode(&block); err != nil {
			return err
		}
		*e = splitBlock(block)
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*e = cleanList(items)
	default:
		return fmt.Errorf("line %d: examples must be a string or a list", node.Line)
	}
	return nil
}

// splitBlock splits a block string on newlines and strips bullet markers.
func splitBlock(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimSpace(strings.Trim(line, "- "))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type intentEntry struct {
	Intent   string   `yaml:"intent"`
	Examples Examples `yaml:"examples"`
}

// LoadIntents reads every .yml/.yaml file in dir, ordered by file name.
// Each file becomes one CorpusSource named after the file.
func LoadIntents(dir string) ([]core.CorpusSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading intents directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yml", ".yaml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	sources := make([]core.CorpusSource, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		intents, err := ParseIntents(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedCorpus, name, err)
		}
		sources = append(sources, core.CorpusSource{Name: name, Intents: intents})
	}
	return sources, nil
}

// ParseIntents decodes one intent file.
// Accepted shapes: {nlu: [...]}, a bare list of intents, or a single intent mapping.
func ParseIntents(data []byte) ([]core.IntentDefinition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	var entries []intentEntry
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&entries); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if nlu := mappingValue(root, "nlu"); nlu != nil {
			if err := nlu.Decode(&entries); err != nil {
				return nil, err
			}
		} else {
			var single intentEntry
			if err := root.Decode(&single); err != nil {
				return nil, err
			}
			entries = []intentEntry{single}
		}
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("line %d: expected a list or mapping of intents", root.Line)
	default:
		return nil, fmt.Errorf("line %d: expected a list or mapping of intents", root.Line)
	}

	intents := make([]core.IntentDefinition, len(entries))
	for i, entry := range entries {
		intents[i] = core.IntentDefinition{
			ID:       strings.TrimSpace(entry.Intent),
			Examples: []string(entry.Examples),
		}
	}
	return intents, nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
