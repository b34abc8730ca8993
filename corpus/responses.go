package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/faqbot/core"
)

type domainFile struct {
	Responses core.ResponseTable `yaml:"responses"`
}

// LoadResponses reads the "responses" section of a domain file.
// A domain file without responses yields an empty table.
func LoadResponses(path string) (core.ResponseTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading domain file: %w", err)
	}
	var domain domainFile
	if err := yaml.Unmarshal(data, &domain); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedCorpus, path, err)
	}
	if domain.Responses == nil {
		domain.Responses = core.ResponseTable{}
	}
	return domain.Responses, nil
}
