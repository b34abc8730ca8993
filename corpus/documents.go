// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/faqbot/core"
)

// LoadDocuments reads the document registry.
// The file is either a bare list of descriptors or {documents: [...]}.
// Registration order is preserved; priority ordering is the cascade's job.
func LoadDocuments(path string) ([]core.DocumentDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document registry: %w", err)
	}
	docs, err := ParseDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// ParseDocuments decodes and validates a document registry.
func ParseDocuments(data []byte) ([]core.DocumentDescriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedCorpus, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		if list := mappingValue(root, "documents"); list != nil {
			root = list
		}
	}

	var docs []core.DocumentDescriptor
	if err := root.Decode(&docs); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedCorpus, err)
	}
	for i := range docs {
		if err := core.ValidateDocument(i, &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}
