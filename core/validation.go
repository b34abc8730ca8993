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


package core

import (
	"fmt"
	"strings"
)

// ValidateIntent validates an IntentDefinition according to corpus rules.
//
// Validation rules:
//   - ID must not be empty or whitespace
//
// NOT validated:
//   - Examples (an intent with no examples simply contributes no records)
func ValidateIntent(source string, position int, intent *IntentDefinition) error {
	if intent == nil {
		return fmt.Errorf("%w: %s: intent #%d is nil", ErrMalformedCorpus, source, position)
	}
	if strings.TrimSpace(intent.ID) == "" {
		return fmt.Errorf("%w: %s: intent #%d: %w", ErrMalformedCorpus, source, position, ErrEmptyIntentID)
	}
	return nil
}

// ValidateDocument validates a DocumentDescriptor.
func ValidateDocument(position int, doc *DocumentDescriptor) error {
	if doc == nil {
		return fmt.Errorf("%w: document #%d is nil", ErrMalformedCorpus, position)
	}
	if strings.TrimSpace(doc.Filename) == "" {
		return fmt.Errorf("%w: document #%d: %w", ErrMalformedCorpus, position, ErrEmptyFilename)
	}
	return nil
}
