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

import "errors"

// Pipeline error taxonomy
var (
	// ErrConfiguration indicates a required capability or credential is absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound indicates a referenced document is absent.
	ErrNotFound = errors.New("not found")

	// ErrProvider indicates a network, auth or quota failure from an LLM provider.
	ErrProvider = errors.New("provider error")

	// ErrMalformedCorpus indicates an intent or response definition is structurally invalid.
	ErrMalformedCorpus = errors.New("malformed corpus")

	// ErrEmptyIntentID indicates an intent definition without an id.
	ErrEmptyIntentID = errors.New("intent id cannot be empty")

	// ErrEmptyFilename indicates a document descriptor without a filename.
	ErrEmptyFilename = errors.New("document filename cannot be empty")
)
