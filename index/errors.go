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


package index

import "errors"

var (
	// ErrEmbedderRequired is returned when an encoder is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEncoderRequired is returned when an index is built without an encoder.
	ErrEncoderRequired = errors.New("encoder is required")

	// ErrVectorLengthMismatch is returned when comparing vectors of different dimensions.
	ErrVectorLengthMismatch = errors.New("vector length mismatch")

	// ErrEmbeddingCountMismatch is returned when the embedder returns the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrInvalidMaxAttempts is returned when maxAttempts <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
