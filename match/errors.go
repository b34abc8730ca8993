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


package match

import "errors"

var (
	// ErrIndexRequired is returned when an index is not provided.
	ErrIndexRequired = errors.New("index required")

	// ErrEncoderRequired is returned when an encoder is not provided.
	ErrEncoderRequired = errors.New("encoder required")

	// ErrModelMismatch is returned when the encoder and index use different embedding models.
	ErrModelMismatch = errors.New("encoder and index use different embedding models")

	// ErrInvalidTopK is returned when topK < 1.
	ErrInvalidTopK = errors.New("topK must be at least 1")

	// ErrInvalidThreshold is returned when the threshold is outside [-1, 1].
	ErrInvalidThreshold = errors.New("threshold must be between -1 and 1")

	// ErrQueryEmbedding wraps failures embedding the query.
	ErrQueryEmbedding = errors.New("query embedding failed")
)
