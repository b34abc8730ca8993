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


package storage

import (
	"errors"
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// vectorMUS encodes a vector as a varint length followed by raw float32 values.
var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// MarshalVector serializes a vector.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, vectorMUS.Size(vector))
	vectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes a vector written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	// Reject impossible lengths before the serializer allocates for them.
	length, n, err := varint.PositiveInt.Unmarshal(data)
	if err == nil && length >= 0 && length > (len(data)-n)/4 {
		err = mus.ErrTooSmallByteSlice
	}
	if err != nil {
		return nil, wrapVectorErr(err)
	}
	vector, n, err := vectorMUS.Unmarshal(data)
	if err != nil {
		return nil, wrapVectorErr(err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after vector", ErrSerializationFailed, len(data)-n)
	}
	return vector, nil
}

func wrapVectorErr(err error) error {
	if errors.Is(err, mus.ErrTooSmallByteSlice) {
		return fmt.Errorf("%w: %w: %w", ErrSerializationFailed, ErrTruncatedData, err)
	}
	return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
}
