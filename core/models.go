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
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ResponseKeyPrefix is prepended to an intent id to form its response key.
const ResponseKeyPrefix = "utter_"

// ResponseKey returns the response table key for an intent.
func ResponseKey(intentID string) string {
	return ResponseKeyPrefix + intentID
}

// ContentKey derives a deterministic hex key from the given parts using BLAKE2b.
// Parts are separated by a NUL byte so ("ab", "c") and ("a", "bc") differ.
func ContentKey(parts ...string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// ExampleRecord is one indexed example utterance.
// Records are immutable once the index has been built.
type ExampleRecord struct {
	IntentID       string
	SourceGroup    string // Corpus file the intent was defined in
	RawText        string
	NormalizedText string
}

// IntentDefinition is an intent as loaded from the corpus.
// Examples is always an ordered list, whatever shape the source file used.
type IntentDefinition struct {
	ID       string
	Examples []string
}

// CorpusSource groups the intents defined by one source file.
type CorpusSource struct {
	Name    string
	Intents []IntentDefinition
}

// ResponseVariant is one canned answer for a response key.
type ResponseVariant struct {
	Text string `yaml:"text" json:"text"`
}

// ResponseTable maps response keys to their ordered variants.
type ResponseTable map[string][]ResponseVariant

// Lookup returns the first variant for key, if one is configured.
func (t ResponseTable) Lookup(key string) (ResponseVariant, bool) {
	variants, ok := t[key]
	if !ok || len(variants) == 0 {
		return ResponseVariant{}, false
	}
	return variants[0], true
}

// Has reports whether key has at least one response variant.
func (t ResponseTable) Has(key string) bool {
	_, ok := t.Lookup(key)
	return ok
}

// DocumentDescriptor describes a reference document in the registry.
// Higher priority documents are scanned first.
type DocumentDescriptor struct {
	Filename    string `yaml:"filename" json:"filename"`
	Description string `yaml:"description" json:"description"`
	Priority    int    `yaml:"priority" json:"priority"`
}

// ResultKind identifies which stage produced a Result.
type ResultKind string

const (
	// KindIntent marks an answer taken from the curated intent bank.
	KindIntent ResultKind = "intent"
	// KindFallback marks an answer produced by the document cascade.
	KindFallback ResultKind = "fallback"
	// KindError marks a terminal failure reported to the caller.
	KindError ResultKind = "error"
)

// Result is the only value returned across the system boundary.
type Result struct {
	Kind    ResultKind `json:"type"`
	Answer  string     `json:"answer,omitempty"`
	Message string     `json:"message,omitempty"`
}

// IntentResult builds an intent-stage result.
func IntentResult(answer string) Result {
	return Result{Kind: KindIntent, Answer: answer}
}

// FallbackResult builds a cascade result.
func FallbackResult(answer string) Result {
	return Result{Kind: KindFallback, Answer: answer}
}

// ErrorResult builds a terminal error result.
func ErrorResult(message string) Result {
	return Result{Kind: KindError, Message: message}
}

// Candidate is one ranked match considered by the intent matcher.
type Candidate struct {
	Rank           int     `json:"rank"`
	Index          int     `json:"index"` // Insertion index in the embedding index
	IntentID       string  `json:"intent"`
	Example        string  `json:"example"`
	SourceGroup    string  `json:"file"`
	Score          float64 `json:"score"`
	ResponseKey    string  `json:"response_key"`
	ResponseExists bool    `json:"response_exists"`
	Accepted       bool    `json:"accepted"`
}

// Explanation is the observational trace of a match.
type Explanation struct {
	Query      string      `json:"query"`
	Normalized string      `json:"normalized"`
	Threshold  float64     `json:"threshold"`
	Tried      []Candidate `json:"tried"`
}
