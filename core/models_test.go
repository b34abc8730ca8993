package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseKey(t *testing.T) {
	assert.Equal(t, "utter_working_hours", ResponseKey("working_hours"))
	assert.Equal(t, "utter_", ResponseKey(""))
}

func TestContentKey(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		same bool
	}{
		{name: "identical parts", a: []string{"model", "text"}, b: []string{"model", "text"}, same: true},
		{name: "different text", a: []string{"model", "text"}, b: []string{"model", "other"}, same: false},
		{name: "boundary shift", a: []string{"ab", "c"}, b: []string{"a", "bc"}, same: false},
		{name: "empty", a: []string{}, b: []string{""}, same: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := ContentKey(tt.a...)
			kb := ContentKey(tt.b...)
			assert.Len(t, ka, 32)
			if tt.same {
				assert.Equal(t, ka, kb)
			} else {
				assert.NotEqual(t, ka, kb)
			}
		})
	}
}

func TestResponseTable_Lookup(t *testing.T) {
	table := ResponseTable{
		"utter_hours": {{Text: "8 تا 16"}, {Text: "second"}},
		"utter_empty": {},
	}

	v, ok := table.Lookup("utter_hours")
	assert.True(t, ok)
	assert.Equal(t, "8 تا 16", v.Text)

	_, ok = table.Lookup("utter_empty")
	assert.False(t, ok, "a key without variants has no answer")

	assert.False(t, table.Has("utter_missing"))
	assert.True(t, table.Has("utter_hours"))
}

func TestResultConstructors(t *testing.T) {
	assert.Equal(t, Result{Kind: KindIntent, Answer: "a"}, IntentResult("a"))
	assert.Equal(t, Result{Kind: KindFallback, Answer: "b"}, FallbackResult("b"))
	assert.Equal(t, Result{Kind: KindError, Message: "c"}, ErrorResult("c"))
}

func TestValidateIntent(t *testing.T) {
	assert.NoError(t, ValidateIntent("a.yml", 0, &IntentDefinition{ID: "greet"}))

	err := ValidateIntent("a.yml", 2, &IntentDefinition{ID: "  "})
	assert.True(t, errors.Is(err, ErrMalformedCorpus))
	assert.True(t, errors.Is(err, ErrEmptyIntentID))
	assert.Contains(t, err.Error(), "a.yml")

	err = ValidateIntent("a.yml", 0, nil)
	assert.True(t, errors.Is(err, ErrMalformedCorpus))
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(0, &DocumentDescriptor{Filename: "a.pdf"}))

	err := ValidateDocument(1, &DocumentDescriptor{Description: "no name"})
	assert.True(t, errors.Is(err, ErrEmptyFilename))
	assert.True(t, errors.Is(err, ErrMalformedCorpus))
}
