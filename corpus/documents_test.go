package corpus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqbot/core"
)

func TestLoadResponses(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads responses", func(t *testing.T) {
		writeFile(t, dir, "domain.yml", `
version: "3.1"
responses:
  utter_office_hours:
    - text: "۸ تا ۱۶"
    - text: "از ۸ صبح"
  utter_empty: []
`)
		table, err := LoadResponses(filepath.Join(dir, "domain.yml"))
		require.NoError(t, err)

		v, ok := table.Lookup("utter_office_hours")
		require.True(t, ok)
		assert.Equal(t, "۸ تا ۱۶", v.Text)
		assert.False(t, table.Has("utter_empty"))
		assert.False(t, table.Has("utter_missing"))
	})

	t.Run("no responses section", func(t *testing.T) {
		writeFile(t, dir, "bare.yml", "intents: [a]\n")
		table, err := LoadResponses(filepath.Join(dir, "bare.yml"))
		require.NoError(t, err)
		assert.NotNil(t, table)
		assert.Empty(t, table)
	})

	t.Run("malformed", func(t *testing.T) {
		writeFile(t, dir, "bad.yml", "responses: [\n")
		_, err := LoadResponses(filepath.Join(dir, "bad.yml"))
		assert.ErrorIs(t, err, core.ErrMalformedCorpus)
	})
}

func TestParseDocuments(t *testing.T) {
	t.Run("bare list keeps registration order", func(t *testing.T) {
		docs, err := ParseDocuments([]byte(`
- filename: rules.pdf
  description: آیین‌نامه آموزشی
  priority: 1
- filename: calendar.pdf
  description: تقویم
  priority: 5
`))
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "rules.pdf", docs[0].Filename)
		assert.Equal(t, 5, docs[1].Priority)
	})

	t.Run("documents key", func(t *testing.T) {
		docs, err := ParseDocuments([]byte("documents:\n  - filename: a.pdf\n"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, 0, docs[0].Priority)
	})

	t.Run("empty filename", func(t *testing.T) {
		_, err := ParseDocuments([]byte("- description: orphan\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrMalformedCorpus)
		assert.ErrorIs(t, err, core.ErrEmptyFilename)
	})

	t.Run("empty registry", func(t *testing.T) {
		docs, err := ParseDocuments([]byte(""))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
