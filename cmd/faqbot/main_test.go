package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/faqbot/cascade"
	"github.com/poiesic/faqbot/core"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	intents := filepath.Join(dir, "intents")
	require.NoError(t, os.MkdirAll(intents, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(intents, "a.yml"), []byte(`nlu:
- intent: hours
  examples: |
    - ساعت کاری
    - کی باز است
- intent: tuition
  examples: [شهریه]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "domain.yml"), []byte(`responses:
  utter_hours:
    - text: "۸ تا ۱۶"
`), 0o644))

	cfgPath := filepath.Join(dir, "faqbot.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`paths:
  intents: %q
  domain: %q
  documents: %q
`, intents, filepath.Join(dir, "domain.yml"), filepath.Join(dir, "documents.yml"))), 0o644))
	return cfgPath
}

func TestApp_Commands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"serve", "ask", "explain", "intents", "index"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, findCommand(t, app, name))
		})
	}
}

func TestExplain_FlagDefaults(t *testing.T) {
	cmd := findCommand(t, newApp(), "explain")
	for _, flag := range cmd.Flags {
		switch f := flag.(type) {
		case *cli.IntFlag:
			if f.Name == "k" {
				assert.Equal(t, 5, f.Value)
			}
		case *cli.Float64Flag:
			if f.Name == "cutoff" {
				assert.Equal(t, -1.0, f.Value, "negative cutoff selects the configured threshold")
			}
		}
	}
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"faqbot", "--log-level", "loud", "intents"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestIntentsCommand(t *testing.T) {
	cfgPath := writeConfig(t)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run([]string{"faqbot", "--log-level", "error", "--config", cfgPath,
		"--env-file", filepath.Join(t.TempDir(), ".env"), "intents"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "a.yml: 2 intents, 3 examples")
	assert.Contains(t, out.String(), "total: 3 examples, 1 responses, 0 documents")
	assert.Contains(t, out.String(), "intents without a response: tuition")
}

func TestLoadSettings_InvalidOverride(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"faqbot", "--log-level", "error", "--config", writeConfig(t),
		"--env-file", filepath.Join(t.TempDir(), ".env"), "--top-k", "0", "intents"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_k")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"faqbot", "--log-level", "error", "ask", "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestPrintExplanation(t *testing.T) {
	var out bytes.Buffer
	err := printExplanation(&out, &core.Explanation{
		Query:      "ساعت",
		Normalized: "ساعت",
		Threshold:  0.65,
		Tried: []core.Candidate{
			{Rank: 1, IntentID: "hours", Example: "ساعت کاری", Score: 0.91234, ResponseExists: true, Accepted: true},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "threshold: 0.65")
	assert.Contains(t, out.String(), "RANK")
	assert.Contains(t, out.String(), "0.9123")
	assert.Contains(t, out.String(), "hours")
}

func TestPrintMonitor(t *testing.T) {
	var out bytes.Buffer
	m := &printMonitor{w: &out}
	m.Start("q")
	m.IntentUnavailable(errors.New("embedder down"))
	m.DocumentScanned(core.DocumentDescriptor{Filename: "a.pdf"}, cascade.ScanNotConfident)
	m.SecondaryStarted("sentinel", 2)
	m.Finish(core.FallbackResult("x"))

	assert.Contains(t, out.String(), `resolving "q"`)
	assert.Contains(t, out.String(), "embedder down")
	assert.Contains(t, out.String(), "a.pdf:")
	assert.Contains(t, out.String(), "over 2 documents")
	assert.Contains(t, out.String(), "done: fallback")
}
