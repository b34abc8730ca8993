package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Env resolves settings from the process environment first and a dotenv file second.
type Env struct {
	lookup func(string) (string, bool)
	dotenv map[string]string
}

// LoadEnv reads the dotenv file at path. A missing file is not an error.
func LoadEnv(path string) (*Env, error) {
	dotenv, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}
	return &Env{lookup: os.LookupEnv, dotenv: dotenv}, nil
}

// NewEnv builds an Env from explicit sources. A nil lookup sees no process variables.
func NewEnv(lookup func(string) (string, bool), dotenv map[string]string) *Env {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	if dotenv == nil {
		dotenv = map[string]string{}
	}
	return &Env{lookup: lookup, dotenv: dotenv}
}

// Lookup returns the effective non-empty value for key.
func (e *Env) Lookup(key string) (string, bool) {
	if v, ok := e.lookup(key); ok && v != "" {
		return v, true
	}
	v, ok := e.dotenv[key]
	return v, ok && v != ""
}

// Get returns the effective value for key, or "".
func (e *Env) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// LoadDotEnv reads KEY=VALUE pairs from path.
//
// Parsing rules:
//   - Lines starting with '#' and empty lines are ignored.
//   - An optional "export " prefix is dropped.
//   - Whitespace around KEY and VALUE is trimmed.
//   - A VALUE wrapped in matching single or double quotes is unquoted.
func LoadDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot open dotenv file %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = unquote(strings.TrimSpace(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", path, err)
	}
	return out, nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
