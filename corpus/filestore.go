package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/faqbot/core"
)

// FileStore serves documents from a single directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Available returns core.ErrNotFound if the directory does not exist.
func (s *FileStore) Available() error {
	info, err := os.Stat(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: documents directory %s", core.ErrNotFound, s.Dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", core.ErrNotFound, s.Dir)
	}
	return nil
}

// Bytes returns the raw contents of a document.
func (s *FileStore) Bytes(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(name, err)
	}
	return data, nil
}

// Text returns the extracted plain text of a document.
// PDFs are parsed; every other file is returned as-is.
func (s *FileStore) Text(name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if !isPDF(name) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", notFound(name, err)
		}
		return string(data), nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", notFound(name, err)
	}
	return extractPDFText(path)
}

// MIMEType guesses a document's media type from its extension.
func (s *FileStore) MIMEType(name string) string {
	if isPDF(name) {
		return "application/pdf"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "text/plain"
}

// path resolves name inside the store, refusing anything that escapes it.
func (s *FileStore) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid document name %q", core.ErrNotFound, name)
	}
	return filepath.Join(s.Dir, name), nil
}

func notFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	return fmt.Errorf("reading %s: %w", name, err)
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return "", fmt.Errorf("opening pdf %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", filepath.Base(path), err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", filepath.Base(path), err)
	}
	return buf.String(), nil
}
