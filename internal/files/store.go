package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Transform rewrites a document's full text. Returning the input unchanged skips the write.
type Transform func(text string) (string, error)

// Store reads and atomically replaces documents managed by a Manager.
type Store struct {
	manager *Manager
}

// NewStore wires a store using the shared files.Manager.
func NewStore(manager *Manager) *Store {
	return &Store{manager: manager}
}

// Manager returns the manager the store resolves ids with.
func (s *Store) Manager() *Manager {
	return s.manager
}

// Read returns the current text of document id.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.manager.Path(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return "", err
	}
	return string(data), nil
}

// Write reads id, applies transform and atomically replaces the file with the result.
// A missing document is handed to transform as empty text; it is only created
// (with its directories) when transform returns something to write.
func (s *Store) Write(ctx context.Context, id string, transform Transform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.manager.Path(id)
	if err != nil {
		return err
	}

	var current string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		current = string(data)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	next, err := transform(current)
	if err != nil {
		return err
	}
	if next == current {
		return nil
	}
	if _, _, err := s.manager.EnsureDocument(id); err != nil {
		return err
	}
	return writeFile(path, next)
}

func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".lifelog-*")
	if err != nil {
		return err
	}
	defer os.Remove(temp.Name())

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if _, err := temp.WriteString(content); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Close(); err != nil {
		return err
	}

	mode := os.FileMode(filePermissions)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.Chmod(temp.Name(), mode); err != nil {
		return err
	}

	return os.Rename(temp.Name(), path)
}

func splitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	// Remove the trailing empty element produced by Split when the input ends with a newline.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
