package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644

	// DefaultLogFolder is where new log documents are created, relative to the base path.
	DefaultLogFolder = "logs"
)

// Manager centralizes where documents live on disk and how log files are named.
// Document ids are slash-separated paths relative to the base directory.
type Manager struct {
	basePath   string
	logFolder  string
	dateFormat string
}

// NewManager constructs a Manager rooted at the provided directory. If basePath
// is empty, it falls back to ~/.lifelog (or another location determined by
// ResolveBasePath).
func NewManager(basePath string) (*Manager, error) {
	var err error
	if basePath == "" {
		basePath, err = ResolveBasePath()
		if err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &Manager{basePath: abs, logFolder: DefaultLogFolder, dateFormat: DefaultDateFormat}, nil
}

// SetLayout changes the log folder and file date format. Empty values keep the current setting.
func (m *Manager) SetLayout(logFolder, dateFormat string) {
	if logFolder = strings.Trim(strings.TrimSpace(logFolder), "/"); logFolder != "" {
		m.logFolder = logFolder
	}
	if dateFormat != "" {
		m.dateFormat = dateFormat
	}
}

// BasePath returns the root directory storing all documents.
func (m *Manager) BasePath() string {
	return m.basePath
}

// LogDir returns the absolute folder holding generated log documents.
func (m *Manager) LogDir() string {
	return filepath.Join(m.basePath, filepath.FromSlash(m.logFolder))
}

// DiagnosticLogPath is where long-running commands write their log output.
func (m *Manager) DiagnosticLogPath() string {
	return filepath.Join(m.basePath, "lifelog.log")
}

// LogID names the document a log of kind created at t belongs to:
// <logFolder>/YYYY/MM/<date>-<kind>.md. Slashes in the date become dashes
// so the file stays directly inside the month folder.
func (m *Manager) LogID(t time.Time, kind string) string {
	date := strings.ReplaceAll(FormatDate(t, m.dateFormat), "/", "-")
	return fmt.Sprintf("%s/%04d/%02d/%s-%s.md", m.logFolder, t.Year(), t.Month(), date, kind)
}

// FormatDate renders t using the configured date format.
func (m *Manager) FormatDate(t time.Time) string {
	return FormatDate(t, m.dateFormat)
}

// Path resolves a document id to an absolute path inside the base directory.
func (m *Manager) Path(id string) (string, error) {
	if m == nil {
		return "", errors.New("files.Manager is nil")
	}
	if filepath.IsAbs(id) {
		rel, err := filepath.Rel(m.basePath, id)
		if err != nil {
			return "", err
		}
		id = filepath.ToSlash(rel)
	}
	clean := filepath.Clean(filepath.FromSlash(id))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, id)
	}
	return filepath.Join(m.basePath, clean), nil
}

// EnsureDocument guarantees the directory tree for id exists and reports whether the file does.
func (m *Manager) EnsureDocument(id string) (string, bool, error) {
	path, err := m.Path(id)
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return "", false, fmt.Errorf("create directories: %w", err)
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return path, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return path, false, nil
	default:
		return "", false, fmt.Errorf("stat document: %w", err)
	}
}

// Documents lists the ids of every Markdown file below the base directory, sorted.
func (m *Manager) Documents() ([]string, error) {
	var ids []string
	err := filepath.WalkDir(m.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == m.basePath {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != m.basePath && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		rel, err := filepath.Rel(m.basePath, path)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
