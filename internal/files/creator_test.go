package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/faizmokh/lifelog/internal/logbook"
)

func TestCreatorWritesNewDocument(t *testing.T) {
	store, base := newTestStore(t, nil)
	creator := NewCreator(store.Manager(), store)
	now := time.Date(2025, time.November, 2, 7, 15, 0, 0, time.UTC)

	created, err := creator.Create(context.Background(), now, logbook.SampleWorkout())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "logs/2025/11/2025-11-02-workout.md" {
		t.Fatalf("ID = %q", created.ID)
	}
	if _, err := os.Stat(filepath.Join(base, "logs", "2025", "11", "2025-11-02-workout.md")); err != nil {
		t.Fatalf("document not on disk: %v", err)
	}

	text := readDoc(t, store, created.ID)
	fm, ok := ReadFrontmatter(text)
	if !ok {
		t.Fatalf("frontmatter missing:\n%s", text)
	}
	if fm.Type != "workout-log" || fm.Date != "2025-11-02" || fm.Created != "2025-11-02T07:15:00Z" {
		t.Fatalf("frontmatter = %#v", fm)
	}
	if !strings.Contains(text, "# 2025-11-02 Workout log\n\n## Morning workout session\n\n```life-log\n") {
		t.Fatalf("heading and section missing:\n%s", text)
	}

	blocks := logbook.ScanBlocks(text)
	if len(blocks) != 1 || blocks[0].Span != created.Span {
		t.Fatalf("blocks = %#v, created span = %#v", blocks, created.Span)
	}
	if blocks[0].Record().Title() != "Sample Workout" {
		t.Fatalf("title = %q", blocks[0].Record().Title())
	}
}

func TestCreatorAppendsToExistingDocument(t *testing.T) {
	store, _ := newTestStore(t, nil)
	creator := NewCreator(store.Manager(), store)
	morning := time.Date(2025, time.November, 2, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.November, 2, 19, 0, 0, 0, time.UTC)

	if _, err := creator.Create(context.Background(), morning, logbook.SampleStudy(morning, "Go", 25)); err != nil {
		t.Fatalf("Create morning: %v", err)
	}
	created, err := creator.Create(context.Background(), evening, logbook.SampleStudy(evening, "Rust", 40))
	if err != nil {
		t.Fatalf("Create evening: %v", err)
	}

	text := readDoc(t, store, created.ID)
	if strings.Count(text, "type: study-log") != 1 {
		t.Fatalf("frontmatter repeated:\n%s", text)
	}
	if !strings.Contains(text, "```\n\n---\n\n## Evening study session") {
		t.Fatalf("separator missing:\n%s", text)
	}

	blocks := logbook.ScanBlocks(text)
	if len(blocks) != 2 || blocks[1].Span != created.Span {
		t.Fatalf("blocks = %#v, created span = %#v", blocks, created.Span)
	}
	study := blocks[1].Record().(logbook.StudyLog)
	if study.Metadata.Subject != "Rust" || study.Tasks[0].TargetDuration != 2400 {
		t.Fatalf("second block = %#v", study)
	}
}

func TestStoreReadMissingDocument(t *testing.T) {
	store, _ := newTestStore(t, nil)
	if _, err := store.Read(context.Background(), "nope.md"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("Read error = %v, want ErrDocumentNotFound", err)
	}
}

func TestStoreWriteKeepsModeAndSkipsUnchanged(t *testing.T) {
	store, base := newTestStore(t, map[string]string{"n.md": "hello\n"})
	path := filepath.Join(base, "n.md")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	before, _ := os.Stat(path)

	if err := store.Write(context.Background(), "n.md", func(text string) (string, error) { return text, nil }); err != nil {
		t.Fatalf("Write unchanged: %v", err)
	}
	after, _ := os.Stat(path)
	if !os.SameFile(before, after) {
		t.Fatalf("unchanged write replaced the file")
	}

	if err := store.Write(context.Background(), "n.md", func(text string) (string, error) {
		return strings.TrimSuffix(text, "\n") + " world", nil
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := readDoc(t, store, "n.md"); got != "hello world\n" {
		t.Fatalf("document = %q", got)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestStoreWriteStopsOnTransformError(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{"n.md": "keep\n"})
	boom := errors.New("boom")
	if err := store.Write(context.Background(), "n.md", func(string) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("Write error = %v, want boom", err)
	}
	if got := readDoc(t, store, "n.md"); got != "keep\n" {
		t.Fatalf("document = %q", got)
	}
}
