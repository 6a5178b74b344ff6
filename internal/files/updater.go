package files

import (
	"context"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/faizmokh/lifelog/internal/logbook"
)

// Document is the read/replace surface the Updater serializes access to.
type Document interface {
	Read(ctx context.Context, id string) (string, error)
	Write(ctx context.Context, id string, transform Transform) error
}

// Status tells the caller whether an update reached the document.
type Status int

const (
	// Noop means the target block had drifted and the document was left untouched.
	Noop Status = iota
	// Applied means the new body replaced the block.
	Applied
)

func (s Status) String() string {
	if s == Applied {
		return "applied"
	}
	return "noop"
}

// Result describes a finished update. Span is the block's location after the write.
type Result struct {
	Status Status
	Span   logbook.Span
	Reason string
}

// Updater applies block rewrites one at a time per document, in call order.
// Writes to different documents run independently.
type Updater struct {
	doc    Document
	logger *log.Logger

	mu    sync.Mutex
	tails map[string]chan struct{}
}

// NewUpdater wires an updater on top of doc. A nil logger discards diagnostics.
func NewUpdater(doc Document, logger *log.Logger) *Updater {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Updater{doc: doc, logger: logger, tails: make(map[string]chan struct{})}
}

// acquire queues behind the previous caller for id. The returned release must
// always be called. If ctx ends while waiting, the slot is handed on as soon
// as the predecessor finishes so later callers keep their order.
func (u *Updater) acquire(ctx context.Context, id string) (func(), error) {
	done := make(chan struct{})

	u.mu.Lock()
	prev := u.tails[id]
	u.tails[id] = done
	u.mu.Unlock()

	release := func() {
		u.mu.Lock()
		if u.tails[id] == done {
			delete(u.tails, id)
		}
		u.mu.Unlock()
		close(done)
	}

	if prev == nil {
		return release, nil
	}
	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}

// Read returns the current document text.
func (u *Updater) Read(ctx context.Context, id string) (string, error) {
	return u.doc.Read(ctx, id)
}

// Write runs transform in the same per-document queue as block updates, so
// an Updater can itself be used as a Document.
func (u *Updater) Write(ctx context.Context, id string, transform Transform) error {
	release, err := u.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()
	return u.doc.Write(ctx, id, transform)
}

// UpdateBlock replaces the body of the block at span with body. The write is
// skipped (Noop) when the opening fence at span.Start is not a tag of category,
// span.End is no longer a closing fence, or the block's title differs from
// expectedTitle. Only I/O errors are returned.
func (u *Updater) UpdateBlock(ctx context.Context, id string, span logbook.Span, category logbook.Category, body, expectedTitle string) (Result, error) {
	release, err := u.acquire(ctx, id)
	if err != nil {
		return Result{}, err
	}
	defer release()

	result := Result{Status: Noop, Span: span}
	err = u.doc.Write(ctx, id, func(text string) (string, error) {
		lines := splitLines(text)
		if reason := checkBlock(lines, span, category, expectedTitle); reason != "" {
			result.Reason = reason
			u.logger.Printf("updater: stale block in %s at line %d: %s", id, span.Start, reason)
			return text, nil
		}

		bodyLines := splitLines(body)
		next := make([]string, 0, len(lines)-(span.End-span.Start-1)+len(bodyLines))
		next = append(next, lines[:span.Start+1]...)
		next = append(next, bodyLines...)
		next = append(next, lines[span.End:]...)

		result.Status = Applied
		result.Span = logbook.Span{Start: span.Start, End: span.Start + 1 + len(bodyLines)}
		return joinLines(next), nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// InsertLine adds line after the item at lineIndex (relative to the first body
// line) inside the block at span, under the same ordering and staleness rules.
func (u *Updater) InsertLine(ctx context.Context, id string, span logbook.Span, category logbook.Category, lineIndex int, line string) (Result, error) {
	release, err := u.acquire(ctx, id)
	if err != nil {
		return Result{}, err
	}
	defer release()

	result := Result{Status: Noop, Span: span}
	err = u.doc.Write(ctx, id, func(text string) (string, error) {
		lines := splitLines(text)
		if reason := checkBlock(lines, span, category, ""); reason != "" {
			result.Reason = reason
			u.logger.Printf("updater: stale block in %s at line %d: %s", id, span.Start, reason)
			return text, nil
		}

		at := span.Start + 1 + lineIndex + 1
		if lineIndex < 0 || at > span.End {
			at = span.End
		}
		next := make([]string, 0, len(lines)+1)
		next = append(next, lines[:at]...)
		next = append(next, line)
		next = append(next, lines[at:]...)

		result.Status = Applied
		result.Span = logbook.Span{Start: span.Start, End: span.End + 1}
		return joinLines(next), nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// checkBlock returns why span no longer points at the expected block, or "".
func checkBlock(lines []string, span logbook.Span, category logbook.Category, expectedTitle string) string {
	if span.Start < 0 || span.Start >= len(lines) {
		return "start line out of range"
	}
	tag, ok := logbook.FenceTag(lines[span.Start])
	if !ok || !accepts(category, tag) {
		return "opening fence is not a " + category.Tag() + " block"
	}
	if span.End <= span.Start || span.End >= len(lines) || !logbook.IsClosingFence(lines[span.End]) {
		return "closing fence moved"
	}
	if expectedTitle != "" {
		if title, ok := logbook.BlockTitle(lines[span.Start+1 : span.End]); ok && title != expectedTitle {
			return "title is " + strconv.Quote(title) + ", expected " + strconv.Quote(expectedTitle)
		}
	}
	return ""
}

func accepts(category logbook.Category, tag string) bool {
	for _, t := range category.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}
