package logbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Source loads the current text of a document.
type Source interface {
	Read(ctx context.Context, id string) (string, error)
}

// Reader provides helpers to load log blocks from Markdown documents.
type Reader struct {
	source Source
}

// NewReader wires a reader on top of a document source.
func NewReader(source Source) *Reader {
	return &Reader{source: source}
}

// Blocks returns every log block in the document.
func (r *Reader) Blocks(ctx context.Context, id string) ([]Block, error) {
	if r == nil || r.source == nil {
		return nil, errors.New("reader not initialized with a document source")
	}

	text, err := r.source.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	scanner := NewBlockScanner(strings.NewReader(text))
	var blocks []Block
	for {
		block, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return blocks, nil
			}
			return nil, fmt.Errorf("scan %s: %w", id, err)
		}
		blocks = append(blocks, *block)
	}
}

// BlockAt returns the block whose opening fence sits on line. A negative line
// selects the first block of the document.
func (r *Reader) BlockAt(ctx context.Context, id string, line int) (Block, error) {
	blocks, err := r.Blocks(ctx, id)
	if err != nil {
		return Block{}, err
	}
	for _, block := range blocks {
		if line < 0 || block.Span.Start == line {
			return block, nil
		}
	}
	return Block{}, fmt.Errorf("%w: %s line %d", ErrBlockNotFound, id, line)
}

// Latest returns the last block of category c in the document.
func (r *Reader) Latest(ctx context.Context, id string, c Category) (Block, error) {
	blocks, err := r.Blocks(ctx, id)
	if err != nil {
		return Block{}, err
	}
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Category == c {
			return blocks[i], nil
		}
	}
	return Block{}, fmt.Errorf("%w: no %s block in %s", ErrBlockNotFound, c, id)
}
