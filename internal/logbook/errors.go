package logbook

import "errors"

// ErrBlockNotFound is returned when no log block starts at the requested line.
var ErrBlockNotFound = errors.New("log block not found")

// ErrUnknownCategory indicates a category name or fence tag that lifelog does not handle.
var ErrUnknownCategory = errors.New("unknown log category")

// ErrCategoryMismatch is returned when a record is handed to another category's codec.
var ErrCategoryMismatch = errors.New("record category does not match codec")
