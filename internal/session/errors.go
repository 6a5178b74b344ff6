package session

import "errors"

// ErrInvalidIndex is returned when an operation names an item the record does not have.
var ErrInvalidIndex = errors.New("item index out of range")

// ErrNotTimed is returned for timer operations on meal logs.
var ErrNotTimed = errors.New("log category has no timer")

// ErrNotStarted is returned when an item is finished before the session starts.
var ErrNotStarted = errors.New("session not started")

// ErrItemState is returned when an item cannot make the requested move.
var ErrItemState = errors.New("item cannot move to that state")

// ErrUnsupported is returned when an operation does not apply to the record's category.
var ErrUnsupported = errors.New("operation not supported for this log")
