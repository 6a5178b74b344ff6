package files

import "errors"

// ErrOutsideBase is returned for document ids that escape the base directory.
var ErrOutsideBase = errors.New("document outside base directory")

// ErrDocumentNotFound is returned when reading a document that does not exist.
var ErrDocumentNotFound = errors.New("document not found")
