package app

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyDocument    = errors.New("no extractable text in file")
	ErrDocumentNotFound = errors.New("document not found")
)
