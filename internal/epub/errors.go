package epub

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEPub reports a structural failure: the container descriptor or
	// the package document cannot be located or decoded.
	ErrInvalidEPub = errors.New("epub: invalid EPUB structure")

	// ErrFileNotFound reports that a resolved archive path has no entry.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrNoCover reports that no cover image could be detected.
	ErrNoCover = errors.New("epub: no cover image found")
)

// EntryNotFoundError is returned when content is requested for an archive
// path that does not exist. It matches ErrFileNotFound with errors.Is.
type EntryNotFoundError struct {
	Path string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("epub: %s not found in archive", e.Path)
}

func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}
