package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Chat errors
	ErrNoMessages     = errors.New("no messages provided")
	ErrLastNotUser    = errors.New("last message must be from user")
	ErrIndexNotFound  = errors.New("index is not found")
	ErrEmptyResponse  = errors.New("model returned an empty response")
	ErrUnknownTool    = errors.New("unknown tool")
	ErrInvalidRequest = errors.New("invalid request")

	// File errors
	ErrFileNotFound         = errors.New("file not found")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrFileTooLarge         = errors.New("file too large")
	ErrMissingFileName      = errors.New("file name is required")
)

// DownloadError reports a non-success upstream status while fetching
// a file by URL. The management router passes the status through.
type DownloadError struct {
	URL    string
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s failed with status %d", e.URL, e.Status)
}
