package models

import "errors"

var (
	ErrNotFound       = errors.New("archive not found")
	ErrCancelled      = errors.New("archive stream cancelled")
	ErrArchiverFailed = errors.New("archiver failed")
)
